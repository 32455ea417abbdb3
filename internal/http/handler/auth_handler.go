package handler

import (
	"net/http"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/middleware"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/service"
)

type AuthHandler struct {
	authSvc *service.AuthService
	jwt     *security.JWTManager
	cookies *security.CookieManager
}

func NewAuthHandler(authSvc *service.AuthService, jwt *security.JWTManager, cookies *security.CookieManager) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, jwt: jwt, cookies: cookies}
}

func (h *AuthHandler) setSession(w http.ResponseWriter, pair *service.TokenPair) {
	h.cookies.SetTokenCookies(w, pair.Access, pair.Refresh, h.jwt.AccessTTL(), h.jwt.RefreshTTL())
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	account, err := h.authSvc.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"account": account,
		"message": "verification code sent",
	})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier string `json:"identifier"`
		Purpose    string `json:"purpose"`
		Code       string `json:"code"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Purpose == "" {
		in.Purpose = domain.PurposeEmailVerification
	}
	account, pair, err := h.authSvc.VerifyCode(r.Context(), in.Identifier, in.Purpose, in.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.setSession(w, pair)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"account": account,
		"tokens":  pair,
	})
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier string `json:"identifier"`
		Purpose    string `json:"purpose"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Purpose == "" {
		in.Purpose = domain.PurposeEmailVerification
	}
	if err := h.authSvc.ResendCode(r.Context(), in.Identifier, in.Purpose); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "code sent"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	account, pair, err := h.authSvc.Login(r.Context(), in.Identifier, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.setSession(w, pair)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"account": account,
		"tokens":  pair,
	})
}

// Refresh rotates the session. The token is read from the refresh
// cookie first so browser clients need no body at all.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := security.GetCookie(r, security.RefreshTokenCookie)
	if presented == "" {
		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		presented = in.RefreshToken
	}
	if presented == "" {
		response.Error(w, r, http.StatusUnauthorized, "INVALID_OR_EXPIRED_TOKEN", "refresh token required", nil)
		return
	}
	pair, err := h.authSvc.Refresh(r.Context(), presented)
	if err != nil {
		h.cookies.ClearTokenCookies(w)
		writeServiceError(w, r, err)
		return
	}
	h.setSession(w, pair)
	response.JSON(w, r, http.StatusOK, map[string]any{"tokens": pair})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	if err := h.authSvc.Logout(r.Context(), principal.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cookies.ClearTokenCookies(w)
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, principal)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier string `json:"identifier"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.authSvc.ForgotPassword(r.Context(), in.Identifier); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "reset code sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier  string `json:"identifier"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), in.Identifier, in.Code, in.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "password reset, please log in"})
}

func (h *AuthHandler) RequestInstituteVerification(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var in struct {
		InstituteEmail string `json:"institute_email"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.authSvc.RequestInstituteVerification(r.Context(), principal.ID, in.InstituteEmail); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "verification code sent to institute email"})
}
