package security

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

type CookieManager struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewCookieManager(domain string, secure bool, sameSite string) *CookieManager {
	ss := http.SameSiteLaxMode
	switch strings.ToLower(sameSite) {
	case "none":
		ss = http.SameSiteNoneMode
	case "strict":
		ss = http.SameSiteStrictMode
	}
	return &CookieManager{Domain: domain, Secure: secure, SameSite: ss}
}

// SetTokenCookies sets both session cookies, HttpOnly. The refresh
// cookie is scoped to the auth routes only.
func (c *CookieManager) SetTokenCookies(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{Name: AccessTokenCookie, Value: accessToken, Path: "/", HttpOnly: true, Secure: c.Secure, SameSite: c.SameSite, Domain: c.Domain, MaxAge: int(accessTTL.Seconds())})
	http.SetCookie(w, &http.Cookie{Name: RefreshTokenCookie, Value: refreshToken, Path: "/api/auth", HttpOnly: true, Secure: c.Secure, SameSite: c.SameSite, Domain: c.Domain, MaxAge: int(refreshTTL.Seconds())})
}

func (c *CookieManager) ClearTokenCookies(w http.ResponseWriter) {
	expire := func(name, path string) {
		http.SetCookie(w, &http.Cookie{Name: name, Path: path, Value: "", MaxAge: -1, HttpOnly: true, Secure: c.Secure, SameSite: c.SameSite, Domain: c.Domain})
	}
	expire(AccessTokenCookie, "/")
	expire(RefreshTokenCookie, "/api/auth")
}

func GetCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
