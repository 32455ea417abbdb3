package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
)

type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Handle   string `json:"handle"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthService owns account lifecycle: registration, verification,
// login, token rotation and revocation. The Account's stored refresh
// token is the single source of truth for which refresh token is live.
type AuthService struct {
	accounts repository.AccountRepository
	codes    *CodeService
	hasher   *security.Hasher
	jwt      *security.JWTManager
	logger   *slog.Logger
}

func NewAuthService(accounts repository.AccountRepository, codes *CodeService, hasher *security.Hasher, jwt *security.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{accounts: accounts, codes: codes, hasher: hasher, jwt: jwt, logger: logger}
}

func validateRegisterInput(in RegisterInput) error {
	switch {
	case !strings.Contains(in.Email, "@"):
		return fmt.Errorf("%w: valid email required", ErrValidation)
	case len(in.Handle) < 3:
		return fmt.Errorf("%w: handle must be at least 3 characters", ErrValidation)
	case strings.ContainsAny(in.Handle, " \t@"):
		return fmt.Errorf("%w: handle must not contain spaces or '@'", ErrValidation)
	case in.Name == "":
		return fmt.Errorf("%w: name required", ErrValidation)
	case len(in.Password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	return nil
}

// Register creates the account, then issues and mails the first
// verification code. Creation and delivery are not one transaction: a
// delivery failure leaves the account behind, recoverable only through
// ResendCode. That inconsistency is deliberate and surfaced as
// ErrDeliveryFailed.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Handle:       strings.TrimSpace(in.Handle),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         domain.RoleMember,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.Hex(), "handle", account.Handle)

	if err := s.codes.IssueAndDeliver(ctx, account.Email, domain.PurposeEmailVerification, &account.ID); err != nil {
		return nil, err
	}
	return account.Principal(), nil
}

func (s *AuthService) resolve(ctx context.Context, identifierOrHandle string) (*domain.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.ToLower(identifierOrHandle))
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.accounts.FindByHandle(ctx, identifierOrHandle)
}

// Login resolves by email first, then handle. An unverified email
// fails the login but first issues a fresh verification code, so the
// rejection doubles as a nudge to finish verification.
func (s *AuthService) Login(ctx context.Context, identifierOrHandle, password string) (*domain.Account, *TokenPair, error) {
	if identifierOrHandle == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: identifier and password required", ErrValidation)
	}
	account, err := s.resolve(ctx, identifierOrHandle)
	if err != nil {
		return nil, nil, err
	}
	if !account.EmailVerified {
		if err := s.codes.IssueAndDeliver(ctx, account.Email, domain.PurposeEmailVerification, &account.ID); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrEmailNotVerified
	}
	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.Rotate(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "login", "account_id", account.ID.Hex())
	return account.Principal(), pair, nil
}

// Rotate mints a fresh token pair and persists the new refresh token
// onto the account, invalidating whatever was stored before. This is
// the sole revocation mechanism for refresh tokens.
func (s *AuthService) Rotate(ctx context.Context, account *domain.Account) (*TokenPair, error) {
	access, err := s.jwt.SignAccessToken(account)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.SignRefreshToken(account.ID.Hex())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetRefreshToken(ctx, account.ID, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates the presented refresh token, requires it to match
// the account's stored current token verbatim, and rotates. A token
// rotated out by a later login or refresh fails with ErrTokenStale
// even though its own signature and expiry are still valid.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	claims, err := s.jwt.ParseRefreshToken(presented)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if account.RefreshToken == "" || account.RefreshToken != presented {
		return nil, ErrTokenStale
	}
	return s.Rotate(ctx, account)
}

// Logout clears the stored refresh token. Outstanding access tokens
// cannot be revoked early; they expire on their own.
func (s *AuthService) Logout(ctx context.Context, accountID primitive.ObjectID) error {
	if err := s.accounts.ClearRefreshToken(ctx, accountID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "logout", "account_id", accountID.Hex())
	return nil
}

// VerifyCode consumes a verification code and flips the matching
// verification flag. Verified state is monotonic. On success the
// session is rotated so the client is logged in immediately.
func (s *AuthService) VerifyCode(ctx context.Context, identifier, purpose, candidate string) (*domain.Account, *TokenPair, error) {
	if purpose != domain.PurposeEmailVerification && purpose != domain.PurposeInstituteVerification {
		return nil, nil, fmt.Errorf("%w: unsupported purpose", ErrValidation)
	}
	code, err := s.codes.Consume(ctx, identifier, purpose, candidate)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.accountForCode(ctx, code, identifier)
	if err != nil {
		return nil, nil, err
	}

	switch purpose {
	case domain.PurposeEmailVerification:
		if err := s.accounts.MarkEmailVerified(ctx, account.ID); err != nil {
			return nil, nil, err
		}
		account.EmailVerified = true
	case domain.PurposeInstituteVerification:
		if err := s.accounts.MarkInstituteEmailVerified(ctx, account.ID); err != nil {
			return nil, nil, err
		}
		account.InstituteEmailVerified = true
	}

	pair, err := s.Rotate(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "verification complete", "account_id", account.ID.Hex(), "purpose", purpose)
	return account.Principal(), pair, nil
}

func (s *AuthService) accountForCode(ctx context.Context, code *domain.OneTimeCode, identifier string) (*domain.Account, error) {
	if code.AccountID != nil {
		return s.accounts.FindByID(ctx, *code.AccountID)
	}
	return s.accounts.FindByEmail(ctx, strings.ToLower(identifier))
}

// ResendCode re-issues a verification code, superseding the previous
// one. This is the recovery path for an account whose first code was
// never delivered.
func (s *AuthService) ResendCode(ctx context.Context, identifier, purpose string) error {
	switch purpose {
	case domain.PurposeEmailVerification:
		account, err := s.accounts.FindByEmail(ctx, strings.ToLower(identifier))
		if err != nil {
			return err
		}
		if account.EmailVerified {
			return fmt.Errorf("%w: email already verified", ErrValidation)
		}
		return s.codes.IssueAndDeliver(ctx, account.Email, purpose, &account.ID)
	case domain.PurposePasswordReset:
		account, err := s.resolve(ctx, identifier)
		if err != nil {
			return err
		}
		return s.codes.IssueAndDeliver(ctx, account.Email, purpose, &account.ID)
	default:
		return fmt.Errorf("%w: unsupported purpose", ErrValidation)
	}
}

// RequestInstituteVerification records the institute address and mails
// a code to it. The flag resets until the new address is verified.
func (s *AuthService) RequestInstituteVerification(ctx context.Context, accountID primitive.ObjectID, instituteEmail string) error {
	if !strings.Contains(instituteEmail, "@") {
		return fmt.Errorf("%w: valid institute email required", ErrValidation)
	}
	instituteEmail = strings.ToLower(strings.TrimSpace(instituteEmail))
	if err := s.accounts.SetInstituteEmail(ctx, accountID, instituteEmail); err != nil {
		return err
	}
	return s.codes.IssueAndDeliver(ctx, instituteEmail, domain.PurposeInstituteVerification, &accountID)
}

// ForgotPassword issues a password-reset code to the account's email.
func (s *AuthService) ForgotPassword(ctx context.Context, identifierOrHandle string) error {
	account, err := s.resolve(ctx, identifierOrHandle)
	if err != nil {
		return err
	}
	return s.codes.IssueAndDeliver(ctx, account.Email, domain.PurposePasswordReset, &account.ID)
}

// ResetPassword consumes a password-reset code, re-hashes the new
// password exactly once, and revokes the current refresh token so
// every open session has to log in again.
func (s *AuthService) ResetPassword(ctx context.Context, identifier, candidate, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	code, err := s.codes.Consume(ctx, identifier, domain.PurposePasswordReset, candidate)
	if err != nil {
		return err
	}
	account, err := s.accountForCode(ctx, code, identifier)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.SetPasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}
	if err := s.accounts.ClearRefreshToken(ctx, account.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", "account_id", account.ID.Hex())
	return nil
}

// ResolvePrincipal turns a raw access token into a fresh principal.
// The account is re-read from the store on every call so deleted
// accounts and revoked roles take effect within one request, not when
// the token expires.
func (s *AuthService) ResolvePrincipal(ctx context.Context, rawAccess string) (*domain.Account, error) {
	claims, err := s.jwt.ParseAccessToken(rawAccess)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", security.ErrTokenMalformed)
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Principal(), nil
}
