package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
)

// CodeService is the one-time-code ledger. Codes are stored hashed and
// the plaintext exists only in the return value of Issue, bound for
// out-of-band delivery. The code value itself is never logged.
type CodeService struct {
	codes      repository.CodeRepository
	hasher     *security.Hasher
	mailer     Mailer
	logger     *slog.Logger
	codeLength int
}

func NewCodeService(codes repository.CodeRepository, hasher *security.Hasher, mailer Mailer, logger *slog.Logger, codeLength int) *CodeService {
	if codeLength <= 0 {
		codeLength = 6
	}
	return &CodeService{codes: codes, hasher: hasher, mailer: mailer, logger: logger, codeLength: codeLength}
}

// Issue generates a fresh code for (identifier, purpose), superseding
// any live one, and returns the plaintext exactly once.
func (s *CodeService) Issue(ctx context.Context, identifier, purpose string, accountID *primitive.ObjectID) (string, error) {
	if identifier == "" || !domain.ValidPurpose(purpose) {
		return "", fmt.Errorf("%w: identifier and purpose required", ErrValidation)
	}
	plaintext, err := security.GenerateNumericCode(s.codeLength)
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return "", err
	}
	code := &domain.OneTimeCode{
		Identifier: identifier,
		Purpose:    purpose,
		CodeHash:   hash,
		AccountID:  accountID,
	}
	if err := s.codes.Replace(ctx, code); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "one-time code issued", "identifier", identifier, "purpose", purpose)
	return plaintext, nil
}

// IssueAndDeliver issues a code and mails it. A mailer failure is
// reported as ErrDeliveryFailed; the code stays issued so a resend can
// supersede it.
func (s *CodeService) IssueAndDeliver(ctx context.Context, identifier, purpose string, accountID *primitive.ObjectID) error {
	plaintext, err := s.Issue(ctx, identifier, purpose, accountID)
	if err != nil {
		return err
	}
	subject, html, text := codeMessage(purpose, plaintext)
	if err := s.mailer.Send(ctx, identifier, subject, html, text); err != nil {
		s.logger.WarnContext(ctx, "code delivery failed",
			"identifier", identifier, "purpose", purpose, "error", err.Error())
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// Verify checks a candidate against the live code without consuming
// it. Failed attempts leave the record in place for retry until the
// TTL window closes.
func (s *CodeService) Verify(ctx context.Context, identifier, purpose, candidate string) (*domain.OneTimeCode, error) {
	code, err := s.codes.FindLive(ctx, identifier, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	ok, err := s.hasher.Verify(candidate, code.CodeHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCodeInvalid
	}
	return code, nil
}

// Consume verifies and, on success, deletes the record: a code is
// usable at most once.
func (s *CodeService) Consume(ctx context.Context, identifier, purpose, candidate string) (*domain.OneTimeCode, error) {
	code, err := s.Verify(ctx, identifier, purpose, candidate)
	if err != nil {
		return nil, err
	}
	if err := s.codes.Delete(ctx, identifier, purpose); err != nil {
		return nil, err
	}
	return code, nil
}

func codeMessage(purpose, code string) (subject, html, text string) {
	switch purpose {
	case domain.PurposePasswordReset:
		subject = "KGTS password reset code"
	case domain.PurposeInstituteVerification:
		subject = "KGTS institute email verification code"
	default:
		subject = "KGTS email verification code"
	}
	text = fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	html = fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p><p>It expires in 10 minutes.</p>", code)
	return subject, html, text
}
