package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
)

type codeFixture struct {
	svc    *CodeService
	repo   *memCodeRepository
	mailer *recordingMailer
	clock  *time.Time
}

func newCodeFixture(t *testing.T) *codeFixture {
	t.Helper()
	start := time.Now().UTC()
	clock := &start
	repo := newMemCodeRepository(func() time.Time { return *clock })
	mailer := &recordingMailer{}
	svc := NewCodeService(repo, security.NewHasher(4), mailer, testLogger(), 6)
	return &codeFixture{svc: svc, repo: repo, mailer: mailer, clock: clock}
}

func TestIssueReturnsPlaintextAndStoresHash(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()

	code, err := f.svc.Issue(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	stored, err := f.repo.FindLive(ctx, "a@x.com", domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("FindLive: %v", err)
	}
	if stored.CodeHash == code {
		t.Fatal("plaintext persisted")
	}
}

func TestIssueRejectsBadInput(t *testing.T) {
	f := newCodeFixture(t)
	if _, err := f.svc.Issue(context.Background(), "", domain.PurposeEmailVerification, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty identifier, got %v", err)
	}
	if _, err := f.svc.Issue(context.Background(), "a@x.com", "login", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown purpose, got %v", err)
	}
}

func TestSecondIssueSupersedesFirst(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()

	first, err := f.svc.Issue(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Issue(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		if _, err := f.svc.Verify(ctx, "a@x.com", domain.PurposeEmailVerification, first); !errors.Is(err, ErrCodeInvalid) {
			t.Fatalf("superseded code must fail with ErrCodeInvalid, got %v", err)
		}
	}
	if _, err := f.svc.Verify(ctx, "a@x.com", domain.PurposeEmailVerification, second); err != nil {
		t.Fatalf("fresh code must verify: %v", err)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()

	code, err := f.svc.Issue(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Consume(ctx, "a@x.com", domain.PurposeEmailVerification, code); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if _, err := f.svc.Consume(ctx, "a@x.com", domain.PurposeEmailVerification, code); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("second consume must fail with ErrCodeNotFound, got %v", err)
	}
}

func TestFailedVerifyDoesNotConsume(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()

	code, err := f.svc.Issue(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if err != nil {
		t.Fatal(err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := f.svc.Verify(ctx, "a@x.com", domain.PurposeEmailVerification, wrong); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}
	if _, err := f.svc.Verify(ctx, "a@x.com", domain.PurposeEmailVerification, code); err != nil {
		t.Fatalf("correct code must still verify after a failed attempt: %v", err)
	}
}

func TestCodeExpiresAfterTTL(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()

	code, err := f.svc.Issue(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if err != nil {
		t.Fatal(err)
	}
	*f.clock = f.clock.Add(domain.CodeTTL + time.Second)
	if _, err := f.svc.Verify(ctx, "a@x.com", domain.PurposeEmailVerification, code); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expired code must read as not found, got %v", err)
	}
}

func TestIssueAndDeliver(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()

	if err := f.svc.IssueAndDeliver(ctx, "a@x.com", domain.PurposeEmailVerification, nil); err != nil {
		t.Fatalf("IssueAndDeliver: %v", err)
	}
	if f.mailer.count() != 1 {
		t.Fatalf("expected one delivery, got %d", f.mailer.count())
	}

	f.mailer.fail = true
	err := f.svc.IssueAndDeliver(ctx, "a@x.com", domain.PurposeEmailVerification, nil)
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}
