package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errNotImplemented = errors.New("not implemented")

type stubAccountRepository struct {
	createFn            func(account *domain.Account) error
	findByIDFn          func(id primitive.ObjectID) (*domain.Account, error)
	findByEmailFn       func(email string) (*domain.Account, error)
	findByHandleFn      func(handle string) (*domain.Account, error)
	setRefreshTokenFn   func(id primitive.ObjectID, token string) error
	clearRefreshTokenFn func(id primitive.ObjectID) error
	setPasswordHashFn   func(id primitive.ObjectID, hash string) error
	setInstituteEmailFn func(id primitive.ObjectID, email string) error
	markEmailVerifiedFn func(id primitive.ObjectID) error
	markInstVerifiedFn  func(id primitive.ObjectID) error
	leaderboardFn       func(limit int64) ([]domain.LeaderboardEntry, error)
}

func (s *stubAccountRepository) Create(_ context.Context, account *domain.Account) error {
	if s.createFn == nil {
		return errNotImplemented
	}
	return s.createFn(account)
}
func (s *stubAccountRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Account, error) {
	if s.findByIDFn == nil {
		return nil, errNotImplemented
	}
	return s.findByIDFn(id)
}
func (s *stubAccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if s.findByEmailFn == nil {
		return nil, errNotImplemented
	}
	return s.findByEmailFn(email)
}
func (s *stubAccountRepository) FindByHandle(_ context.Context, handle string) (*domain.Account, error) {
	if s.findByHandleFn == nil {
		return nil, errNotImplemented
	}
	return s.findByHandleFn(handle)
}
func (s *stubAccountRepository) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	if s.setRefreshTokenFn == nil {
		return errNotImplemented
	}
	return s.setRefreshTokenFn(id, token)
}
func (s *stubAccountRepository) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	if s.clearRefreshTokenFn == nil {
		return errNotImplemented
	}
	return s.clearRefreshTokenFn(id)
}
func (s *stubAccountRepository) SetPasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	if s.setPasswordHashFn == nil {
		return errNotImplemented
	}
	return s.setPasswordHashFn(id, hash)
}
func (s *stubAccountRepository) SetInstituteEmail(_ context.Context, id primitive.ObjectID, email string) error {
	if s.setInstituteEmailFn == nil {
		return errNotImplemented
	}
	return s.setInstituteEmailFn(id, email)
}
func (s *stubAccountRepository) MarkEmailVerified(_ context.Context, id primitive.ObjectID) error {
	if s.markEmailVerifiedFn == nil {
		return errNotImplemented
	}
	return s.markEmailVerifiedFn(id)
}
func (s *stubAccountRepository) MarkInstituteEmailVerified(_ context.Context, id primitive.ObjectID) error {
	if s.markInstVerifiedFn == nil {
		return errNotImplemented
	}
	return s.markInstVerifiedFn(id)
}
func (s *stubAccountRepository) Leaderboard(_ context.Context, limit int64) ([]domain.LeaderboardEntry, error) {
	if s.leaderboardFn == nil {
		return nil, errNotImplemented
	}
	return s.leaderboardFn(limit)
}

// memCodeRepository is an in-memory ledger mirroring the mongo
// implementation's semantics: upsert-on-issue, TTL-filtered lookup,
// physical delete on consume. The clock is injectable.
type memCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*domain.OneTimeCode
	now   func() time.Time
}

func newMemCodeRepository(now func() time.Time) *memCodeRepository {
	return &memCodeRepository{codes: make(map[string]*domain.OneTimeCode), now: now}
}

func codeKey(identifier, purpose string) string { return identifier + "|" + purpose }

func (m *memCodeRepository) Replace(_ context.Context, code *domain.OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *code
	stored.CreatedAt = m.now().UTC()
	m.codes[codeKey(code.Identifier, code.Purpose)] = &stored
	return nil
}

func (m *memCodeRepository) FindLive(_ context.Context, identifier, purpose string) (*domain.OneTimeCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[codeKey(identifier, purpose)]
	if !ok || code.Expired(m.now().UTC()) {
		return nil, repository.ErrNotFound
	}
	cp := *code
	return &cp, nil
}

func (m *memCodeRepository) Delete(_ context.Context, identifier, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, codeKey(identifier, purpose))
	return nil
}

// recordingMailer captures deliveries; fail switches it to returning
// an error without recording.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	subject string
	text    string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, _, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text})
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type stubEventRepository struct {
	createFn         func(event *domain.Event) error
	updateFn         func(event *domain.Event) error
	deleteFn         func(id primitive.ObjectID) error
	findByIDFn       func(id primitive.ObjectID) (*domain.Event, error)
	listFn           func() ([]domain.Event, error)
	registerSoloFn   func(eventID, accountID primitive.ObjectID) error
	unregisterSoloFn func(eventID, accountID primitive.ObjectID) error
	createTeamFn     func(team *domain.Team) error
	joinTeamFn       func(teamID, accountID primitive.ObjectID) error
	leaveTeamFn      func(teamID, accountID primitive.ObjectID) error
	findTeamByIDFn   func(id primitive.ObjectID) (*domain.Team, error)
	findTeamForFn    func(eventID, accountID primitive.ObjectID) (*domain.Team, error)
	listTeamsFn      func(eventID primitive.ObjectID) ([]domain.Team, error)
}

func (s *stubEventRepository) Create(_ context.Context, event *domain.Event) error {
	if s.createFn == nil {
		return errNotImplemented
	}
	return s.createFn(event)
}
func (s *stubEventRepository) Update(_ context.Context, event *domain.Event) error {
	if s.updateFn == nil {
		return errNotImplemented
	}
	return s.updateFn(event)
}
func (s *stubEventRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	if s.deleteFn == nil {
		return errNotImplemented
	}
	return s.deleteFn(id)
}
func (s *stubEventRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Event, error) {
	if s.findByIDFn == nil {
		return nil, errNotImplemented
	}
	return s.findByIDFn(id)
}
func (s *stubEventRepository) List(_ context.Context) ([]domain.Event, error) {
	if s.listFn == nil {
		return nil, errNotImplemented
	}
	return s.listFn()
}
func (s *stubEventRepository) RegisterSolo(_ context.Context, eventID, accountID primitive.ObjectID) error {
	if s.registerSoloFn == nil {
		return errNotImplemented
	}
	return s.registerSoloFn(eventID, accountID)
}
func (s *stubEventRepository) UnregisterSolo(_ context.Context, eventID, accountID primitive.ObjectID) error {
	if s.unregisterSoloFn == nil {
		return errNotImplemented
	}
	return s.unregisterSoloFn(eventID, accountID)
}
func (s *stubEventRepository) CreateTeam(_ context.Context, team *domain.Team) error {
	if s.createTeamFn == nil {
		return errNotImplemented
	}
	return s.createTeamFn(team)
}
func (s *stubEventRepository) JoinTeam(_ context.Context, teamID, accountID primitive.ObjectID) error {
	if s.joinTeamFn == nil {
		return errNotImplemented
	}
	return s.joinTeamFn(teamID, accountID)
}
func (s *stubEventRepository) LeaveTeam(_ context.Context, teamID, accountID primitive.ObjectID) error {
	if s.leaveTeamFn == nil {
		return errNotImplemented
	}
	return s.leaveTeamFn(teamID, accountID)
}
func (s *stubEventRepository) FindTeamByID(_ context.Context, id primitive.ObjectID) (*domain.Team, error) {
	if s.findTeamByIDFn == nil {
		return nil, errNotImplemented
	}
	return s.findTeamByIDFn(id)
}
func (s *stubEventRepository) FindTeamForAccount(_ context.Context, eventID, accountID primitive.ObjectID) (*domain.Team, error) {
	if s.findTeamForFn == nil {
		return nil, errNotImplemented
	}
	return s.findTeamForFn(eventID, accountID)
}
func (s *stubEventRepository) ListTeams(_ context.Context, eventID primitive.ObjectID) ([]domain.Team, error) {
	if s.listTeamsFn == nil {
		return nil, errNotImplemented
	}
	return s.listTeamsFn(eventID)
}

type stubRiddleRepository struct {
	createFn     func(riddle *domain.Riddle) error
	findByIDFn   func(id primitive.ObjectID) (*domain.Riddle, error)
	listActiveFn func() ([]domain.Riddle, error)
	markSolvedFn func(riddleID, accountID primitive.ObjectID, points int) error
}

func (s *stubRiddleRepository) Create(_ context.Context, riddle *domain.Riddle) error {
	if s.createFn == nil {
		return errNotImplemented
	}
	return s.createFn(riddle)
}
func (s *stubRiddleRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Riddle, error) {
	if s.findByIDFn == nil {
		return nil, errNotImplemented
	}
	return s.findByIDFn(id)
}
func (s *stubRiddleRepository) ListActive(_ context.Context) ([]domain.Riddle, error) {
	if s.listActiveFn == nil {
		return nil, errNotImplemented
	}
	return s.listActiveFn()
}
func (s *stubRiddleRepository) MarkSolved(_ context.Context, riddleID, accountID primitive.ObjectID, points int) error {
	if s.markSolvedFn == nil {
		return errNotImplemented
	}
	return s.markSolvedFn(riddleID, accountID, points)
}

// noopCache is a LeaderboardCache that always misses.
type noopCache struct{}

func (noopCache) Get(context.Context) ([]domain.LeaderboardEntry, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, []domain.LeaderboardEntry, time.Duration) error {
	return nil
}
func (noopCache) Invalidate(context.Context) error { return nil }
