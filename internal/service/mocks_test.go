package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStudyStore mocks store.StudyStore. WithTx returns the mock itself.
type MockStudyStore struct {
	mock.Mock
}

func (m *MockStudyStore) Create(ctx context.Context, study *domain.Study) error {
	return m.Called(ctx, study).Error(0)
}

func (m *MockStudyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Study, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Study), args.Error(1)
}

func (m *MockStudyStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Study, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Study), args.Error(1)
}

func (m *MockStudyStore) Update(ctx context.Context, study *domain.Study) error {
	return m.Called(ctx, study).Error(0)
}

func (m *MockStudyStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStudyStore) WithTx(tx *sql.Tx) store.StudyStore {
	return m
}

// MockSessionStore mocks store.SessionStore. WithTx returns the mock itself.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, studyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionStore) DeleteByStudy(ctx context.Context, studyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, studyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return m
}

// MockUserStore mocks store.UserStore. WithTx returns the mock itself.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// stubNamer returns fixed names or a fixed error.
type stubNamer struct {
	names []string
	err   error
	got   [][]string
}

func (n *stubNamer) NameCategories(_ context.Context, clusters [][]string) ([]string, error) {
	n.got = clusters
	return n.names, n.err
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, dbMock
}

func newStudy(t *testing.T, owner uuid.UUID, cardIDs ...string) *domain.Study {
	t.Helper()
	cards := make([]domain.Card, len(cardIDs))
	for i, id := range cardIDs {
		cards[i] = domain.Card{ID: id, Label: "Label " + id}
	}
	study, err := domain.NewStudy(owner, "Navigation", cards, []domain.Profile{{ID: "p1", Name: "Shoppers"}})
	require.NoError(t, err)
	return study
}

func newSession(t *testing.T, studyID uuid.UUID, groups ...[]string) domain.Session {
	t.Helper()
	forest := make([]domain.SortGroup, len(groups))
	for i, ids := range groups {
		forest[i] = domain.SortGroup{ID: uuid.NewString(), Name: "Group", CardIDs: ids}
	}
	session, err := domain.NewSession(studyID, time.Time{}, 60, domain.Demographics{}, forest)
	require.NoError(t, err)
	return *session
}
