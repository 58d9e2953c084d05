package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/api/shared"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockStudyService struct{ mock.Mock }

func (m *MockStudyService) CreateStudy(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	cards []domain.Card,
	profiles []domain.Profile,
) (*domain.Study, error) {
	args := m.Called(ctx, userID, name, cards, profiles)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) GetStudy(ctx context.Context, userID, studyID uuid.UUID) (*domain.Study, error) {
	args := m.Called(ctx, userID, studyID)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) ListStudies(ctx context.Context, userID uuid.UUID) ([]domain.Study, error) {
	args := m.Called(ctx, userID)
	studies, _ := args.Get(0).([]domain.Study)
	return studies, args.Error(1)
}

func (m *MockStudyService) RenameStudy(ctx context.Context, userID, studyID uuid.UUID, name string) (*domain.Study, error) {
	args := m.Called(ctx, userID, studyID, name)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) ReplaceCards(
	ctx context.Context,
	userID, studyID uuid.UUID,
	cards []domain.Card,
) (*domain.Study, error) {
	args := m.Called(ctx, userID, studyID, cards)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) ReplaceProfiles(
	ctx context.Context,
	userID, studyID uuid.UUID,
	profiles []domain.Profile,
) (*domain.Study, error) {
	args := m.Called(ctx, userID, studyID, profiles)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) DuplicateStudy(
	ctx context.Context,
	userID, studyID uuid.UUID,
	name string,
) (*domain.Study, error) {
	args := m.Called(ctx, userID, studyID, name)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) DeleteStudy(ctx context.Context, userID, studyID uuid.UUID) error {
	return m.Called(ctx, userID, studyID).Error(0)
}

func (m *MockStudyService) ImportStudy(ctx context.Context, userID uuid.UUID, doc *export.Document) (*domain.Study, error) {
	args := m.Called(ctx, userID, doc)
	study, _ := args.Get(0).(*domain.Study)
	return study, args.Error(1)
}

func (m *MockStudyService) ExportStudy(ctx context.Context, userID, studyID uuid.UUID) (*export.Document, error) {
	args := m.Called(ctx, userID, studyID)
	doc, _ := args.Get(0).(*export.Document)
	return doc, args.Error(1)
}

type MockSessionService struct{ mock.Mock }

func (m *MockSessionService) RecordSession(
	ctx context.Context,
	userID, studyID uuid.UUID,
	input service.SessionInput,
) (*domain.Session, error) {
	args := m.Called(ctx, userID, studyID, input)
	session, _ := args.Get(0).(*domain.Session)
	return session, args.Error(1)
}

func (m *MockSessionService) ListSessions(ctx context.Context, userID, studyID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, userID, studyID)
	sessions, _ := args.Get(0).([]domain.Session)
	return sessions, args.Error(1)
}

func (m *MockSessionService) DeleteSession(ctx context.Context, userID, studyID, sessionID uuid.UUID) error {
	return m.Called(ctx, userID, studyID, sessionID).Error(0)
}

func (m *MockSessionService) ClearSessions(ctx context.Context, userID, studyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, studyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAnalysisService struct{ mock.Mock }

func (m *MockAnalysisService) Analyze(
	ctx context.Context,
	userID, studyID uuid.UUID,
	req service.AnalysisRequest,
) (*analysis.Report, error) {
	args := m.Called(ctx, userID, studyID, req)
	report, _ := args.Get(0).(*analysis.Report)
	return report, args.Error(1)
}

func (m *MockAnalysisService) Options(req service.AnalysisRequest) (analysis.Options, error) {
	args := m.Called(req)
	return args.Get(0).(analysis.Options), args.Error(1)
}

type MockCategoryService struct{ mock.Mock }

func (m *MockCategoryService) SuggestCategories(
	ctx context.Context,
	userID, studyID uuid.UUID,
	req service.CategoryRequest,
) ([]service.CategorySuggestion, error) {
	args := m.Called(ctx, userID, studyID, req)
	suggestions, _ := args.Get(0).([]service.CategorySuggestion)
	return suggestions, args.Error(1)
}

type stubVerifier struct {
	err error
}

func (v stubVerifier) Compare(string, string) error { return v.err }

var errBoom = errors.New("connection refused")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRequest builds a request carrying userID (unless nil) and the given chi
// URL parameters, as the router and auth middleware would.
func newRequest(method, target, body string, userID uuid.UUID, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != uuid.Nil {
		ctx = shared.SetUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func newTestStudy(owner uuid.UUID) *domain.Study {
	study, err := domain.NewStudy(owner, "Grocery study", []domain.Card{
		{ID: "c1", Label: "Apples"},
		{ID: "c2", Label: "Pears"},
		{ID: "c3", Label: "Hammer"},
	}, []domain.Profile{{ID: "p1", Name: "Shoppers"}})
	if err != nil {
		panic(err)
	}
	return study
}

// newTestReport analyzes a small study with two sessions.
func newTestReport(study *domain.Study) *analysis.Report {
	s1, _ := domain.NewSession(study.ID, time.Time{}, 60, domain.Demographics{}, []domain.SortGroup{
		{ID: "g1", Name: "Fruit", CardIDs: []string{"c1", "c2"}},
		{ID: "g2", Name: "Tools", CardIDs: []string{"c3"}},
	})
	s2, _ := domain.NewSession(study.ID, time.Time{}, 60, domain.Demographics{}, []domain.SortGroup{
		{ID: "g1", Name: "Food", CardIDs: []string{"c1", "c2", "c3"}},
	})
	return analysis.Analyze(study.Cards, []domain.Session{*s1, *s2}, analysis.NewDefaultOptions())
}
