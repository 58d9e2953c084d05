package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/service"
	"github.com/phrazzld/cardsort-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	studyID := uuid.New()
	params := map[string]string{"id": studyID.String()}
	startedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	recorded, err := domain.NewSession(studyID, startedAt, 95, domain.Demographics{
		ProfileID: "p1",
		Gender:    domain.GenderFemale,
		Age:       34,
	}, []domain.SortGroup{{ID: "g1", Name: "Fruit", CardIDs: []string{"c1", "c2"}}})
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		setup      func(*MockSessionService)
		wantStatus int
	}{
		{
			name: "recorded",
			body: `{"startedAt":1740823200000,"durationSec":95,` +
				`"demographics":{"profileId":"p1","gender":"F","age":34},` +
				`"groups":[{"id":"g1","name":"Fruit","cardIds":["c1","c2"],"children":[]}]}`,
			setup: func(m *MockSessionService) {
				m.On("RecordSession", mock.Anything, userID, studyID, mock.MatchedBy(func(in service.SessionInput) bool {
					return in.StartedAt.Equal(startedAt) &&
						in.DurationSec == 95 &&
						in.Demographics.Gender == domain.GenderFemale &&
						in.Demographics.Age == 34 &&
						len(in.Groups) == 1 && in.Groups[0].Name == "Fruit"
				})).Return(recorded, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "bad gender",
			body:       `{"demographics":{"gender":"robot"},"groups":[]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty body",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown card",
			body: `{"groups":[{"id":"g1","name":"X","cardIds":["zz"]}]}`,
			setup: func(m *MockSessionService) {
				m.On("RecordSession", mock.Anything, userID, studyID, mock.Anything).
					Return(nil, domain.NewValidationError("groups", "unknown card", domain.ErrUnknownCard))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "study not found",
			body: `{"groups":[]}`,
			setup: func(m *MockSessionService) {
				m.On("RecordSession", mock.Anything, userID, studyID, mock.Anything).
					Return(nil, store.ErrStudyNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sessions := &MockSessionService{}
			if tc.setup != nil {
				tc.setup(sessions)
			}

			rec := httptest.NewRecorder()
			NewSessionHandler(sessions, testLogger()).RecordSession(rec,
				newRequest(http.MethodPost, "/", tc.body, userID, params))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusCreated {
				var doc export.SessionDocument
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
				assert.Equal(t, recorded.ID.String(), doc.ID)
				assert.Equal(t, startedAt.UnixMilli(), doc.StartedAt)
				require.NotNil(t, doc.Demographics.Gender)
				assert.Equal(t, "female", *doc.Demographics.Gender)
			}
			sessions.AssertExpectations(t)
		})
	}
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	studyID := uuid.New()
	s, err := domain.NewSession(studyID, time.Time{}, 10, domain.Demographics{}, nil)
	require.NoError(t, err)

	sessions := &MockSessionService{}
	sessions.On("ListSessions", mock.Anything, userID, studyID).Return([]domain.Session{*s}, nil)

	rec := httptest.NewRecorder()
	NewSessionHandler(sessions, testLogger()).ListSessions(rec,
		newRequest(http.MethodGet, "/", "", userID, map[string]string{"id": studyID.String()}))

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []export.SessionDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, s.ID.String(), docs[0].ID)
	assert.Nil(t, docs[0].Demographics.Gender)
	assert.NotNil(t, docs[0].Groups)
}

func TestClearSessions(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	studyID := uuid.New()

	sessions := &MockSessionService{}
	sessions.On("ClearSessions", mock.Anything, userID, studyID).Return(int64(4), nil)

	rec := httptest.NewRecorder()
	NewSessionHandler(sessions, testLogger()).ClearSessions(rec,
		newRequest(http.MethodDelete, "/", "", userID, map[string]string{"id": studyID.String()}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":4}`, rec.Body.String())
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	studyID := uuid.New()
	sessionID := uuid.New()

	tests := []struct {
		name       string
		sessionID  string
		err        error
		wantStatus int
	}{
		{name: "deleted", sessionID: sessionID.String(), wantStatus: http.StatusNoContent},
		{name: "bad session id", sessionID: "nope", wantStatus: http.StatusBadRequest},
		{name: "not found", sessionID: sessionID.String(), err: store.ErrSessionNotFound, wantStatus: http.StatusNotFound},
		{name: "not owned", sessionID: sessionID.String(), err: service.ErrNotOwned, wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sessions := &MockSessionService{}
			sessions.On("DeleteSession", mock.Anything, userID, studyID, sessionID).Return(tc.err).Maybe()

			rec := httptest.NewRecorder()
			NewSessionHandler(sessions, testLogger()).DeleteSession(rec, newRequest(http.MethodDelete, "/", "", userID,
				map[string]string{"id": studyID.String(), "sessionID": tc.sessionID}))

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
