package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func clusteredStudy(t *testing.T) (AnalysisService, uuid.UUID, uuid.UUID) {
	t.Helper()
	svc, studies, sessions := newAnalysisService(t, analysis.NewDefaultOptions())
	owner := uuid.New()
	study := newStudy(t, owner, "a", "b", "c", "d")
	sorted := []domain.Session{
		newSession(t, study.ID, []string{"a", "b"}, []string{"c", "d"}),
		newSession(t, study.ID, []string{"a", "b"}, []string{"c", "d"}),
	}
	studies.On("GetByID", mock.Anything, study.ID).Return(study, nil)
	sessions.On("ListByStudy", mock.Anything, study.ID).Return(sorted, nil)
	return svc, owner, study.ID
}

func TestCategoryService_SuggestCategoriesWithNamer(t *testing.T) {
	t.Parallel()

	analyses, owner, studyID := clusteredStudy(t)
	namer := &stubNamer{names: []string{"Browse", "Buy"}}
	svc, err := NewCategoryService(analyses, namer, nil)
	require.NoError(t, err)

	got, err := svc.SuggestCategories(context.Background(), owner, studyID, CategoryRequest{Height: 0.5})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Browse", got[0].Name)
	assert.Equal(t, "Buy", got[1].Name)
	assert.ElementsMatch(t, []string{"a", "b"}, got[0].CardIDs)
	assert.ElementsMatch(t, []string{"c", "d"}, got[1].CardIDs)
	assert.ElementsMatch(t, []string{"Label a", "Label b"}, namer.got[0])
}

func TestCategoryService_FallsBackWhenNamerFails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		namer *stubNamer
	}{
		{name: "error", namer: &stubNamer{err: errors.New("quota exceeded")}},
		{name: "wrong count", namer: &stubNamer{names: []string{"only one"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			analyses, owner, studyID := clusteredStudy(t)
			svc, err := NewCategoryService(analyses, tc.namer, nil)
			require.NoError(t, err)

			got, err := svc.SuggestCategories(context.Background(), owner, studyID, CategoryRequest{Height: 0.5})
			require.NoError(t, err)
			require.Len(t, got, 2)
			for _, s := range got {
				assert.Contains(t, s.Name, " & ")
			}
		})
	}
}

func TestCategoryService_HeightBounds(t *testing.T) {
	t.Parallel()

	analyses, owner, studyID := clusteredStudy(t)
	svc, err := NewCategoryService(analyses, nil, nil)
	require.NoError(t, err)

	_, err = svc.SuggestCategories(context.Background(), owner, studyID, CategoryRequest{Height: 1.5})
	assert.ErrorIs(t, err, domain.ErrValidation)

	all, err := svc.SuggestCategories(context.Background(), owner, studyID, CategoryRequest{Height: 1})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].CardIDs, 4)

	singles, err := svc.SuggestCategories(context.Background(), owner, studyID, CategoryRequest{Height: 0})
	require.NoError(t, err)
	assert.Len(t, singles, 2)
}

func TestCategoryService_NoSessions(t *testing.T) {
	t.Parallel()

	analyses, studies, sessions := newAnalysisService(t, analysis.NewDefaultOptions())
	owner := uuid.New()
	study := newStudy(t, owner, "a", "b")
	studies.On("GetByID", mock.Anything, study.ID).Return(study, nil)
	sessions.On("ListByStudy", mock.Anything, study.ID).Return([]domain.Session{}, nil)

	svc, err := NewCategoryService(analyses, nil, nil)
	require.NoError(t, err)

	_, err = svc.SuggestCategories(context.Background(), owner, study.ID, CategoryRequest{Height: 0.5})
	assert.ErrorIs(t, err, ErrNothingToName)
}

func TestFallbackNamer(t *testing.T) {
	t.Parallel()

	names, err := FallbackNamer{}.NameCategories(context.Background(), [][]string{
		{"Home"},
		{"Cart", "Checkout"},
		{"Help", "FAQ", "Contact", "Returns"},
		{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Cart & Checkout", "Help & FAQ (+2)", "Category 4"}, names)
}
