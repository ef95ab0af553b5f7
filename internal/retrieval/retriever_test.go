package retrieval

import (
	"context"
	"testing"

	"alcyxob/coach-assistant/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubContentRepo struct {
	items []domain.TrainerContentItem
}

func (s *stubContentRepo) Insert(context.Context, *domain.TrainerContentItem) error { return nil }

func (s *stubContentRepo) GetByID(context.Context, string) (*domain.TrainerContentItem, error) {
	return nil, nil
}

func (s *stubContentRepo) GetActiveByTrainer(context.Context, primitive.ObjectID) ([]domain.TrainerContentItem, error) {
	return s.items, nil
}

func (s *stubContentRepo) Delete(context.Context, string, primitive.ObjectID) error { return nil }

func item(id string, ct domain.ContentType, title, raw string) domain.TrainerContentItem {
	return domain.TrainerContentItem{
		ID:          id,
		ContentType: ct,
		Title:       title,
		RawContent:  raw,
		IsActive:    true,
	}
}

func TestSearchScoresContentMatchAboveBase(t *testing.T) {
	repo := &stubContentRepo{items: []domain.TrainerContentItem{
		item("a", domain.ContentTypeDiet, "Plan genérico", "consejos variados"),
		item("b", domain.ContentTypeDiet, "Dieta keto estricta", "menús keto para cada semana"),
	}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "keto", Filters{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.InDelta(t, 0.9, results[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.5, results[1].RelevanceScore, 1e-9)
}

func TestSearchGoalBonusOutranksPlainContentMatch(t *testing.T) {
	matched := item("match", domain.ContentTypeDiet, "Recetas con salmón", "salmón al horno")
	boosted := item("boost", domain.ContentTypeDiet, "Recetas con salmón II", "salmón a la plancha")
	boosted.TargetGoals = []string{"Perder grasa"}

	repo := &stubContentRepo{items: []domain.TrainerContentItem{matched, boosted}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "salmón", Filters{TargetGoal: "perder grasa"})
	require.NoError(t, err)

	// 0.9 + 0.2 beats 0.9; goal comparison is case-insensitive.
	require.Len(t, results, 2)
	assert.Equal(t, "boost", results[0].ID)
	assert.InDelta(t, 1.1, results[0].RelevanceScore, 1e-9)
}

func TestSearchIntensityBonusWithinWindow(t *testing.T) {
	near := item("near", domain.ContentTypeWorkout, "Rutina A", "")
	near.IntensityLevel = 7
	far := item("far", domain.ContentTypeWorkout, "Rutina B", "")
	far.IntensityLevel = 2

	repo := &stubContentRepo{items: []domain.TrainerContentItem{far, near}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "", Filters{Intensity: 6})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ID)
	assert.InDelta(t, 0.6, results[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.5, results[1].RelevanceScore, 1e-9)
}

func TestSearchFiltersByTypeAndExperience(t *testing.T) {
	diet := item("diet", domain.ContentTypeDiet, "Dieta", "")
	workout := item("workout", domain.ContentTypeWorkout, "Rutina", "")
	advanced := item("advanced", domain.ContentTypeDiet, "Dieta avanzada", "")
	advanced.ExperienceLevel = "advanced"

	repo := &stubContentRepo{items: []domain.TrainerContentItem{diet, workout, advanced}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "", Filters{
		ContentType:     domain.ContentTypeDiet,
		ExperienceLevel: "beginner",
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "diet", results[0].ID)
}

func TestSearchUntypedExperienceMatchesAnyLevel(t *testing.T) {
	repo := &stubContentRepo{items: []domain.TrainerContentItem{
		item("open", domain.ContentTypeDiet, "Dieta base", ""),
	}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "", Filters{ExperienceLevel: "advanced"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchDeterministicTieBreakAndLimit(t *testing.T) {
	repo := &stubContentRepo{items: []domain.TrainerContentItem{
		item("c", domain.ContentTypeDiet, "Tres", ""),
		item("a", domain.ContentTypeDiet, "Uno", ""),
		item("b", domain.ContentTypeDiet, "Dos", ""),
	}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "", Filters{Limit: 2})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
}

func TestSearchMatchesStructuredData(t *testing.T) {
	structured := item("s", domain.ContentTypeDiet, "Plan", "sin coincidencia")
	structured.StructuredData = map[string]any{"ingrediente": "quinoa"}

	repo := &stubContentRepo{items: []domain.TrainerContentItem{structured}}
	s := NewSearcher(repo)

	results, err := s.Search(context.Background(), primitive.NewObjectID(), "quinoa", Filters{})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 0.9, results[0].RelevanceScore, 1e-9)
}
