// Package retrieval selects which trainer-authored content items may ground
// a reply. Scoring is deliberately simple and deterministic: no embeddings,
// no external index, just a filter-and-sort over the trainer's loaded
// content set so results stay reproducible and explainable.
package retrieval

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filters narrow and rank a library search.
type Filters struct {
	ContentType     domain.ContentType
	TargetGoal      string
	Intensity       int // 1-10, 0 = no filter
	ExperienceLevel string
	Limit           int
}

// DefaultLimit caps results when the caller does not.
const DefaultLimit = 10

// Scoring constants. A candidate of the requested type starts at the base; a
// query-substring hit lifts it to the content match score; goal and
// intensity agreement add on top.
const (
	baseScore         = 0.5
	contentMatchScore = 0.9
	goalMatchBonus    = 0.2
	intensityBonus    = 0.1
	intensityWindow   = 2
)

// Searcher ranks a trainer's content library against a query.
type Searcher struct {
	contents repository.ContentRepository
}

// NewSearcher creates a Searcher over the content repository.
func NewSearcher(contents repository.ContentRepository) *Searcher {
	return &Searcher{contents: contents}
}

// Search returns the trainer's content items ranked descending by relevance,
// capped at the filter limit. Only active items of the requested content
// type participate.
func (s *Searcher) Search(ctx context.Context, trainerID primitive.ObjectID, query string, filters Filters) ([]domain.TrainerContentItem, error) {
	items, err := s.contents.GetActiveByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var results []domain.TrainerContentItem
	for _, item := range items {
		if !typeMatches(filters.ContentType, item.ContentType) {
			continue
		}
		if filters.ExperienceLevel != "" && item.ExperienceLevel != "" && item.ExperienceLevel != filters.ExperienceLevel {
			continue
		}
		item.RelevanceScore = score(item, queryLower, filters)
		results = append(results, item)
	}

	// Descending by score; ID ties keep ordering stable across runs.
	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].ID < results[j].ID
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func typeMatches(requested, actual domain.ContentType) bool {
	return requested == "" || requested == domain.ContentTypeAll || requested == actual
}

func score(item domain.TrainerContentItem, queryLower string, filters Filters) float64 {
	relevance := baseScore

	if queryLower != "" && strings.Contains(serialize(item), queryLower) {
		relevance = contentMatchScore
	}

	if filters.TargetGoal != "" && containsFold(item.TargetGoals, filters.TargetGoal) {
		relevance += goalMatchBonus
	}

	if filters.Intensity > 0 && item.IntensityLevel > 0 {
		diff := item.IntensityLevel - filters.Intensity
		if diff < 0 {
			diff = -diff
		}
		if diff <= intensityWindow {
			relevance += intensityBonus
		}
	}

	return relevance
}

// serialize flattens an item's searchable text: raw content plus the
// serialized structured data, lowercased.
func serialize(item domain.TrainerContentItem) string {
	var b strings.Builder
	b.WriteString(item.Title)
	b.WriteByte(' ')
	b.WriteString(item.RawContent)
	if len(item.StructuredData) > 0 {
		if data, err := json.Marshal(item.StructuredData); err == nil {
			b.WriteByte(' ')
			b.Write(data)
		}
	}
	return strings.ToLower(b.String())
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
