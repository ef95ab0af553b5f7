// internal/protocol/sniff.go
package protocol

import (
	"encoding/json"
	"regexp"
)

// The model occasionally forgets the tag envelope and emits a bare payload,
// either fenced in a markdown code block or inline. When the classifier
// expected an action and none was extracted, the caller can sniff the reply
// for a recognizable payload shape and recover the action.

var (
	// fencedJSONPattern matches a JSON object inside a markdown code block.
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*?\\})\\s*```")
	// bareJSONPattern matches any JSON object (greedy fallback).
	bareJSONPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
)

// SniffAction looks for an untagged action payload in text. It recognizes
// the meal-planner shape (date/dates + meals), the diet shape (title +
// allowed_foods) and the workout shape (title + days). Returns false when
// nothing recognizable is found.
func SniffAction(text string) (Action, bool) {
	raw := extractCandidateJSON(text)
	if raw == "" {
		return Action{}, false
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return Action{}, false
	}

	_, hasMeals := probe["meals"]
	_, hasDate := probe["date"]
	_, hasDates := probe["dates"]
	if hasMeals && (hasDate || hasDates) {
		return Action{Type: ActionOpenMealPlanner, Data: json.RawMessage(raw)}, true
	}

	_, hasTitle := probe["title"]
	if _, hasAllowed := probe["allowed_foods"]; hasTitle && hasAllowed {
		return Action{Type: ActionOpenDiet, Data: json.RawMessage(raw)}, true
	}
	if _, hasDays := probe["days"]; hasTitle && hasDays {
		return Action{Type: ActionOpenWorkout, Data: json.RawMessage(raw)}, true
	}

	return Action{}, false
}

func extractCandidateJSON(text string) string {
	if m := fencedJSONPattern.FindStringSubmatch(text); len(m) > 1 {
		if json.Valid([]byte(m[1])) {
			return m[1]
		}
	}
	if m := bareJSONPattern.FindString(text); m != "" && json.Valid([]byte(m)) {
		return m
	}
	return ""
}
