// internal/verifier/policy.go
package verifier

import "strings"

// Check is the result of one completeness pass. It is ephemeral: recomputed
// each pass and never persisted.
type Check struct {
	IsComplete        bool
	MissingBlocks     []string
	MissingCategories []string
	RulesCount        int
	AllowedFoodsTotal int
	MealExamplesCount int
	GoalChecks        GoalChecks
}

// GoalChecks records goal-specific heuristics. They are informational only
// and never gate completeness.
type GoalChecks struct {
	MuscleGain MuscleGainChecks
	FatLoss    FatLossChecks
}

type MuscleGainChecks struct {
	HasHighProtein    bool
	HasCalorieSurplus bool
}

type FatLossChecks struct {
	HasCalorieDeficit bool
	HasFiberFocus     bool
}

// Policy decides whether a sectioned diet answer is complete. The keyword
// implementation below is the only strategy today; the interface exists so a
// learned model can be substituted without touching the verifier loop.
type Policy interface {
	Evaluate(parsed *Sections, goal string) Check
}

// MinimumContentPolicy is the fixed checklist: at least 5 rule bullets, at
// least 3 items in each of the 7 allowed-food categories, at least one
// controlled and one prohibited food, and breakfast/lunch/dinner examples
// all present.
type MinimumContentPolicy struct{}

const (
	minRules            = 5
	minItemsPerCategory = 3
)

func (MinimumContentPolicy) Evaluate(parsed *Sections, goal string) Check {
	check := Check{RulesCount: len(parsed.Rules)}

	if len(parsed.Rules) < minRules {
		check.MissingBlocks = append(check.MissingBlocks, "rules")
	}

	for _, category := range AllowedCategories {
		items := parsed.AllowedFoods[category]
		check.AllowedFoodsTotal += len(items)
		if len(items) < minItemsPerCategory {
			check.MissingCategories = append(check.MissingCategories, category)
		}
	}

	if len(parsed.ControlledFoods) == 0 {
		check.MissingBlocks = append(check.MissingBlocks, "controlled_foods")
	}
	if len(parsed.ProhibitedFoods) == 0 {
		check.MissingBlocks = append(check.MissingBlocks, "prohibited_foods")
	}

	for _, slot := range []string{"breakfast", "lunch", "dinner", "snacks"} {
		if len(parsed.MealExamples[slot]) > 0 {
			check.MealExamplesCount++
		}
	}
	if len(parsed.MealExamples["breakfast"]) == 0 ||
		len(parsed.MealExamples["lunch"]) == 0 ||
		len(parsed.MealExamples["dinner"]) == 0 {
		check.MissingBlocks = append(check.MissingBlocks, "meal_examples")
	}

	check.GoalChecks = evaluateGoalChecks(parsed, goal)
	check.IsComplete = len(check.MissingBlocks) == 0 && len(check.MissingCategories) == 0
	return check
}

// evaluateGoalChecks runs the recorded-but-non-gating heuristics against the
// flattened answer text.
func evaluateGoalChecks(parsed *Sections, goal string) GoalChecks {
	var checks GoalChecks
	goalLower := strings.ToLower(goal)
	text := strings.ToLower(flatten(parsed))

	if strings.Contains(goalLower, "ganar") || strings.Contains(goalLower, "músculo") || strings.Contains(goalLower, "musculo") || strings.Contains(goalLower, "muscle") {
		checks.MuscleGain.HasHighProtein = strings.Contains(text, "2g") || strings.Contains(text, "proteína alta") || strings.Contains(text, "high protein")
		checks.MuscleGain.HasCalorieSurplus = strings.Contains(text, "superávit") || strings.Contains(text, "superavit") || strings.Contains(text, "surplus") || strings.Contains(text, "exceso")
	}

	if strings.Contains(goalLower, "perder") || strings.Contains(goalLower, "grasa") || strings.Contains(goalLower, "fat") {
		checks.FatLoss.HasCalorieDeficit = strings.Contains(text, "déficit") || strings.Contains(text, "deficit") || strings.Contains(text, "reducir")
		checks.FatLoss.HasFiberFocus = strings.Contains(text, "verdura") || strings.Contains(text, "fibra") || strings.Contains(text, "fiber")
	}

	return checks
}

func flatten(parsed *Sections) string {
	var b strings.Builder
	for _, r := range parsed.Rules {
		b.WriteString(r)
		b.WriteByte(' ')
	}
	for _, items := range parsed.AllowedFoods {
		for _, it := range items {
			b.WriteString(it)
			b.WriteByte(' ')
		}
	}
	for _, cf := range parsed.ControlledFoods {
		b.WriteString(cf.Name)
		b.WriteByte(' ')
	}
	for _, p := range parsed.ProhibitedFoods {
		b.WriteString(p)
		b.WriteByte(' ')
	}
	for _, items := range parsed.MealExamples {
		for _, it := range items {
			b.WriteString(it)
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Spanish labels for the user-facing "what is missing" messages.
var categoryLabels = map[string]string{
	"proteins":   "proteínas",
	"carbs":      "hidratos de carbono",
	"fats":       "grasas",
	"vegetables": "verduras",
	"fruits":     "frutas",
	"beverages":  "bebidas",
	"snacks":     "snacks",
}

// MissingItems turns a failed check into the concrete list of things the
// supplemental request asks the backend for.
func MissingItems(check Check) []string {
	var missing []string
	for _, block := range check.MissingBlocks {
		switch block {
		case "rules":
			missing = append(missing, "Faltan reglas del objetivo (mínimo 5 puntos)")
		case "controlled_foods":
			missing = append(missing, "Faltan alimentos limitados con cantidades")
		case "prohibited_foods":
			missing = append(missing, "Faltan alimentos prohibidos o a evitar")
		case "meal_examples":
			missing = append(missing, "Faltan ejemplos completos de comidas (desayuno, comida, cena)")
		}
	}
	for _, category := range check.MissingCategories {
		label := categoryLabels[category]
		if label == "" {
			label = category
		}
		missing = append(missing, "Faltan opciones de "+label+" (mínimo 3)")
	}
	return missing
}
