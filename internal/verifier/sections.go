// Package verifier checks a long-form diet answer against a minimum
// completeness policy and iteratively requests the missing pieces from the
// model backend, grounded in the same trainer material as the original
// answer.
package verifier

import (
	"regexp"
	"strings"
)

// Allowed-food categories the policy checks. Keys are also used in the
// flattened food-category rows, so they stay English while the user-facing
// labels stay Spanish.
var AllowedCategories = []string{
	"proteins", "carbs", "fats", "vegetables", "fruits", "beverages", "snacks",
}

// ControlledFood is a limited food with its quantity/frequency caps, parsed
// from a "name - cap - frequency" bullet.
type ControlledFood struct {
	Name        string
	MaxQuantity string
	Frequency   string
}

// Sections is a diet answer segmented into its semantic parts.
type Sections struct {
	Rules           []string
	AllowedFoods    map[string][]string
	ControlledFoods []ControlledFood
	ProhibitedFoods []string
	MealExamples    map[string][]string // breakfast, lunch, dinner, snacks
}

// sectionID identifies where extracted bullets are routed.
type sectionID string

const (
	secNone       sectionID = ""
	secRules      sectionID = "rules"
	secControlled sectionID = "controlled"
	secProhibited sectionID = "prohibited"
	secBreakfast  sectionID = "breakfast"
	secLunch      sectionID = "lunch"
	secDinner     sectionID = "dinner"
	secSnackMeal  sectionID = "snack_meal"
)

// headerRule maps a header keyword set to its section. Matching is tolerant:
// Spanish and English labels, optional emoji and markdown decoration.
type headerRule struct {
	section  sectionID
	category string // allowed-food category, when section is empty
	keywords []string
	emojis   []string
}

var headerRules = []headerRule{
	{section: secRules, keywords: []string{"reglas", "rules"}, emojis: []string{"🎯"}},
	{section: secControlled, keywords: []string{"limitados", "controlados", "controlled", "moderación", "moderacion"}, emojis: []string{"⚠️", "⚠"}},
	{section: secProhibited, keywords: []string{"prohibidos", "prohibited", "evitar", "forbidden"}, emojis: []string{"❌"}},
	{category: "proteins", keywords: []string{"proteínas", "proteinas", "proteins", "protein"}, emojis: []string{"🥩"}},
	{category: "carbs", keywords: []string{"hidratos", "carbohidratos", "carbs", "carbohydrates"}, emojis: []string{"🍚"}},
	{category: "fats", keywords: []string{"grasas", "fats"}, emojis: []string{"🥑"}},
	{category: "vegetables", keywords: []string{"verduras", "vegetales", "vegetables"}, emojis: []string{"🥬"}},
	{category: "fruits", keywords: []string{"frutas", "fruits"}, emojis: []string{"🍏"}},
	{category: "beverages", keywords: []string{"bebidas", "beverages", "drinks"}, emojis: []string{"🥤"}},
	{category: "snacks", keywords: []string{"snacks"}, emojis: []string{"🍪"}},
	{section: secBreakfast, keywords: []string{"desayuno", "breakfast"}, emojis: []string{"🌅"}},
	{section: secLunch, keywords: []string{"comida", "almuerzo", "lunch"}, emojis: []string{"🍽️"}},
	{section: secDinner, keywords: []string{"cena", "dinner"}, emojis: []string{"🌙"}},
	{section: secSnackMeal, keywords: []string{"snack del día", "merienda"}, emojis: []string{"🍎"}},
}

var (
	bulletPattern     = regexp.MustCompile(`^\s*(?:[-•*]|\d{1,2}\.)\s+(.+)$`)
	decorationPattern = regexp.MustCompile(`^[#\s*_>]+|[*_:\s]+$`)
)

// ParseSections segments a diet answer by locating labeled headers and
// collecting the bullet lines beneath each one.
func ParseSections(answer string) *Sections {
	out := &Sections{
		AllowedFoods: make(map[string][]string, len(AllowedCategories)),
		MealExamples: make(map[string][]string),
	}
	for _, cat := range AllowedCategories {
		out.AllowedFoods[cat] = nil
	}

	current := secNone
	currentCategory := ""

	for _, line := range strings.Split(answer, "\n") {
		if sec, cat, isHeader := matchHeader(line); isHeader {
			current, currentCategory = sec, cat
			continue
		}
		item, isBullet := matchBullet(line)
		if !isBullet {
			continue
		}
		route(out, current, currentCategory, item)
	}
	return out
}

// matchHeader reports whether the line introduces a known section. A header
// is a short line whose leading token (after markdown/emoji decoration)
// carries one of the known labels.
func matchHeader(line string) (sectionID, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > 80 {
		return secNone, "", false
	}
	if _, isBullet := matchBullet(line); isBullet {
		return secNone, "", false
	}
	stripped := decorationPattern.ReplaceAllString(trimmed, "")
	lower := strings.ToLower(stripped)

	for _, rule := range headerRules {
		for _, emoji := range rule.emojis {
			if strings.HasPrefix(trimmed, emoji) {
				return rule.section, rule.category, true
			}
		}
		for _, kw := range rule.keywords {
			if strings.HasPrefix(lower, kw) || strings.HasPrefix(lower, "alimentos "+kw) {
				return rule.section, rule.category, true
			}
		}
	}
	return secNone, "", false
}

func matchBullet(line string) (string, bool) {
	m := bulletPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func route(out *Sections, sec sectionID, category string, item string) {
	switch {
	case category != "":
		// Keep just the food name: bullets often carry " - quantity" tails.
		name := strings.TrimSpace(strings.SplitN(item, " - ", 2)[0])
		if len(name) > 2 {
			out.AllowedFoods[category] = append(out.AllowedFoods[category], name)
		}
	case sec == secRules:
		if len(item) > 10 {
			out.Rules = append(out.Rules, item)
		}
	case sec == secControlled:
		parts := strings.Split(item, " - ")
		cf := ControlledFood{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			cf.MaxQuantity = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			cf.Frequency = strings.TrimSpace(parts[2])
		}
		if len(cf.Name) > 2 {
			out.ControlledFoods = append(out.ControlledFoods, cf)
		}
	case sec == secProhibited:
		name := strings.TrimSpace(strings.SplitN(item, " - ", 2)[0])
		if len(name) > 2 {
			out.ProhibitedFoods = append(out.ProhibitedFoods, name)
		}
	case sec == secBreakfast:
		out.MealExamples["breakfast"] = append(out.MealExamples["breakfast"], item)
	case sec == secLunch:
		out.MealExamples["lunch"] = append(out.MealExamples["lunch"], item)
	case sec == secDinner:
		out.MealExamples["dinner"] = append(out.MealExamples["dinner"], item)
	case sec == secSnackMeal:
		out.MealExamples["snacks"] = append(out.MealExamples["snacks"], item)
	}
}
