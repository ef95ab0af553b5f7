// internal/protocol/expander.go
package protocol

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"alcyxob/coach-assistant/internal/domain"
)

// DatedMeals is one (date, meals) pair produced by expanding a meal-planner
// payload.
type DatedMeals struct {
	Date  string
	Meals []domain.Meal
}

// ExpandMealPlanDates normalizes a meal-planner payload into per-date pairs,
// accepting either a single date or a dates array sharing one meals payload.
// Dates that do not parse as ISO dates are rejected as a unit.
func ExpandMealPlanDates(p MealPlannerPayload) ([]DatedMeals, error) {
	dates := p.Dates
	if len(dates) == 0 {
		if p.Date == "" {
			return nil, fmt.Errorf("meal planner payload has neither date nor dates")
		}
		dates = []string{p.Date}
	}

	meals := mealsToDomain(p.Meals)
	expanded := make([]DatedMeals, 0, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(domain.MealPlanDateLayout, d); err != nil {
			return nil, fmt.Errorf("invalid meal plan date %q: %w", d, err)
		}
		expanded = append(expanded, DatedMeals{Date: d, Meals: meals})
	}
	return expanded, nil
}

// --- Day-count consistency heuristic ---
//
// The model sometimes announces a multi-day plan in prose ("te organizo de
// lunes a viernes") but emits fewer meal-planner tags than days named. The
// heuristic compares the day count implied by the prose with the tag count.
// A mismatch is a diagnostic signal only; it is logged by the dispatcher and
// never auto-corrected.

var dayNames = map[string]int{
	"lunes": 1, "martes": 2, "miércoles": 3, "miercoles": 3, "jueves": 4,
	"viernes": 5, "sábado": 6, "sabado": 6, "domingo": 7,
	"monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4,
	"friday": 5, "saturday": 6, "sunday": 7,
}

var (
	// "del lunes al viernes", "de lunes a jueves", "from monday to friday"
	dayRangePattern = regexp.MustCompile(`(?i)(?:del?|from)\s+(?:el\s+)?([a-záéíóú]+)\s+(?:al?|to|hasta)\s+(?:el\s+)?([a-záéíóú]+)`)
	// "3 días", "5 days"
	explicitCountPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+d[ií]as?\b|\b(\d{1,2})\s+days?\b`)
	wordPattern          = regexp.MustCompile(`(?i)[a-záéíóú]+`)
)

var wholeWeekPhrases = []string{
	"toda la semana", "semana completa", "semana entera",
	"whole week", "entire week", "full week", "all week",
}

// ImpliedDayCount scans prose for day-count signals and returns the implied
// number of planned days. ok is false when no signal is found.
func ImpliedDayCount(text string) (count int, ok bool) {
	lower := strings.ToLower(text)

	for _, phrase := range wholeWeekPhrases {
		if strings.Contains(lower, phrase) {
			return 7, true
		}
	}

	// Explicit ranges ("del lunes al viernes").
	if m := dayRangePattern.FindStringSubmatch(lower); m != nil {
		from, fromOK := dayNames[m[1]]
		to, toOK := dayNames[m[2]]
		if fromOK && toOK {
			span := to - from + 1
			if span <= 0 {
				span += 7 // wraps past the weekend
			}
			return span, true
		}
	}

	// Explicit counts ("4 días").
	if m := explicitCountPattern.FindStringSubmatch(lower); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= 14 {
			return n, true
		}
	}

	// Small enumerated lists: distinct weekday names mentioned.
	distinct := map[int]bool{}
	for _, word := range wordPattern.FindAllString(lower, -1) {
		if day, isDay := dayNames[word]; isDay {
			distinct[day] = true
		}
	}
	if len(distinct) >= 2 {
		return len(distinct), true
	}

	return 0, false
}

// DayCountMismatch describes a disagreement between the prose and the number
// of meal-planner days actually produced.
type DayCountMismatch struct {
	Implied  int
	Produced int
}

func (m DayCountMismatch) String() string {
	return fmt.Sprintf("prose implies %d planned day(s) but %d meal-planner day(s) were produced", m.Implied, m.Produced)
}

// CheckDayCountConsistency compares the day count implied by the un-stripped
// model text against the number of meal-plan days extracted. Returns nil when
// consistent or when the prose gives no signal.
func CheckDayCountConsistency(rawText string, producedDays int) *DayCountMismatch {
	implied, ok := ImpliedDayCount(rawText)
	if !ok || implied == producedDays {
		return nil
	}
	return &DayCountMismatch{Implied: implied, Produced: producedDays}
}
