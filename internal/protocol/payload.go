// internal/protocol/payload.go
package protocol

import (
	"encoding/json"

	"alcyxob/coach-assistant/internal/domain"
)

// FoodPayload is a food item as it appears on the wire. The model backend has
// produced two shapes over time: the current {name, quantity, unit, macros}
// and a legacy {food, quantity}. Decoding normalizes both into the current
// shape with zero defaults for missing macros.
type FoodPayload struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

func (f *FoodPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string  `json:"name"`
		Food     string  `json:"food"` // legacy field name
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fats     float64 `json:"fats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name := raw.Name
	if name == "" {
		name = raw.Food
	}
	*f = FoodPayload{
		Name:     name,
		Quantity: raw.Quantity,
		Unit:     raw.Unit,
		Calories: raw.Calories,
		Protein:  raw.Protein,
		Carbs:    raw.Carbs,
		Fats:     raw.Fats,
	}
	return nil
}

func (f FoodPayload) toDomain() domain.Food {
	return domain.Food{
		Name:     f.Name,
		Quantity: f.Quantity,
		Unit:     f.Unit,
		Calories: f.Calories,
		Protein:  f.Protein,
		Carbs:    f.Carbs,
		Fats:     f.Fats,
	}
}

// MealPayload is one meal slot on the wire.
type MealPayload struct {
	Name  string        `json:"name"`
	Time  string        `json:"time"`
	Foods []FoodPayload `json:"foods"`
}

func (m MealPayload) toDomain() domain.Meal {
	meal := domain.Meal{Name: m.Name, Time: m.Time, Foods: make([]domain.Food, 0, len(m.Foods))}
	for _, f := range m.Foods {
		meal.Foods = append(meal.Foods, f.toDomain())
	}
	return meal
}

func mealsToDomain(meals []MealPayload) []domain.Meal {
	out := make([]domain.Meal, 0, len(meals))
	for _, m := range meals {
		out = append(out, m.toDomain())
	}
	return out
}

// FoodEntryPayload is one entry of a category listing on the wire.
type FoodEntryPayload struct {
	Name        string `json:"name"`
	MaxQuantity string `json:"max_quantity,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// UnmarshalJSON accepts both the object form and a bare string ("Pollo"),
// which older diet payloads used for simple listings.
func (e *FoodEntryPayload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = FoodEntryPayload{Name: name}
		return nil
	}
	var raw struct {
		Name        string `json:"name"`
		Food        string `json:"food"` // legacy field name
		MaxQuantity string `json:"max_quantity"`
		Frequency   string `json:"frequency"`
		Notes       string `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name := raw.Name
	if name == "" {
		name = raw.Food
	}
	*e = FoodEntryPayload{Name: name, MaxQuantity: raw.MaxQuantity, Frequency: raw.Frequency, Notes: raw.Notes}
	return nil
}

func categoriesToDomain(in map[string][]FoodEntryPayload) domain.CategoryMap {
	if len(in) == 0 {
		return nil
	}
	out := make(domain.CategoryMap, len(in))
	for category, entries := range in {
		converted := make([]domain.FoodEntry, 0, len(entries))
		for _, e := range entries {
			converted = append(converted, domain.FoodEntry{
				Name:        e.Name,
				MaxQuantity: e.MaxQuantity,
				Frequency:   e.Frequency,
				Notes:       e.Notes,
			})
		}
		out[category] = converted
	}
	return out
}

// DietPayload is the OPEN_DIET action payload.
type DietPayload struct {
	Title             string                        `json:"title"`
	Description       string                        `json:"description,omitempty"`
	DailyCalories     float64                       `json:"daily_calories,omitempty"`
	DailyProteinG     float64                       `json:"daily_protein_g,omitempty"`
	DailyCarbsG       float64                       `json:"daily_carbs_g,omitempty"`
	DailyFatsG        float64                       `json:"daily_fats_g,omitempty"`
	Meals             []MealPayload                 `json:"meals,omitempty"`
	AllowedFoods      map[string][]FoodEntryPayload `json:"allowed_foods,omitempty"`
	ControlledFoods   map[string][]FoodEntryPayload `json:"controlled_foods,omitempty"`
	ProhibitedFoods   map[string][]FoodEntryPayload `json:"prohibited_foods,omitempty"`
	DailyOrganization string                        `json:"daily_organization,omitempty"`
	Recommendations   string                        `json:"recommendations,omitempty"`
}

// ToDocument builds the persistable diet from the payload. The document is
// returned inactive; activation is the dispatcher's responsibility.
func (p DietPayload) ToDocument() *domain.DietDocument {
	return &domain.DietDocument{
		Title:             p.Title,
		Description:       p.Description,
		DailyCalories:     p.DailyCalories,
		DailyProteinG:     p.DailyProteinG,
		DailyCarbsG:       p.DailyCarbsG,
		DailyFatsG:        p.DailyFatsG,
		Meals:             mealsToDomain(p.Meals),
		AllowedFoods:      categoriesToDomain(p.AllowedFoods),
		ControlledFoods:   categoriesToDomain(p.ControlledFoods),
		ProhibitedFoods:   categoriesToDomain(p.ProhibitedFoods),
		DailyOrganization: p.DailyOrganization,
		Recommendations:   p.Recommendations,
	}
}

// ExercisePayload is one exercise of a workout day on the wire.
type ExercisePayload struct {
	Name         string   `json:"name"`
	Sets         int      `json:"sets"`
	Reps         string   `json:"reps"`
	RestSeconds  int      `json:"rest_seconds,omitempty"`
	Tempo        string   `json:"tempo,omitempty"`
	MuscleGroups []string `json:"muscle_groups,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// WorkoutDayPayload is one labeled day of a workout plan on the wire.
type WorkoutDayPayload struct {
	Day       string            `json:"day"`
	Exercises []ExercisePayload `json:"exercises"`
}

// WorkoutPayload is the OPEN_WORKOUT action payload.
type WorkoutPayload struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Days        []WorkoutDayPayload `json:"days"`
}

// ToDocument builds the persistable workout from the payload.
func (p WorkoutPayload) ToDocument() *domain.WorkoutDocument {
	days := make([]domain.WorkoutDay, 0, len(p.Days))
	for _, d := range p.Days {
		day := domain.WorkoutDay{Day: d.Day, Exercises: make([]domain.Exercise, 0, len(d.Exercises))}
		for _, ex := range d.Exercises {
			day.Exercises = append(day.Exercises, domain.Exercise{
				Name:         ex.Name,
				Sets:         ex.Sets,
				Reps:         ex.Reps,
				RestSeconds:  ex.RestSeconds,
				Tempo:        ex.Tempo,
				MuscleGroups: ex.MuscleGroups,
				Notes:        ex.Notes,
			})
		}
		days = append(days, day)
	}
	return &domain.WorkoutDocument{
		Title:       p.Title,
		Description: p.Description,
		Days:        days,
	}
}

// MealPlannerPayload is the OPEN_MEAL_PLANNER action payload. The protocol
// has two variants: one tag per date (Date set) or a single tag carrying a
// date array (Dates set), both sharing one meals payload.
type MealPlannerPayload struct {
	Date  string        `json:"date,omitempty"`
	Dates []string      `json:"dates,omitempty"`
	Meals []MealPayload `json:"meals"`
}

// ProfileUpdatePayload is the PROFILE_UPDATE request payload: a proposed set
// of profile field changes for the client to confirm.
type ProfileUpdatePayload struct {
	Goal     string   `json:"goal,omitempty"`
	HeightCm *float64 `json:"height_cm,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}
