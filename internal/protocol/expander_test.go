package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandMealPlanDatesSingleDate(t *testing.T) {
	var p MealPlannerPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"date": "2026-09-01",
		"meals": [{"name": "Desayuno", "time": "08:00", "foods": [{"name": "Avena", "quantity": 60, "unit": "g"}]}]
	}`), &p))

	expanded, err := ExpandMealPlanDates(p)
	require.NoError(t, err)

	require.Len(t, expanded, 1)
	assert.Equal(t, "2026-09-01", expanded[0].Date)
	require.Len(t, expanded[0].Meals, 1)
	assert.Equal(t, "Desayuno", expanded[0].Meals[0].Name)
}

func TestExpandMealPlanDatesMultiDateSharesMeals(t *testing.T) {
	var p MealPlannerPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"dates": ["2026-09-01", "2026-09-02", "2026-09-03"],
		"meals": [{"name": "Almuerzo", "time": "14:00", "foods": []}]
	}`), &p))

	expanded, err := ExpandMealPlanDates(p)
	require.NoError(t, err)

	require.Len(t, expanded, 3)
	for i, want := range []string{"2026-09-01", "2026-09-02", "2026-09-03"} {
		assert.Equal(t, want, expanded[i].Date)
		assert.Equal(t, expanded[0].Meals, expanded[i].Meals)
	}
}

func TestExpandMealPlanDatesRejectsBadDateAsUnit(t *testing.T) {
	p := MealPlannerPayload{Dates: []string{"2026-09-01", "01/09/2026"}}

	_, err := ExpandMealPlanDates(p)
	assert.Error(t, err)
}

func TestExpandMealPlanDatesRequiresSomeDate(t *testing.T) {
	_, err := ExpandMealPlanDates(MealPlannerPayload{})
	assert.Error(t, err)
}

func TestImpliedDayCount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
		ok    bool
	}{
		{"whole week phrase", "Te organizo toda la semana con estas comidas.", 7, true},
		{"spanish range", "Aquí va tu plan del lunes al viernes.", 5, true},
		{"range wrapping weekend", "Comidas del viernes al lunes.", 4, true},
		{"explicit count", "He preparado 3 días de comidas.", 3, true},
		{"english count", "Here are 4 days of meals.", 4, true},
		{"enumerated days", "Para el lunes y el miércoles te dejo esto.", 2, true},
		{"single day name is no signal", "El lunes empezamos.", 0, false},
		{"no signal", "Disfruta de tu comida.", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			count, ok := ImpliedDayCount(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.count, count)
		})
	}
}

func TestCheckDayCountConsistency(t *testing.T) {
	assert.Nil(t, CheckDayCountConsistency("plan del lunes al martes", 2))
	assert.Nil(t, CheckDayCountConsistency("disfruta tu comida", 1))

	mismatch := CheckDayCountConsistency("te dejo toda la semana organizada", 2)
	require.NotNil(t, mismatch)
	assert.Equal(t, 7, mismatch.Implied)
	assert.Equal(t, 2, mismatch.Produced)
	assert.Contains(t, mismatch.String(), "7")
}
