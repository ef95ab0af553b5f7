package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRequestTypes(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		want      RequestType
		expensive bool
		schema    string
	}{
		{"meal plan", "Planifica mis comidas de la semana", TypeMealPlanRequest, true, "meal_plan"},
		{"meal plan wins over diet words", "Hazme un plan de comidas con mis calorías", TypeMealPlanRequest, true, "meal_plan"},
		{"workout", "Quiero una rutina nueva para este mes", TypeWorkoutRequest, true, "workout"},
		{"diet", "Necesito una dieta para definir", TypeDietRequest, true, "diet"},
		{"food question", "¿Puedo comer fresas por la noche?", TypeFoodQuestion, false, ""},
		{"exercise question", "¿Cómo hacer bien el peso muerto?", TypeExerciseQuestion, false, ""},
		{"progress question", "¿Cómo voy con mis resultados?", TypeProgressQuestion, false, ""},
		{"profile update", "Ahora peso 78 kilos", TypeProfileUpdate, false, "profile_update"},
		{"general chat", "¡Buenos días! ¿Todo bien?", TypeGeneralChat, false, ""},
	}

	c := NewKeywordClassifier()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.message)
			assert.Equal(t, tc.want, got.RequestType)
			assert.Equal(t, tc.expensive, got.UseExpensiveModel)
			assert.Equal(t, tc.schema, got.ExpectedSchema)
		})
	}
}

func TestClassifyNegationDowngradesPlanIntents(t *testing.T) {
	c := NewKeywordClassifier()

	got := c.Classify("¿Qué te parece mi dieta actual?")
	assert.Equal(t, TypeGeneralChat, got.RequestType)
	assert.False(t, got.UseExpensiveModel)

	got = c.Classify("Dame feedback sobre mi rutina de esta semana")
	assert.Equal(t, TypeGeneralChat, got.RequestType)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := NewKeywordClassifier()
	assert.Equal(t, TypeDietRequest, c.Classify("NECESITO UNA DIETA YA").RequestType)
}

func TestDetectSafetyIssues(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []SafetyIssue
	}{
		{"medical", "Tengo diabetes tipo 2, ¿qué dieta me recomiendas?", []SafetyIssue{IssueMedicalCondition}},
		{"injury", "Me duele la rodilla al correr", []SafetyIssue{IssueInjury}},
		{"eating disorder", "Últimamente no como nada en todo el día", []SafetyIssue{IssueEatingDisorder}},
		{"mental health", "Tengo mucha ansiedad y no duermo", []SafetyIssue{IssueMentalHealth}},
		{"extreme behavior", "Entreno todos los días sin parar", []SafetyIssue{IssueExtremeBehavior}},
		{"combined", "Tengo una lesión y entreno todos los días", []SafetyIssue{IssueInjury, IssueExtremeBehavior}},
		{"clean", "Quiero mejorar mi resistencia poco a poco", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectSafetyIssues(tc.message))
		})
	}
}

func TestSafetyResponseMatchesMostRelevantIssue(t *testing.T) {
	resp := SafetyResponse([]SafetyIssue{IssueEatingDisorder})
	assert.Contains(t, resp, "AVISO IMPORTANTE")
	assert.Contains(t, resp, "trastorno alimentario")

	resp = SafetyResponse([]SafetyIssue{IssueInjury, IssueExtremeBehavior})
	assert.Contains(t, resp, "fisioterapeuta")

	// Mental health alone still gets the base guidance.
	resp = SafetyResponse([]SafetyIssue{IssueMentalHealth})
	assert.Contains(t, resp, "AVISO IMPORTANTE")
}
