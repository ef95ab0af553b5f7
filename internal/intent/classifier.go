// Package intent decides the response shape of a chat turn with a cheap
// keyword heuristic. It is not a learned classifier: false negatives are
// expected and are mitigated downstream by payload sniffing on the parsed
// reply.
package intent

import "strings"

// RequestType is the response shape selected for a turn.
type RequestType string

const (
	TypeGeneralChat      RequestType = "general_chat"
	TypeDietRequest      RequestType = "diet_request"
	TypeWorkoutRequest   RequestType = "workout_request"
	TypeMealPlanRequest  RequestType = "meal_plan_request"
	TypeFoodQuestion     RequestType = "food_question"
	TypeExerciseQuestion RequestType = "exercise_question"
	TypeProgressQuestion RequestType = "progress_question"
	TypeProfileUpdate    RequestType = "profile_update"
)

// Classification gates which schema (if any) is requested from the backend,
// whether the expensive model tier is used, and how deep verification goes.
type Classification struct {
	RequestType       RequestType
	UseExpensiveModel bool
	// ExpectedSchema names the structured payload the model is asked to
	// emit, empty for plain chat.
	ExpectedSchema string
}

// Classifier selects a response shape for a message. The keyword table
// implementation is the only strategy today; the interface exists so a
// smarter model can be substituted without touching the orchestrator.
type Classifier interface {
	Classify(message string) Classification
}

// KeywordClassifier is a pure keyword-membership test over small keyword
// sets, with negation cues that downgrade a diet/workout match back to plain
// chat (asking for an opinion about a diet is not asking for a diet).
type KeywordClassifier struct{}

// NewKeywordClassifier returns the keyword-table classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	mealPlanKeywords = []string{
		"plan de comidas", "meal plan", "comidas del día", "comidas del dia",
		"qué desayunar", "que desayunar", "qué cenar", "que cenar",
		"organizar comidas", "planificar comidas", "planifica mis comidas",
	}
	dietKeywords = []string{
		"dieta", "alimentación", "alimentacion", "nutrición", "nutricion",
		"qué comer", "que comer", "plan de dieta", "macros", "calorías", "calorias",
	}
	workoutKeywords = []string{
		"entrenamiento", "rutina", "entreno", "workout",
		"plan de entrenamiento", "qué entrenar", "que entrenar",
	}
	foodKeywords = []string{
		"puedo comer", "está permitido", "esta permitido", "alimento", "snack",
	}
	exerciseKeywords = []string{
		"ejercicio", "cómo hacer", "como hacer", "técnica", "tecnica", "ejecución", "ejecucion",
	}
	progressKeywords = []string{
		"progreso", "evolución", "evolucion", "cómo voy", "como voy", "resultados",
	}
	profileKeywords = []string{
		"peso ahora", "ahora peso", "mi peso es", "mido", "cambiar mi objetivo",
		"nuevo objetivo", "actualiza mi perfil", "update my profile",
	}
	// Negation cues: the user is discussing a plan, not requesting one.
	negationKeywords = []string{
		"feedback", "opinión", "opinion", "qué te parece", "que te parece",
		"qué opinas", "que opinas", "valoración", "valoracion",
	}
)

func (KeywordClassifier) Classify(message string) Classification {
	lower := strings.ToLower(message)

	// Plan-producing intents are downgraded to plain chat when the message
	// is really asking for an opinion about an existing plan.
	if !containsAny(lower, negationKeywords) {
		switch {
		case containsAny(lower, mealPlanKeywords):
			return Classification{TypeMealPlanRequest, true, "meal_plan"}
		case containsAny(lower, workoutKeywords):
			return Classification{TypeWorkoutRequest, true, "workout"}
		case containsAny(lower, dietKeywords):
			return Classification{TypeDietRequest, true, "diet"}
		}
	}

	switch {
	case containsAny(lower, profileKeywords):
		return Classification{TypeProfileUpdate, false, "profile_update"}
	case containsAny(lower, foodKeywords):
		return Classification{TypeFoodQuestion, false, ""}
	case containsAny(lower, exerciseKeywords):
		return Classification{TypeExerciseQuestion, false, ""}
	case containsAny(lower, progressKeywords):
		return Classification{TypeProgressQuestion, false, ""}
	}
	return Classification{TypeGeneralChat, false, ""}
}

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}
