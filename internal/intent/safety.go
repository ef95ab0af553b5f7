// internal/intent/safety.go
package intent

import "strings"

// SafetyIssue classifies a sensitive situation detected in a user message.
// When any issue is present the turn short-circuits with a fixed safety
// reply instead of calling the model backend.
type SafetyIssue string

const (
	IssueMedicalCondition SafetyIssue = "medical_condition"
	IssueEatingDisorder   SafetyIssue = "eating_disorder"
	IssueInjury           SafetyIssue = "injury"
	IssueExtremeBehavior  SafetyIssue = "extreme_behavior"
	IssueMentalHealth     SafetyIssue = "mental_health"
)

var (
	medicalKeywords = []string{
		"diabetes", "hipertensión", "hipertension", "hipertenso", "cardiopatía", "cardiopatia",
		"cardiaco", "problema de corazón", "problema de corazon", "presión alta", "presion alta", "colesterol",
	}
	injuryKeywords = []string{
		"lesión", "lesion", "lesionado", "dolor", "dolores", "artritis",
		"osteoporosis", "hernia", "problema de espalda", "rodilla",
		"hombro lesionado", "codo", "muñeca", "tobillo", "cadera",
	}
	eatingDisorderKeywords = []string{
		"anorexia", "bulimia", "trastorno alimentario",
		"no como nada", "vomito", "purgas",
		"obsesión con la comida", "obsesion con la comida", "miedo a engordar",
	}
	mentalHealthKeywords = []string{
		"depresión", "depresion", "ansiedad", "estrés extremo", "estres extremo",
		"no puedo más", "no puedo mas", "no tengo motivación", "no tengo motivacion", "me siento mal",
	}
	extremeBehaviorKeywords = []string{
		"entreno 7 días", "entreno 7 dias", "no descanso", "entreno hasta caer",
		"como muy poco", "ayuno prolongado", "entreno todos los días", "entreno todos los dias",
	}
)

// DetectSafetyIssues scans a message for sensitive situations.
func DetectSafetyIssues(message string) []SafetyIssue {
	lower := strings.ToLower(message)
	var issues []SafetyIssue
	if containsAny(lower, medicalKeywords) {
		issues = append(issues, IssueMedicalCondition)
	}
	if containsAny(lower, injuryKeywords) {
		issues = append(issues, IssueInjury)
	}
	if containsAny(lower, eatingDisorderKeywords) {
		issues = append(issues, IssueEatingDisorder)
	}
	if containsAny(lower, mentalHealthKeywords) {
		issues = append(issues, IssueMentalHealth)
	}
	if containsAny(lower, extremeBehaviorKeywords) {
		issues = append(issues, IssueExtremeBehavior)
	}
	return issues
}

const safetyBaseMessage = `⚠️ AVISO IMPORTANTE

Lo que mencionas requiere atención de un profesional sanitario.
Esta aplicación NO sustituye el asesoramiento médico, nutricional
o de un entrenador personal certificado.

Te recomiendo:
• Consultar con un médico si mencionas condiciones de salud
• Consultar con un nutricionista si hay problemas alimentarios
• Consultar con un fisioterapeuta si hay lesiones o dolores`

// SafetyResponse builds the fixed reply returned when issues are detected.
// The most severe issue decides the appended guidance.
func SafetyResponse(issues []SafetyIssue) string {
	for _, issue := range issues {
		switch issue {
		case IssueMedicalCondition:
			return safetyBaseMessage + "\n\nPor favor, consulta con un médico antes de continuar con cualquier plan de entrenamiento o dieta."
		case IssueEatingDisorder:
			return safetyBaseMessage + "\n\nSi estás lidiando con un trastorno alimentario, es crucial que busques ayuda profesional."
		case IssueInjury:
			return safetyBaseMessage + "\n\nCon una lesión activa, es esencial que un fisioterapeuta o médico te dé el alta antes de entrenar."
		case IssueExtremeBehavior:
			return safetyBaseMessage + "\n\nLos comportamientos extremos pueden ser peligrosos. Consulta con un profesional para diseñar un plan sostenible."
		}
	}
	return safetyBaseMessage
}
