package service

import (
	"fmt"
	"strings"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/intent"
)

const promptMaterialLimit = 800

// basePersona is the fixed system preamble. The assistant speaks Spanish and
// must stay inside the trainer's material.
const basePersona = `Eres el asistente personal de fitness del entrenador.
Respondes SIEMPRE en español, de forma cercana y motivadora.
Basas tus planes y consejos ÚNICAMENTE en el material del entrenador que se te proporciona.
Si el material no cubre lo que se pide, lo dices honestamente en vez de inventar.`

// protocolInstructions tells the model how to emit machine-readable blocks.
// The tag grammar here must stay in sync with the protocol package.
const protocolInstructions = `Cuando generes un plan estructurado, añade al final de tu respuesta UNA etiqueta con el JSON del plan:
- Dieta: [ACTION:OPEN_DIET:{"title":"...","daily_calories":...,"meals":[...],"allowed_foods":{...},"controlled_foods":{...},"prohibited_foods":{...}}]
- Entrenamiento: [ACTION:OPEN_WORKOUT:{"title":"...","days":[{"day":"...","exercises":[...]}]}]
- Plan de comidas: [ACTION:OPEN_MEAL_PLANNER:{"date":"YYYY-MM-DD","meals":[...]}] o con "dates":["YYYY-MM-DD",...] para varios días
Para abrir pantallas sin datos usa [ACTION:OPEN_GRAPH:{}], [ACTION:OPEN_PROGRESS_PHOTOS:{}] o [ACTION:OPEN_WEIGHT_GRAPH:{}].
Si el usuario menciona cambios en su peso, altura u objetivo, propón la actualización con [REQUEST:PROFILE_UPDATE:{"goal":"...","weight_kg":...,"height_cm":...}]; nunca la des por aplicada.
El texto fuera de las etiquetas es lo que verá el usuario: no menciones las etiquetas ni el JSON.`

// buildSystemPrompt assembles the system message for one turn: persona,
// client profile, current plan state, retrieved trainer material and the tag
// protocol.
func buildSystemPrompt(user *domain.User, tc turnContext, material []domain.TrainerContentItem, classification intent.Classification) string {
	var b strings.Builder
	b.WriteString(basePersona)

	b.WriteString("\n\n## Perfil del cliente\n")
	fmt.Fprintf(&b, "Nombre: %s\n", user.Name)
	if user.Goal != "" {
		fmt.Fprintf(&b, "Objetivo: %s\n", user.Goal)
	}
	if user.WeightKg != nil {
		fmt.Fprintf(&b, "Peso: %.1f kg\n", *user.WeightKg)
	}
	if user.HeightCm != nil {
		fmt.Fprintf(&b, "Altura: %.0f cm\n", *user.HeightCm)
	}

	b.WriteString("\n## Planes actuales\n")
	if tc.activeDiet != nil {
		fmt.Fprintf(&b, "Dieta activa: %q (%.0f kcal/día, %d comidas)\n",
			tc.activeDiet.Title, tc.activeDiet.DailyCalories, len(tc.activeDiet.Meals))
	} else {
		b.WriteString("Sin dieta activa.\n")
	}
	if tc.activeWorkout != nil {
		fmt.Fprintf(&b, "Entrenamiento activo: %q (%d días)\n",
			tc.activeWorkout.Title, len(tc.activeWorkout.Days))
	} else {
		b.WriteString("Sin plan de entrenamiento activo.\n")
	}

	if len(material) > 0 {
		b.WriteString("\n## Material del entrenador\n")
		for _, item := range material {
			fmt.Fprintf(&b, "### %s\n%s\n", item.Title, truncateRunes(item.RawContent, promptMaterialLimit))
		}
	}

	b.WriteString("\n## Protocolo de respuesta\n")
	b.WriteString(protocolInstructions)

	if classification.ExpectedSchema != "" {
		fmt.Fprintf(&b, "\n\nEsta petición requiere un plan estructurado de tipo %q: incluye la etiqueta correspondiente.", classification.ExpectedSchema)
	}

	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
