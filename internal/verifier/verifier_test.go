package verifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"alcyxob/coach-assistant/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeAnswer passes the minimum content policy: 5 rules, 3 items per
// category, a controlled and a prohibited food, and all three main meals.
const completeAnswer = `🎯 Reglas del objetivo:
- Come proteína en cada comida principal
- Bebe al menos dos litros de agua al día
- Duerme entre siete y ocho horas cada noche
- Entrena fuerza tres veces por semana
- Evita el alcohol entre semana

🥩 Proteínas:
- Pollo a la plancha
- Huevos enteros
- Merluza fresca

🍚 Hidratos:
- Arroz integral
- Patata cocida
- Avena en copos

🥑 Grasas:
- Aceite de oliva
- Aguacate
- Nueces naturales

🥬 Verduras:
- Brócoli
- Espinacas
- Calabacín

🍏 Frutas:
- Manzana
- Plátano
- Arándanos

🥤 Bebidas:
- Agua con gas
- Café solo
- Infusiones

🍪 Snacks:
- Yogur griego
- Queso fresco
- Palomitas caseras

⚠️ Limitados:
- Chocolate negro - 20g - 2x semana

❌ Prohibidos:
- Bollería industrial

🌅 Desayuno:
- Avena con leche y fruta

🍽️ Comida:
- Arroz con pollo y verduras

🌙 Cena:
- Merluza con ensalada
`

const prohibitedBlock = `❌ Prohibidos:
- Bollería industrial

`

// scriptedBackend replays canned completions.
type scriptedBackend struct {
	responses []string
	calls     int
	err       error
	lastReq   llm.Request
}

func (s *scriptedBackend) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return &llm.Response{Content: s.responses[i]}, nil
}

func TestParseSectionsSegmentsCompleteAnswer(t *testing.T) {
	parsed := ParseSections(completeAnswer)

	assert.Len(t, parsed.Rules, 5)
	for _, cat := range AllowedCategories {
		assert.Lenf(t, parsed.AllowedFoods[cat], 3, "category %s", cat)
	}
	require.Len(t, parsed.ControlledFoods, 1)
	assert.Equal(t, "Chocolate negro", parsed.ControlledFoods[0].Name)
	assert.Equal(t, "20g", parsed.ControlledFoods[0].MaxQuantity)
	assert.Equal(t, "2x semana", parsed.ControlledFoods[0].Frequency)
	require.Len(t, parsed.ProhibitedFoods, 1)
	assert.Equal(t, "Bollería industrial", parsed.ProhibitedFoods[0])
	assert.Len(t, parsed.MealExamples["breakfast"], 1)
	assert.Len(t, parsed.MealExamples["lunch"], 1)
	assert.Len(t, parsed.MealExamples["dinner"], 1)
}

func TestParseSectionsIgnoresProseAndUnknownHeaders(t *testing.T) {
	parsed := ParseSections(`Hola, aquí va tu plan.

## Notas varias
- Esto no pertenece a ninguna sección conocida

Texto suelto sin viñeta.`)

	assert.Empty(t, parsed.Rules)
	assert.Empty(t, parsed.ProhibitedFoods)
	for _, cat := range AllowedCategories {
		assert.Empty(t, parsed.AllowedFoods[cat])
	}
}

func TestMinimumContentPolicyAcceptsCompleteAnswer(t *testing.T) {
	check := MinimumContentPolicy{}.Evaluate(ParseSections(completeAnswer), "")

	assert.True(t, check.IsComplete)
	assert.Empty(t, check.MissingBlocks)
	assert.Empty(t, check.MissingCategories)
	assert.Equal(t, 5, check.RulesCount)
	assert.Equal(t, 21, check.AllowedFoodsTotal)
}

func TestMinimumContentPolicyReportsPreciseGaps(t *testing.T) {
	partial := strings.Replace(completeAnswer, prohibitedBlock, "", 1)
	partial = strings.Replace(partial, "- Arándanos\n", "", 1)
	partial = strings.Replace(partial, "- Infusiones\n", "", 1)

	check := MinimumContentPolicy{}.Evaluate(ParseSections(partial), "")

	assert.False(t, check.IsComplete)
	assert.Equal(t, []string{"prohibited_foods"}, check.MissingBlocks)
	assert.Equal(t, []string{"fruits", "beverages"}, check.MissingCategories)

	missing := MissingItems(check)
	require.Len(t, missing, 3)
	assert.Contains(t, missing[0], "prohibidos")
	assert.Contains(t, missing[1], "frutas")
	assert.Contains(t, missing[2], "bebidas")
}

func TestPolicyGoalChecksAreInformationalOnly(t *testing.T) {
	answer := completeAnswer + "\n🎯 Reglas:\n- Mantén un déficit calórico moderado y constante\n"
	check := MinimumContentPolicy{}.Evaluate(ParseSections(answer), "perder grasa")

	assert.True(t, check.IsComplete)
	assert.True(t, check.GoalChecks.FatLoss.HasCalorieDeficit)
	assert.True(t, check.GoalChecks.FatLoss.HasFiberFocus)
}

func TestVerifyCompleteAnswerNeedsNoBackend(t *testing.T) {
	backend := &scriptedBackend{}
	v := New(backend)

	outcome := v.VerifyAndComplete(context.Background(), completeAnswer, "", nil)

	assert.True(t, outcome.IsComplete)
	assert.Equal(t, 0, outcome.Iterations)
	assert.Zero(t, backend.calls)
	assert.Equal(t, completeAnswer, outcome.FinalAnswer)
}

func TestVerifyCompletesInOnePass(t *testing.T) {
	partial := strings.Replace(completeAnswer, prohibitedBlock, "", 1)
	supplement := "❌ Prohibidos:\n- Bollería industrial\n- Refrescos azucarados en cualquier cantidad"
	backend := &scriptedBackend{responses: []string{supplement}}
	v := New(backend)

	outcome := v.VerifyAndComplete(context.Background(), partial, "perder grasa", nil)

	assert.True(t, outcome.IsComplete)
	assert.Equal(t, 1, outcome.Iterations)
	assert.False(t, outcome.Stalled)
	assert.Contains(t, outcome.FinalAnswer, "Refrescos azucarados")
	assert.NotContains(t, outcome.FinalAnswer, exhaustedDisclaimer)

	// The supplemental request names exactly what is missing.
	require.Len(t, backend.lastReq.Messages, 1)
	assert.Contains(t, backend.lastReq.Messages[0].Content, "prohibidos")
}

func TestVerifyStallsOnNearDuplicateSupplement(t *testing.T) {
	partial := strings.Replace(completeAnswer, prohibitedBlock, "", 1)
	useless := "Recuerda siempre escuchar a tu cuerpo y descansar lo suficiente cada semana."
	backend := &scriptedBackend{responses: []string{useless}}
	v := New(backend)

	outcome := v.VerifyAndComplete(context.Background(), partial, "", nil)

	assert.False(t, outcome.IsComplete)
	assert.True(t, outcome.Stalled)
	assert.Equal(t, 1, outcome.Iterations)
	assert.Less(t, outcome.Iterations, 3)
	assert.Contains(t, outcome.FinalAnswer, exhaustedDisclaimer)
}

func TestVerifyStallsOnTrivialSupplement(t *testing.T) {
	partial := strings.Replace(completeAnswer, prohibitedBlock, "", 1)
	backend := &scriptedBackend{responses: []string{"Ok."}}
	v := New(backend)

	outcome := v.VerifyAndComplete(context.Background(), partial, "", nil)

	assert.False(t, outcome.IsComplete)
	assert.True(t, outcome.Stalled)
	assert.Equal(t, 0, outcome.Iterations)
	assert.Contains(t, outcome.FinalAnswer, exhaustedDisclaimer)
}

func TestVerifyBackendFailureKeepsInitialAnswer(t *testing.T) {
	partial := strings.Replace(completeAnswer, prohibitedBlock, "", 1)
	backend := &scriptedBackend{err: errors.New("upstream 503")}
	v := New(backend)

	outcome := v.VerifyAndComplete(context.Background(), partial, "", nil)

	assert.False(t, outcome.IsComplete)
	assert.True(t, outcome.Stalled)
	assert.Contains(t, outcome.FinalAnswer, "🥩 Proteínas")
	assert.Contains(t, outcome.FinalAnswer, exhaustedDisclaimer)
	assert.NotEmpty(t, outcome.MissingItems)
}

func TestVerifyRespectsIterationBudget(t *testing.T) {
	partial := strings.Replace(completeAnswer, prohibitedBlock, "", 1)
	// Distinct but useless supplements keep the loop spinning to the cap.
	backend := &scriptedBackend{responses: []string{
		"Considera planificar la compra semanal con antelación para no improvisar cenas.",
		"Cocinar al vapor conserva mejor los nutrientes que las frituras habituales diarias.",
		"Una caminata ligera después de comer ayuda bastante a la digestión y al ánimo.",
		"Otro consejo genérico distinto que tampoco aporta la sección que falta aquí.",
	}}
	v := New(backend, WithMaxIterations(2))

	outcome := v.VerifyAndComplete(context.Background(), partial, "", nil)

	assert.False(t, outcome.IsComplete)
	assert.Equal(t, 2, outcome.Iterations)
	assert.Contains(t, outcome.FinalAnswer, exhaustedDisclaimer)
}

func TestJaccardSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, JaccardSimilarity("pollo arroz verduras", "verduras arroz pollo"), 1e-9)
	assert.InDelta(t, 0.0, JaccardSimilarity("pollo arroz", "merluza patata"), 1e-9)
	assert.InDelta(t, 1.0, JaccardSimilarity("", ""), 1e-9)

	mostlySame := JaccardSimilarity(
		"lunes martes miércoles jueves viernes sábado domingo",
		"lunes martes miércoles jueves viernes sábado festivo",
	)
	assert.Greater(t, mostlySame, 0.7)
	assert.Less(t, mostlySame, 1.0)
}
