package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractsActionAndStripsSpan(t *testing.T) {
	raw := `Aquí tienes tu plan. [ACTION:OPEN_DIET:{"title":"Plan hipocalórico"}] ¡A comer!`

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, ActionOpenDiet, result.Actions[0].Type)
	assert.JSONEq(t, `{"title":"Plan hipocalórico"}`, string(result.Actions[0].Data))
	assert.Empty(t, result.Requests)
	// Tag removal leaves the two flanking spaces; only runs of three or more
	// are collapsed.
	assert.Equal(t, "Aquí tienes tu plan.  ¡A comer!", result.CleanText)
}

func TestParsePreservesBracketsInsideStrings(t *testing.T) {
	payload := `{"title":"Plan [verano] v2","notes":"cierra con ] cuando puedas"}`
	raw := "Listo. [ACTION:OPEN_DIET:" + payload + "]"

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, payload, string(result.Actions[0].Data))
	assert.Equal(t, "Listo.", result.CleanText)
}

func TestParseHandlesEscapedQuotes(t *testing.T) {
	payload := `{"title":"dijo \"hola\" y {todo} bien"}`
	raw := "[ACTION:OPEN_WORKOUT:" + payload + "] vamos"

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, ActionOpenWorkout, result.Actions[0].Type)
	assert.Equal(t, payload, string(result.Actions[0].Data))
	assert.Equal(t, "vamos", result.CleanText)
}

func TestParseDiscardsInvalidJSONButStripsSpan(t *testing.T) {
	raw := `Antes [ACTION:OPEN_DIET:{"title":}] después`

	result := Parse(raw)

	assert.Empty(t, result.Actions)
	assert.Equal(t, "Antes  después", result.CleanText)
}

func TestParseStripsTruncatedPayloadToEnd(t *testing.T) {
	raw := `Tu plan: [ACTION:OPEN_DIET:{"title":"incompleto","meals":[{"name":"Desayuno"`

	result := Parse(raw)

	assert.Empty(t, result.Actions)
	assert.Equal(t, "Tu plan:", result.CleanText)
}

func TestParseStripsHeaderWithoutObjectPayload(t *testing.T) {
	raw := `Mira [ACTION:OPEN_GRAPH:nope] esto`

	result := Parse(raw)

	assert.Empty(t, result.Actions)
	assert.Equal(t, "Mira  esto", result.CleanText)
}

func TestParseMissingClosingBracketDropsBlockOnly(t *testing.T) {
	// Balanced JSON but no closing ']' right after it: the object itself is
	// stripped, the trailing prose survives.
	raw := `Hola [ACTION:OPEN_GRAPH:{} y más texto`

	result := Parse(raw)

	assert.Empty(t, result.Actions)
	assert.Contains(t, result.CleanText, "y más texto")
}

func TestParseKeepsActionAndRequestStreamsSeparate(t *testing.T) {
	raw := "Plan listo.\n" +
		`[ACTION:OPEN_MEAL_PLANNER:{"date":"2026-09-01","meals":[]}]` + "\n" +
		`[REQUEST:PROFILE_UPDATE:{"weight_kg":79.5}]` + "\n" +
		"Dime si te encaja."

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	require.Len(t, result.Requests, 1)
	assert.Equal(t, ActionOpenMealPlanner, result.Actions[0].Type)
	assert.Equal(t, RequestProfileUpdate, result.Requests[0].Type)
	assert.Equal(t, "Plan listo.\n\nDime si te encaja.", result.CleanText)
}

func TestParseMultipleActionsKeepOrder(t *testing.T) {
	raw := `[ACTION:OPEN_WEIGHT_GRAPH:{}] texto [ACTION:OPEN_PROGRESS_PHOTOS:{}]`

	result := Parse(raw)

	require.Len(t, result.Actions, 2)
	assert.Equal(t, ActionOpenWeightGraph, result.Actions[0].Type)
	assert.Equal(t, ActionOpenProgressPhotos, result.Actions[1].Type)
	assert.Equal(t, "texto", result.CleanText)
}

func TestParseOneBadBlockDoesNotPoisonSiblings(t *testing.T) {
	raw := `[ACTION:OPEN_DIET:{"bad":1,}]` + " y luego " + `[ACTION:OPEN_GRAPH:{}]`

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, ActionOpenGraph, result.Actions[0].Type)
}

func TestParsePlainTextUntouched(t *testing.T) {
	raw := "Hoy toca descanso. Hidrátate bien y duerme 8 horas."

	result := Parse(raw)

	assert.Empty(t, result.Actions)
	assert.Empty(t, result.Requests)
	assert.Equal(t, raw, result.CleanText)
}

func TestParseCollapsesLargeGaps(t *testing.T) {
	raw := "Primera parte.\n\n\n\n[ACTION:OPEN_GRAPH:{}]\n\n\n\nSegunda parte."

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, "Primera parte.\n\nSegunda parte.", result.CleanText)
}

func TestScanFiltersByKind(t *testing.T) {
	raw := `[ACTION:OPEN_GRAPH:{}] [REQUEST:PROFILE_UPDATE:{"goal":"ganar músculo"}]`

	actions := Scan(raw, KindAction)
	requests := Scan(raw, KindRequest)

	require.Len(t, actions, 1)
	require.Len(t, requests, 1)
	assert.Equal(t, ActionOpenGraph, actions[0].Type)
	assert.Equal(t, RequestProfileUpdate, requests[0].Type)
	// Spans must be valid for destructive splices.
	assert.Equal(t, raw[actions[0].Start:actions[0].End], "[ACTION:OPEN_GRAPH:{}]")
}

func TestParseAllowsWhitespaceAroundPayload(t *testing.T) {
	raw := "[ACTION:OPEN_GRAPH: {} ]"

	result := Parse(raw)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, "{}", string(result.Actions[0].Data))
	assert.Equal(t, "", result.CleanText)
}
