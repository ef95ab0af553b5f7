// Package protocol extracts the embedded command blocks a model reply may
// carry ([ACTION:TYPE:{...}] / [REQUEST:TYPE:{...}]), validates their JSON
// payloads and strips them from the user-visible text.
package protocol

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Kind distinguishes the two recognized block kinds.
type Kind string

const (
	KindAction  Kind = "ACTION"
	KindRequest Kind = "REQUEST"
)

// Action types carried by ACTION blocks.
const (
	ActionOpenDiet           = "OPEN_DIET"
	ActionOpenWorkout        = "OPEN_WORKOUT"
	ActionOpenMealPlanner    = "OPEN_MEAL_PLANNER"
	ActionOpenGraph          = "OPEN_GRAPH"
	ActionOpenProgressPhotos = "OPEN_PROGRESS_PHOTOS"
	ActionOpenWeightGraph    = "OPEN_WEIGHT_GRAPH"
)

// Request types carried by REQUEST blocks.
const (
	RequestProfileUpdate = "PROFILE_UPDATE"
)

// Block is one recognized tag with a balanced JSON payload. Start and End
// delimit the whole tag (opening '[' through closing ']') in the source text,
// valid for a destructive splice.
type Block struct {
	Kind  Kind
	Type  string
	JSON  string
	Start int
	End   int
}

// Action is the caller-facing form of a dispatched ACTION block.
type Action struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Request is the caller-facing form of a REQUEST block. Requests propose a
// user-confirmable change; nothing is applied until the client confirms.
type Request struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseResult holds everything extracted from one model reply.
type ParseResult struct {
	CleanText string    `json:"cleanText"`
	Actions   []Action  `json:"actions"`
	Requests  []Request `json:"requests"`
}

// headerPattern locates a block header. The payload itself is scanned by hand
// because it may contain ']' inside string values, which a bracket search
// would mis-terminate on.
var headerPattern = regexp.MustCompile(`\[(ACTION|REQUEST):([A-Z_]+):`)

// segment is a located tag span. Invalid segments are stripped from the clean
// text but never surfaced as blocks.
type segment struct {
	block Block
	valid bool
}

// Scan extracts the ordered, well-formed blocks of the given kind from text.
// Malformed tags are discarded; Scan never fails.
func Scan(text string, kind Kind) []Block {
	var blocks []Block
	for _, seg := range scanSegments(text) {
		if seg.valid && seg.block.Kind == kind {
			blocks = append(blocks, seg.block)
		}
	}
	return blocks
}

// Parse extracts all blocks from a raw model reply and returns the clean text
// with every recognized span removed. It is a pure function: one pass over
// the token stream, no shared state.
func Parse(raw string) ParseResult {
	segments := scanSegments(raw)

	result := ParseResult{
		Actions:  []Action{},
		Requests: []Request{},
	}

	var clean strings.Builder
	prev := 0
	for _, seg := range segments {
		clean.WriteString(raw[prev:seg.block.Start])
		prev = seg.block.End
		if !seg.valid {
			continue
		}
		switch seg.block.Kind {
		case KindAction:
			result.Actions = append(result.Actions, Action{Type: seg.block.Type, Data: json.RawMessage(seg.block.JSON)})
		case KindRequest:
			result.Requests = append(result.Requests, Request{Type: seg.block.Type, Data: json.RawMessage(seg.block.JSON)})
		}
	}
	clean.WriteString(raw[prev:])

	result.CleanText = tidyWhitespace(clean.String())
	return result
}

// scanSegments walks the text once, locating each header and consuming its
// payload with a brace/quote/escape-aware state machine.
func scanSegments(text string) []segment {
	var segments []segment
	offset := 0
	for offset < len(text) {
		loc := headerPattern.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			break
		}
		start := offset + loc[0]
		payloadStart := offset + loc[1]
		kind := Kind(text[offset+loc[2] : offset+loc[3]])
		typ := text[offset+loc[4] : offset+loc[5]]

		seg, next := consumePayload(text, start, payloadStart, kind, typ)
		segments = append(segments, seg)
		offset = next
	}
	return segments
}

// consumePayload scans the JSON object that follows a header and the closing
// ']'. It returns the segment and the offset scanning should resume at.
func consumePayload(text string, start, payloadStart int, kind Kind, typ string) (segment, int) {
	i := payloadStart
	// Skip whitespace between the header and the payload.
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != '{' {
		// No JSON object where one is required. Strip through the next ']'
		// if there is one, so the broken tag never reaches the user.
		end := strings.IndexByte(text[i:], ']')
		if end < 0 {
			return malformed(start, len(text), kind, typ), len(text)
		}
		return malformed(start, i+end+1, kind, typ), i + end + 1
	}

	jsonStart := i
	depth := 0
	inString := false
	escaped := false
	jsonEnd := -1
	for ; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				jsonEnd = i + 1
			}
		}
		if jsonEnd >= 0 {
			break
		}
	}
	if jsonEnd < 0 {
		// Truncated payload: the braces never balance. Strip through the end
		// of the text, there is nothing usable past this point anyway.
		return malformed(start, len(text), kind, typ), len(text)
	}

	// The next non-whitespace character must be the closing ']'.
	closing := jsonEnd
	for closing < len(text) && (text[closing] == ' ' || text[closing] == '\t' || text[closing] == '\n') {
		closing++
	}
	if closing >= len(text) || text[closing] != ']' {
		return malformed(start, jsonEnd, kind, typ), jsonEnd
	}
	end := closing + 1

	payload := text[jsonStart:jsonEnd]
	if !json.Valid([]byte(payload)) {
		return malformed(start, end, kind, typ), end
	}

	return segment{
		block: Block{Kind: kind, Type: typ, JSON: payload, Start: start, End: end},
		valid: true,
	}, end
}

func malformed(start, end int, kind Kind, typ string) segment {
	return segment{block: Block{Kind: kind, Type: typ, Start: start, End: end}}
}

var (
	spaceRunPattern   = regexp.MustCompile(`[ \t]{3,}`)
	newlineRunPattern = regexp.MustCompile(`\n{3,}`)
)

// tidyWhitespace collapses the larger gaps block removal leaves behind
// without disturbing the surrounding prose.
func tidyWhitespace(s string) string {
	s = spaceRunPattern.ReplaceAllString(s, " ")
	s = newlineRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
