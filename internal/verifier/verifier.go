// internal/verifier/verifier.go
package verifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/llm"
)

// Disclaimer appended when the loop exhausts its budget without reaching a
// complete answer.
const exhaustedDisclaimer = "\n\n⚠️ Nota: Algunos detalles pueden no estar completos en mi material. " +
	"Usa esto como guía base y ajusta según tus necesidades."

// Verifier drives the completeness loop over a single diet answer:
// scan -> check -> (complete | generate supplement -> merge -> scan again),
// bounded by MaxIterations and a near-duplicate stall guard.
type Verifier struct {
	backend             llm.Generator
	policy              Policy
	maxIterations       int
	similarityThreshold float64
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithPolicy substitutes the completeness policy.
func WithPolicy(p Policy) Option {
	return func(v *Verifier) { v.policy = p }
}

// WithMaxIterations bounds the supplement loop.
func WithMaxIterations(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.maxIterations = n
		}
	}
}

// WithSimilarityThreshold sets the Jaccard score above which a new supplement
// is treated as a near-duplicate of an earlier one.
func WithSimilarityThreshold(t float64) Option {
	return func(v *Verifier) {
		if t > 0 {
			v.similarityThreshold = t
		}
	}
}

// New creates a Verifier over the given backend.
func New(backend llm.Generator, opts ...Option) *Verifier {
	v := &Verifier{
		backend:             backend,
		policy:              MinimumContentPolicy{},
		maxIterations:       3,
		similarityThreshold: 0.8,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Outcome is the terminal state of one verification run.
type Outcome struct {
	IsComplete   bool
	FinalAnswer  string
	MissingItems []string
	Iterations   int
	Stalled      bool
}

// VerifyAndComplete checks the answer and tops it up with supplements until
// it passes the policy, the iteration budget runs out, or the loop stalls on
// near-duplicate content. It never fails the turn: a backend error during a
// supplemental pass terminates the loop with whatever answer exists.
func (v *Verifier) VerifyAndComplete(ctx context.Context, answer, goal string, material []domain.TrainerContentItem) Outcome {
	response := answer
	iterations := 0
	var allMissing []string
	var added []string // previously merged supplements, for the stall guard
	stalled := false

	for iterations < v.maxIterations {
		check := v.policy.Evaluate(ParseSections(response), goal)
		if check.IsComplete {
			return Outcome{IsComplete: true, FinalAnswer: response, Iterations: iterations}
		}

		missing := MissingItems(check)
		allMissing = append(allMissing, missing...)

		supplement, err := v.generateSupplement(ctx, missing, goal, material, response)
		if err != nil {
			// The initial answer is still usable; a supplement failure is not
			// worth failing the turn over.
			log.Printf("WARN: Diet supplement generation failed: %v", err)
			stalled = true
			break
		}

		if v.isNearDuplicate(supplement, added) || len(strings.TrimSpace(supplement)) < 50 {
			stalled = true
			break
		}

		response = response + "\n\n" + supplement
		added = append(added, supplement)
		iterations++
	}

	final := v.policy.Evaluate(ParseSections(response), goal)
	if !final.IsComplete {
		response += exhaustedDisclaimer
	}
	if len(allMissing) > 5 {
		allMissing = allMissing[len(allMissing)-5:]
	}
	return Outcome{
		IsComplete:   final.IsComplete,
		FinalAnswer:  response,
		MissingItems: allMissing,
		Iterations:   iterations,
		Stalled:      stalled,
	}
}

func (v *Verifier) isNearDuplicate(supplement string, added []string) bool {
	for _, prior := range added {
		if JaccardSimilarity(supplement, prior) > v.similarityThreshold {
			return true
		}
	}
	return false
}

// generateSupplement asks the backend for exactly the missing pieces,
// grounded in the trainer material and forbidding repetition.
func (v *Verifier) generateSupplement(ctx context.Context, missing []string, goal string, material []domain.TrainerContentItem, existing string) (string, error) {
	var b strings.Builder
	b.WriteString("El usuario pidió un plan de dieta pero la respuesta inicial no estaba completa.\n")
	b.WriteString("Faltan estos elementos: ")
	b.WriteString(strings.Join(missing, ", "))
	b.WriteString("\n\nBasándote SOLO en el material del entrenador disponible, completa SOLO lo que falta.\n")
	b.WriteString("NO inventes nada que no esté en el material.\n\nMaterial disponible:\n")
	for _, item := range material {
		fmt.Fprintf(&b, "- %s: %s\n", item.Title, truncate(item.RawContent, 500))
	}
	fmt.Fprintf(&b, "\nObjetivo del usuario: %s\n", goal)
	b.WriteString("\nContenido que ya está incluido (NO lo repitas):\n")
	b.WriteString(truncate(existing, 1000))
	b.WriteString("\n\nGenera SOLO el contenido faltante en el mismo formato, sin repetir lo ya dicho.")

	resp, err := v.backend.Complete(ctx, llm.Request{
		Messages: []llm.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// JaccardSimilarity computes word-set overlap between two texts, in [0, 1].
func JaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
