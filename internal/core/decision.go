// ABOUTME: DecisionEngine decides merge-or-create for each incoming topic
// ABOUTME: Threshold bands first, LLM tie-break in the ambiguous band, deterministic fallback on failure
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/docweave/docweave/internal/llm"
	"github.com/docweave/docweave/internal/logger"
	"github.com/docweave/docweave/internal/models"
)

// Thresholds are the similarity policy constants for the decision engine.
type Thresholds struct {
	// Merge is the similarity at or above which a topic always merges.
	Merge float64
	// Create is the similarity at or below which a topic always creates.
	Create float64
	// Fallback splits the ambiguous band when the LLM is unavailable.
	Fallback float64
}

// DefaultThresholds returns the tuned policy constants.
func DefaultThresholds() Thresholds {
	return Thresholds{Merge: 0.85, Create: 0.40, Fallback: 0.60}
}

// DecisionEngine combines similarity ranking with LLM tie-breaking.
type DecisionEngine struct {
	llm        llm.Client
	thresholds Thresholds
	log        *logger.Logger
}

// NewDecisionEngine creates a DecisionEngine.
func NewDecisionEngine(client llm.Client, thresholds Thresholds, log *logger.Logger) *DecisionEngine {
	return &DecisionEngine{
		llm:        client,
		thresholds: thresholds,
		log:        log.With("component", "DecisionEngine"),
	}
}

// Decide routes a topic given its ranked candidates. Outside the ambiguous
// band the decision is made without any LLM call; inside it the LLM verdict
// is authoritative. The engine always returns a decision: LLM failure
// degrades to the similarity fallback rule with low confidence.
func (e *DecisionEngine) Decide(ctx context.Context, topic models.Topic, candidates []Candidate) models.Decision {
	if len(candidates) == 0 {
		return models.Decision{
			Action:     models.ActionCreate,
			Confidence: models.ConfidenceHigh,
			Reason:     "no existing documents to compare against",
		}
	}

	top := candidates[0]
	sim := top.Similarity

	if sim >= e.thresholds.Merge {
		return models.Decision{
			Action:      models.ActionMerge,
			TargetDocID: top.Document.ID,
			Confidence:  models.ConfidenceHigh,
			Reason:      "similarity above merge threshold",
			Similarity:  sim,
		}
	}
	if sim <= e.thresholds.Create {
		return models.Decision{
			Action:     models.ActionCreate,
			Confidence: models.ConfidenceHigh,
			Reason:     "similarity below create threshold",
			Similarity: sim,
		}
	}

	// Ambiguous band: exactly one LLM call per decision
	response, err := e.llm.Generate(ctx, buildDecisionPrompt(topic, top))
	if err != nil {
		e.log.Warn("LLM tie-break failed, using similarity fallback",
			"topic", topic.Title, "similarity", sim, "error", err)
		return e.fallbackDecision(top, sim)
	}

	decision, ok := parseDecisionResponse(response)
	if !ok {
		e.log.Warn("no parseable decision in LLM response, using similarity fallback",
			"topic", topic.Title, "similarity", sim)
		return e.fallbackDecision(top, sim)
	}

	decision.Similarity = sim
	if decision.Action == models.ActionMerge {
		decision.TargetDocID = top.Document.ID
	}
	return decision
}

// fallbackDecision applies the deterministic non-LLM rule for the ambiguous
// band: merge at or above the fallback threshold, create below it.
func (e *DecisionEngine) fallbackDecision(top Candidate, sim float64) models.Decision {
	if sim >= e.thresholds.Fallback {
		return models.Decision{
			Action:      models.ActionMerge,
			TargetDocID: top.Document.ID,
			Confidence:  models.ConfidenceLow,
			Reason:      "LLM unavailable; similarity fallback chose merge",
			Similarity:  sim,
		}
	}
	return models.Decision{
		Action:     models.ActionCreate,
		Confidence: models.ConfidenceLow,
		Reason:     "LLM unavailable; similarity fallback chose create",
		Similarity: sim,
	}
}

// buildDecisionPrompt assembles the tie-break prompt: topic, candidate,
// similarity, guidelines and worked examples covering both outcomes.
func buildDecisionPrompt(topic models.Topic, top Candidate) string {
	var b strings.Builder

	b.WriteString("You route incoming topics into a knowledge base. Decide whether the new topic ")
	b.WriteString("should be MERGED into the existing document or CREATED as a new document.\n\n")

	b.WriteString("Guidelines:\n")
	b.WriteString("- MERGE when the topic elaborates, details, or extends the subject the document already covers.\n")
	b.WriteString("- CREATE when the topic stands on its own and a reader would look for it separately.\n")
	b.WriteString("- Shared terminology alone does not justify a merge; judge the subject, not the vocabulary.\n\n")

	b.WriteString("Examples:\n\n")
	b.WriteString("Topic: \"Python List Slicing\" / Document: \"Python List Operations\" / Similarity: 0.78\n")
	b.WriteString("DECISION: MERGE\n")
	b.WriteString("CONFIDENCE: HIGH\n")
	b.WriteString("REASONING: Slicing is one of the list operations the document already covers.\n\n")

	b.WriteString("Topic: \"Go Channels Tutorial\" / Document: \"Python Threading Guide\" / Similarity: 0.55\n")
	b.WriteString("DECISION: CREATE\n")
	b.WriteString("CONFIDENCE: HIGH\n")
	b.WriteString("REASONING: Different language and different concurrency model; only the concurrency vocabulary overlaps.\n\n")

	b.WriteString("Topic: \"PostgreSQL Index Types\" / Document: \"PostgreSQL Performance Tuning\" / Similarity: 0.64\n")
	b.WriteString("DECISION: MERGE\n")
	b.WriteString("CONFIDENCE: MEDIUM\n")
	b.WriteString("REASONING: Index selection is a central part of tuning; the document gains depth from it.\n\n")

	b.WriteString("Topic: \"Kubernetes Ingress Basics\" / Document: \"Docker Compose Networking\" / Similarity: 0.50\n")
	b.WriteString("DECISION: CREATE\n")
	b.WriteString("CONFIDENCE: MEDIUM\n")
	b.WriteString("REASONING: Related ecosystem but a distinct tool with its own audience.\n\n")

	fmt.Fprintf(&b, "Now decide.\n\nNew topic title: %s\nNew topic content:\n%s\n\n", topic.Title, clip(topic.Content, 4000))
	fmt.Fprintf(&b, "Existing document title: %s\nExisting document content:\n%s\n\n", top.Document.Title, clip(top.Document.Content, 4000))
	fmt.Fprintf(&b, "Cosine similarity: %.2f\n\n", top.Similarity)

	b.WriteString("Answer in exactly this format:\n")
	b.WriteString("DECISION: MERGE or CREATE\n")
	b.WriteString("CONFIDENCE: HIGH, MEDIUM or LOW\n")
	b.WriteString("REASONING: one or two sentences\n")

	return b.String()
}

// parseDecisionResponse extracts the structured fields from an LLM response.
// Each labeled line is located independently; if the structured format is
// absent entirely, a substring search for MERGE/CREATE is the fallback with
// confidence defaulting to medium. Returns ok=false when no decision can be
// recovered at all.
func parseDecisionResponse(response string) (models.Decision, bool) {
	decision := models.Decision{Confidence: models.ConfidenceMedium}

	decisionLine := findLabeledLine(response, "DECISION")
	confidenceLine := findLabeledLine(response, "CONFIDENCE")
	reasoningLine := findLabeledLine(response, "REASONING")

	switch {
	case strings.Contains(strings.ToUpper(decisionLine), "MERGE"):
		decision.Action = models.ActionMerge
	case strings.Contains(strings.ToUpper(decisionLine), "CREATE"):
		decision.Action = models.ActionCreate
	default:
		// Structured format absent: permissive substring fallback
		upper := strings.ToUpper(response)
		switch {
		case strings.Contains(upper, "MERGE"):
			decision.Action = models.ActionMerge
		case strings.Contains(upper, "CREATE"):
			decision.Action = models.ActionCreate
		default:
			return models.Decision{}, false
		}
		decision.Reason = strings.TrimSpace(reasoningLine)
		if decision.Reason == "" {
			decision.Reason = "decision recovered by substring fallback"
		}
		return decision, true
	}

	switch strings.ToUpper(strings.TrimSpace(confidenceLine)) {
	case "HIGH":
		decision.Confidence = models.ConfidenceHigh
	case "MEDIUM":
		decision.Confidence = models.ConfidenceMedium
	case "LOW":
		decision.Confidence = models.ConfidenceLow
	}

	decision.Reason = strings.TrimSpace(reasoningLine)
	if decision.Reason == "" {
		decision.Reason = "LLM tie-break in ambiguous band"
	}
	return decision, true
}

// findLabeledLine returns the text after "LABEL:" on the first line that
// carries the label, or "" if no such line exists.
func findLabeledLine(response, label string) string {
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		rest, ok := cutPrefixFold(trimmed, label)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, ":") {
			return strings.TrimSpace(rest[1:])
		}
	}
	return ""
}

// cutPrefixFold is a case-insensitive strings.CutPrefix.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// clip truncates s to at most n bytes at a word boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndexByte(s[:n], ' ')
	if cut <= 0 {
		cut = n
	}
	return s[:cut] + " ..."
}
