package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"go.uber.org/zap"
)

const (
	briefRecentItems = 25
	briefRecentIntel = 10
	briefMaxBlob     = 120_000

	briefTemperature = 0.2
	briefMaxTokens   = 2048
)

// Placeholder summaries for briefs that could not be generated.
const (
	BriefMsgNoData       = "No recent data available. Run a Composio sync and refresh intel to generate a brief."
	BriefMsgNoGenerator  = "Brief generation requires GEMINI_API_KEY."
	BriefMsgNoText       = "Could not generate brief. Try again or check API key."
	BriefMsgInvalid      = "Brief response was not valid. Try again."
	BriefMsgUpstreamFail = "Brief generation failed. Ensure GEMINI_API_KEY is set and try again."
)

const briefInstructions = `You are an AI that generates a clean daily product brief from raw, unstructured tool outputs (e.g., Composio extractions, internal tools, Slack, Notion, web results).

The input will change every time and may be messy, incomplete, duplicated, or partially cut off.

Your job is to:
1. Normalize and clean the raw text (fix fragments, remove noise, deduplicate).
2. Extract only factual, decision-relevant updates.
3. Infer structure when the input is unstructured.
4. Rewrite everything in clear, concise, professional product-brief language.
5. Group related facts and merge overlapping points.

Output the final brief as a single JSON object with exactly these keys (use empty arrays for missing sections):
- summary: array of 3–5 strings (most important leadership-level takeaways)
- product: array of strings (shipping updates; performance/reliability; bugs/incidents; max ~5)
- sales: array of strings (pipeline; customer objections; GTM/revenue; max ~5)
- company: array of strings (strategy; positioning; competitive landscape; max ~5)
- onboarding: array of strings (onboarding process; success metrics; common issues; max ~5)
- risks: array of strings (product; market/competitive; execution/operational; max ~5)

Rules:
- Do NOT mention sources (e.g., Slack, Notion, web).
- Do NOT quote raw text; rewrite in your own words.
- If information is missing for a section, use an empty array [] for that section.
- If multiple items conflict, surface the conflict clearly in one bullet.
- Keep each section scannable and concise (max ~5 bullets per section).
- Prioritize what leadership would care about today.
- Return ONLY valid JSON, no markdown code fence or extra text.`

var (
	jsonFence  = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?```\\s*$")
	plainFence = regexp.MustCompile("(?s)^```\\s*\\n?(.*?)\\n?```\\s*$")
)

// BriefArchive stores generated briefs.
type BriefArchive interface {
	Save(ctx context.Context, result *domain.BriefResult) error
	Latest(ctx context.Context) (*domain.BriefResult, error)
}

// BriefCompiler produces the six-section brief from recent corpus items and
// cached intel.
type BriefCompiler struct {
	generator llm.Generator
	archive   BriefArchive
	logger    *zap.Logger
	now       func() time.Time
}

func NewBriefCompiler(generator llm.Generator, archive BriefArchive, logger *zap.Logger) *BriefCompiler {
	if generator == nil {
		generator = llm.NoOpGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BriefCompiler{generator: generator, archive: archive, logger: logger, now: time.Now}
}

// Compile builds a brief. Every returned brief has all six sections; the
// outcome records whether it came from the generator or is a placeholder.
// Only store failures are returned as errors.
func (c *BriefCompiler) Compile(ctx context.Context, repos Repositories) (res *domain.BriefResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "BriefCompiler.Compile", telemetry.SpanAttributes{
		Operation: "brief",
	})
	defer func() {
		if res != nil {
			span.SetOutcome(string(res.Outcome))
		}
		span.End()
	}()

	items, err := repos.Knowledge().ListRecent(ctx, briefRecentItems)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to read recent knowledge", err)
	}
	intel, err := repos.Intel().ListRecent(ctx, briefRecentIntel)
	if err != nil {
		c.logger.Warn("competitor intel unavailable for brief", zap.Error(err))
		intel = nil
	}

	blob := BriefBlob(items, intel)
	if blob == "" {
		return c.result(domain.PlaceholderBrief(BriefMsgNoData), domain.OutcomeEmpty), nil
	}
	if !llm.IsConfigured(c.generator) {
		return c.result(domain.PlaceholderBrief(BriefMsgNoGenerator), domain.OutcomeUnconfigured), nil
	}

	gen, err := c.generator.Generate(ctx, BriefPrompt(blob), llm.GenerateOptions{
		Temperature:     briefTemperature,
		MaxOutputTokens: briefMaxTokens,
		JSON:            true,
	})
	if err != nil && gen.Outcome != domain.OutcomeBlocked {
		c.logger.Warn("brief generation failed", zap.Error(err))
		return c.result(domain.PlaceholderBrief(BriefMsgUpstreamFail), domain.OutcomeUpstreamError), nil
	}
	text := strings.TrimSpace(gen.Text)
	if gen.Outcome == domain.OutcomeBlocked || text == "" {
		outcome := gen.Outcome
		if outcome == domain.OutcomeOK || outcome == "" {
			outcome = domain.OutcomeEmpty
		}
		return c.result(domain.PlaceholderBrief(BriefMsgNoText), outcome), nil
	}

	brief, ok := ParseBrief(text)
	if !ok {
		c.logger.Debug("brief response was not a JSON object", zap.Int("chars", len(text)))
		return c.result(domain.PlaceholderBrief(BriefMsgInvalid), domain.OutcomeInvalid), nil
	}

	res = c.result(brief, domain.OutcomeOK)
	if c.archive != nil {
		if err := c.archive.Save(ctx, res); err != nil {
			c.logger.Warn("failed to archive brief", zap.Error(err))
		}
	}
	return res, nil
}

// Latest returns the most recently archived brief.
func (c *BriefCompiler) Latest(ctx context.Context) (*domain.BriefResult, error) {
	if c.archive == nil {
		return nil, domain.ErrBriefNotArchived
	}
	return c.archive.Latest(ctx)
}

func (c *BriefCompiler) result(b *domain.Brief, outcome domain.Outcome) *domain.BriefResult {
	return &domain.BriefResult{Brief: b, Outcome: outcome, GeneratedAt: c.now().UTC()}
}

// BriefBlob joins item and intel contents without source labels, capped at
// 120,000 characters.
func BriefBlob(items []*domain.KnowledgeItem, intel []*domain.CompetitorIntel) string {
	parts := make([]string, 0, len(items)+len(intel))
	for _, it := range items {
		if s := strings.TrimSpace(it.Content); s != "" {
			parts = append(parts, s)
		}
	}
	for _, ci := range intel {
		if s := strings.TrimSpace(ci.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return domain.Truncate(strings.Join(parts, "\n\n---\n\n"), briefMaxBlob)
}

// BriefPrompt renders the brief prompt around blob.
func BriefPrompt(blob string) string {
	return fmt.Sprintf("%s\n\nRaw context (do not mention these sources in the brief):\n\n%s\n\nRespond with a single JSON object only (keys: summary, product, sales, company, onboarding, risks).",
		briefInstructions, blob)
}

// ParseBrief reads model output into a Brief. Markdown fences are stripped.
// Anything other than a JSON object fails. Missing or non-array sections
// become empty; array entries are stringified, trimmed and kept when
// non-empty.
func ParseBrief(text string) (*domain.Brief, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, false
	}
	for _, re := range []*regexp.Regexp{jsonFence, plainFence} {
		if m := re.FindStringSubmatch(raw); m != nil {
			raw = strings.TrimSpace(m[1])
		}
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}

	brief := domain.EmptyBrief()
	for _, key := range domain.BriefKeys {
		list, ok := obj[key].([]any)
		if !ok {
			continue
		}
		section := brief.Section(key)
		for _, v := range list {
			if s := stringify(v); s != "" {
				*section = append(*section, s)
			}
		}
	}
	return brief, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return ""
		}
		return strings.TrimSpace(buf.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
