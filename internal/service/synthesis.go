package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"go.uber.org/zap"
)

const (
	contextSnippetChars = 400
	firstSentenceChars  = 200

	answerTemperature = 0.2
	answerMaxTokens   = 1024
)

var sentenceEnds = []string{". ", ".\n", "! ", "? "}

// FormatContext turns a stored item into a prompt and citation record.
func FormatContext(item *domain.KnowledgeItem) domain.ContextItem {
	meta := item.Metadata
	title := meta.String("title")
	if title == "" {
		title = meta.String("repo_name")
	}
	if title == "" {
		title = meta.String("channel")
	}
	if title == "" {
		title = string(item.Source)
	}
	if author := meta.String("author"); author != "" {
		title = title + " (" + author + ")"
	}
	return domain.ContextItem{
		Source:  string(item.Source),
		Title:   title,
		Snippet: snippet(item.Content, contextSnippetChars),
		Content: item.Content,
	}
}

// FormatContexts applies FormatContext to every item.
func FormatContexts(items []*domain.KnowledgeItem) []domain.ContextItem {
	out := make([]domain.ContextItem, 0, len(items))
	for _, it := range items {
		out = append(out, FormatContext(it))
	}
	return out
}

func snippet(content string, n int) string {
	t := domain.Truncate(content, n)
	s := strings.TrimSpace(t)
	if len(t) < len(content) {
		s += "..."
	}
	return s
}

// FirstSentence returns the first sentence of text including its
// terminator, or the first 200 characters when no terminator is found.
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, end := range sentenceEnds {
		if i := strings.Index(text, end); i != -1 {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return strings.TrimSpace(domain.Ellipsize(text, firstSentenceChars))
}

// SynthesisService writes grounded answers from context items.
type SynthesisService struct {
	generator    llm.Generator
	company      string
	searchDomain string
	logger       *zap.Logger
}

func NewSynthesisService(generator llm.Generator, company, searchDomain string, logger *zap.Logger) *SynthesisService {
	if generator == nil {
		generator = llm.NoOpGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SynthesisService{generator: generator, company: company, searchDomain: searchDomain, logger: logger}
}

// NoContextMessage is the answer returned when nothing was retrieved.
func (s *SynthesisService) NoContextMessage() string {
	return fmt.Sprintf("I couldn't find relevant information in the knowledge base. Try rephrasing or ask about %s's product, team, or competitors.", s.company)
}

// BuildPrompt renders the answer prompt.
func (s *SynthesisService) BuildPrompt(question string, contexts []domain.ContextItem) string {
	blocks := make([]string, 0, len(contexts))
	for _, c := range contexts {
		blocks = append(blocks, fmt.Sprintf("[Source: %s – %s]\n%s", c.Source, c.Title, c.Content))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an onboarding assistant for %s, %s %s startup.\n\n", s.company, article(s.searchDomain), s.searchDomain)
	b.WriteString("Rules:\n")
	b.WriteString("- Use ONLY the provided context. Do NOT list or dump raw sources.\n")
	b.WriteString("- Write a concise answer that directly addresses the question in 5–10 lines (short paragraphs or 3–5 bullet points).\n")
	b.WriteString("- Synthesize the information: summarize, compare, and answer the question. Do not repeat long snippets.\n")
	b.WriteString("- Cite sources inline where relevant, e.g. [Notion: Product Strategy] or [Slack: #general].\n")
	b.WriteString("- Answer the question asked; do not just repeat the context.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer (5–10 lines, synthesized, with inline source citations):")
	return b.String()
}

func article(word string) string {
	if word == "" {
		return "a"
	}
	switch strings.ToLower(word[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}
	return "a"
}

// Fallback composes an extractive answer from the first one or two contexts.
func Fallback(contexts []domain.ContextItem) string {
	if len(contexts) == 0 {
		return ""
	}
	c0 := contexts[0]
	var b strings.Builder
	fmt.Fprintf(&b, "According to [%s: %s], %s", c0.Source, c0.Title, FirstSentence(contextText(c0)))
	if len(contexts) > 1 {
		c1 := contexts[1]
		if s1 := FirstSentence(contextText(c1)); s1 != "" {
			fmt.Fprintf(&b, " Additionally, [%s: %s] notes that %s", c1.Source, c1.Title, s1)
		}
	}
	b.WriteString(".")
	return b.String()
}

func contextText(c domain.ContextItem) string {
	if c.Snippet != "" {
		return c.Snippet
	}
	return c.Content
}

// Synthesize answers question from contexts. Citations always mirror
// contexts. Generation that is unconfigured, fails, is blocked or comes back
// empty yields the extractive fallback.
func (s *SynthesisService) Synthesize(ctx context.Context, question string, contexts []domain.ContextItem) *domain.Answer {
	if len(contexts) == 0 {
		return &domain.Answer{Answer: s.NoContextMessage(), Citations: []domain.Citation{}, Outcome: domain.OutcomeEmpty}
	}
	citations := domain.Citations(contexts)

	ctx, span := telemetry.StartSpan(ctx, "SynthesisService.Synthesize", telemetry.SpanAttributes{
		Operation: "synthesize",
	})
	defer span.End()

	gen, err := s.generator.Generate(ctx, s.BuildPrompt(question, contexts), llm.GenerateOptions{
		Temperature:     answerTemperature,
		MaxOutputTokens: answerMaxTokens,
	})
	outcome := gen.Outcome
	if err != nil {
		if outcome == "" || outcome == domain.OutcomeOK {
			outcome = domain.OutcomeUpstreamError
		}
		if outcome != domain.OutcomeUnconfigured {
			s.logger.Warn("answer generation failed", zap.Error(err))
		}
	}
	text := strings.TrimSpace(gen.Text)
	if err != nil || outcome != domain.OutcomeOK || text == "" {
		if outcome == domain.OutcomeOK {
			outcome = domain.OutcomeEmpty
		}
		s.logger.Debug("using extractive answer", zap.String("outcome", string(outcome)), zap.String("finish_reason", gen.FinishReason))
		return &domain.Answer{Answer: Fallback(contexts), Citations: citations, Outcome: outcome}
	}
	return &domain.Answer{Answer: text, Citations: citations, Outcome: domain.OutcomeOK}
}
