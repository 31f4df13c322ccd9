package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"gopkg.in/yaml.v3"
)

// CompetitorQuery is one fixed live-search query run by the intel refresh.
type CompetitorQuery struct {
	Name      string           `yaml:"name"`
	IntelType domain.IntelType `yaml:"intel_type"`
	Query     string           `yaml:"query"`
}

// Sources holds the tunable phrase lists used by ingestion and retrieval.
type Sources struct {
	Company            string            `yaml:"company"`
	SearchDomain       string            `yaml:"search_domain"`
	SlackChannels      []string          `yaml:"slack_channels"`
	CompetitorKeywords []string          `yaml:"competitor_keywords"`
	CompetitorQueries  []CompetitorQuery `yaml:"competitor_queries"`
	BriefTriggers      []string          `yaml:"brief_triggers"`
}

// DefaultSources returns the built-in source settings.
func DefaultSources() *Sources {
	return &Sources{
		Company:       "Velora",
		SearchDomain:  "AI customer support",
		SlackChannels: []string{"general", "product", "engineering"},
		CompetitorKeywords: []string{
			"intercom", "zendesk", "gorgias", "competitor", "competitors",
			"pricing", "competition", "market", "rival",
		},
		CompetitorQueries: []CompetitorQuery{
			{Name: "Intercom", IntelType: domain.IntelTypePricing, Query: "Intercom customer support software pricing news"},
			{Name: "Zendesk", IntelType: domain.IntelTypeProduct, Query: "Zendesk AI customer service product updates"},
			{Name: "Gorgias", IntelType: domain.IntelTypeMarket, Query: "Gorgias e-commerce support growth funding"},
		},
		BriefTriggers: []string{
			"today's brief", "todays brief", "daily brief", "give me the brief",
			"product brief", "generate brief", "create brief", "brief me",
		},
	}
}

// LoadSources reads a YAML sources file over the defaults. An empty path
// returns the defaults unchanged.
func LoadSources(path string) (*Sources, error) {
	src := DefaultSources()
	if path == "" {
		return src, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	var override Sources
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	src.merge(&override)
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return src, nil
}

func (s *Sources) merge(o *Sources) {
	if o.Company != "" {
		s.Company = o.Company
	}
	if o.SearchDomain != "" {
		s.SearchDomain = o.SearchDomain
	}
	if len(o.SlackChannels) > 0 {
		s.SlackChannels = lowerAll(o.SlackChannels)
	}
	if len(o.CompetitorKeywords) > 0 {
		s.CompetitorKeywords = lowerAll(o.CompetitorKeywords)
	}
	if len(o.CompetitorQueries) > 0 {
		s.CompetitorQueries = o.CompetitorQueries
	}
	if len(o.BriefTriggers) > 0 {
		s.BriefTriggers = lowerAll(o.BriefTriggers)
	}
}

// Validate checks competitor queries are complete.
func (s *Sources) Validate() error {
	for i, q := range s.CompetitorQueries {
		if strings.TrimSpace(q.Name) == "" || strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("competitor query %d: name and query are required", i)
		}
		if !q.IntelType.IsValid() {
			return fmt.Errorf("competitor query %d: invalid intel_type %q", i, q.IntelType)
		}
	}
	return nil
}

// CompetitorNames returns the configured competitor names.
func (s *Sources) CompetitorNames() []string {
	names := make([]string, 0, len(s.CompetitorQueries))
	for _, q := range s.CompetitorQueries {
		names = append(names, q.Name)
	}
	return names
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
