package domain

import "time"

// Brief is the fixed six-section structured summary.
type Brief struct {
	Summary    []string `json:"summary"`
	Product    []string `json:"product"`
	Sales      []string `json:"sales"`
	Company    []string `json:"company"`
	Onboarding []string `json:"onboarding"`
	Risks      []string `json:"risks"`
}

// BriefKeys lists the section keys in output order.
var BriefKeys = []string{"summary", "product", "sales", "company", "onboarding", "risks"}

// EmptyBrief returns a brief with every section present and empty.
func EmptyBrief() *Brief {
	return &Brief{
		Summary:    []string{},
		Product:    []string{},
		Sales:      []string{},
		Company:    []string{},
		Onboarding: []string{},
		Risks:      []string{},
	}
}

// PlaceholderBrief returns an empty brief carrying one explanatory summary line.
func PlaceholderBrief(message string) *Brief {
	b := EmptyBrief()
	b.Summary = []string{message}
	return b
}

// Section returns a pointer to the named section, or nil for unknown keys.
func (b *Brief) Section(key string) *[]string {
	switch key {
	case "summary":
		return &b.Summary
	case "product":
		return &b.Product
	case "sales":
		return &b.Sales
	case "company":
		return &b.Company
	case "onboarding":
		return &b.Onboarding
	case "risks":
		return &b.Risks
	}
	return nil
}

// BriefResult pairs a brief with how it was produced.
type BriefResult struct {
	Brief       *Brief    `json:"brief"`
	Outcome     Outcome   `json:"outcome"`
	GeneratedAt time.Time `json:"generated_at"`
}
