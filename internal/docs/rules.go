// Package docs assembles the jurisdiction-specific legal documents an
// eviction case requires. Which documents, which filenames, and which
// notice periods apply is data in rules.yaml, not code.
package docs

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// CourtInfo is static court metadata injected into every render context.
type CourtInfo struct {
	Name            string `yaml:"name"`
	Address         string `yaml:"address"`
	Phone           string `yaml:"phone"`
	ChiefMagistrate string `yaml:"chief_magistrate"`
	FilingFeeCents  int64  `yaml:"filing_fee_cents"`
}

// DocSpec names one required document and its deterministic filename.
type DocSpec struct {
	Type     string `yaml:"type"`
	Title    string `yaml:"title"`
	Template string `yaml:"template"`
	Filename string `yaml:"filename"`
}

// Rules carries the per-jurisdiction document rules.
type Rules struct {
	Jurisdiction   string         `yaml:"jurisdiction"`
	LegalCode      string         `yaml:"legal_code"`
	Court          CourtInfo      `yaml:"court"`
	NoticePeriods  map[string]int `yaml:"notice_periods"`
	RequiredFields []string       `yaml:"required_fields"`
	Documents      []DocSpec      `yaml:"documents"`
}

// LoadRules parses the embedded jurisdiction rules.
func LoadRules() (*Rules, error) {
	rules := new(Rules)
	if err := yaml.Unmarshal(rulesYAML, rules); err != nil {
		return nil, fmt.Errorf("parse jurisdiction rules: %w", err)
	}
	if len(rules.Documents) == 0 {
		return nil, fmt.Errorf("jurisdiction rules declare no documents")
	}
	if _, ok := rules.NoticePeriods["default"]; !ok {
		return nil, fmt.Errorf("jurisdiction rules missing default notice period")
	}
	return rules, nil
}

// NoticePeriodDays returns the demand notice period for a lease type:
// 7 days for month-to-month leases, the default otherwise.
func (r *Rules) NoticePeriodDays(leaseType string) int {
	key := strings.ToLower(strings.TrimSpace(leaseType))
	if days, ok := r.NoticePeriods[key]; ok {
		return days
	}
	return r.NoticePeriods["default"]
}

// FilenameFor maps a document type to its fixed filename; unknown types
// fall back to <doc_type>.pdf.
func (r *Rules) FilenameFor(docType string) string {
	for _, spec := range r.Documents {
		if spec.Type == docType {
			return spec.Filename
		}
	}
	return docType + ".pdf"
}
