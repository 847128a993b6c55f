package docs

import (
	"strings"
	"time"

	"gaevic/pkg/types"
)

// RenderContext is everything a template may reference: the case fields,
// static court metadata, and computed fields such as the notice period.
type RenderContext struct {
	Case             *types.Case
	Jurisdiction     string
	LegalCode        string
	Court            CourtInfo
	NoticePeriodDays int
	GeneratedAt      time.Time
}

// Renderer turns a named template plus its context into document bytes.
// Rendering is treated as a black box; the pipeline owns only the context.
type Renderer interface {
	Render(template string, rc RenderContext) ([]byte, error)
}

// Pipeline computes the required document set for a case and renders each
// document deterministically.
type Pipeline struct {
	rules    *Rules
	renderer Renderer
}

func NewPipeline(rules *Rules, renderer Renderer) *Pipeline {
	return &Pipeline{rules: rules, renderer: renderer}
}

func (p *Pipeline) Rules() *Rules {
	return p.rules
}

// Required returns the ordered document set for the case. It is a pure
// function of the case fields and the jurisdiction rules.
func (p *Pipeline) Required(c *types.Case) []DocSpec {
	specs := make([]DocSpec, len(p.rules.Documents))
	copy(specs, p.rules.Documents)
	return specs
}

// Validate rejects a case missing any field the templates need, before
// anything is rendered or written.
func (p *Pipeline) Validate(c *types.Case) error {
	for _, field := range p.rules.RequiredFields {
		if strings.TrimSpace(requiredFieldValue(c, field)) == "" {
			return &ValidationError{Field: field}
		}
	}
	return nil
}

// Render produces the bytes for one document. The generation date in the
// context is the case submission date, so rendering the same case twice
// yields identical bytes and resubmission stays idempotent.
func (p *Pipeline) Render(spec DocSpec, c *types.Case) ([]byte, error) {
	rc := RenderContext{
		Case:             c,
		Jurisdiction:     p.rules.Jurisdiction,
		LegalCode:        p.rules.LegalCode,
		Court:            p.rules.Court,
		NoticePeriodDays: p.rules.NoticePeriodDays(c.LeaseType),
		GeneratedAt:      c.SubmittedAt.UTC(),
	}

	content, err := p.renderer.Render(spec.Template, rc)
	if err != nil {
		return nil, &RenderError{DocType: spec.Type, Err: err}
	}
	return content, nil
}

func requiredFieldValue(c *types.Case, field string) string {
	switch field {
	case "landlord_name":
		return c.LandlordName
	case "tenant_name":
		return c.TenantName
	case "property_address":
		return c.PropertyAddress
	case "reason":
		return c.Reason
	case "lease_type":
		return c.LeaseType
	case "notice_date":
		return c.NoticeDate
	default:
		// Fields the validator does not know how to read fail closed.
		return ""
	}
}
