package prompt

import (
	"fmt"
	"strings"

	"github.com/brandlens/brandlens/internal/domain/analysis"
)

// ClosingMarker is the heading the model is instructed to end with. The
// openai client checks for it when deciding whether a response was cut off.
const ClosingMarker = "## SUMMARY & RECOMMENDATIONS"

// ListInput is a tagged optional list field: either the client supplied the
// values, or the model is asked to synthesize its own.
type ListInput struct {
	provided bool
	values   []string
}

// ProvidedList marks the values as client-supplied.
func ProvidedList(values []string) ListInput {
	return ListInput{provided: true, values: values}
}

// SynthesizeList asks the model to invent a plausible list.
func SynthesizeList() ListInput {
	return ListInput{}
}

// TextInput is the free-text counterpart of ListInput.
type TextInput struct {
	provided bool
	value    string
}

func ProvidedText(value string) TextInput {
	return TextInput{provided: true, value: value}
}

func SynthesizeText() TextInput {
	return TextInput{}
}

// Spec is the fully-resolved input to Render. Building a Spec from a request
// collapses "field present?" checks into explicit variants once, so Render
// itself never inspects emptiness.
type Spec struct {
	BrandName   string
	WebsiteURL  string
	Email       string
	Competitors ListInput
	Topics      ListInput
	TestPrompts ListInput
	Personas    TextInput
}

// FromRequest maps a validated request onto prompt variants. Empty optional
// fields become Synthesize variants.
func FromRequest(req *analysis.Request) Spec {
	s := Spec{
		BrandName:  req.BrandName,
		WebsiteURL: req.WebsiteURL,
		Email:      req.Email,
	}
	if len(req.Competitors) > 0 {
		s.Competitors = ProvidedList(req.Competitors)
	}
	if len(req.Topics) > 0 {
		s.Topics = ProvidedList(req.Topics)
	}
	if len(req.TestPrompts) > 0 {
		s.TestPrompts = ProvidedList(req.TestPrompts)
	}
	if strings.TrimSpace(req.Personas) != "" {
		s.Personas = ProvidedText(req.Personas)
	}
	return s
}

// Render produces the full instruction prompt. Pure function of the spec;
// callers must have validated the request already.
func Render(s Spec) string {
	var b strings.Builder

	b.WriteString("You are a senior brand strategist preparing a written brand visibility analysis. ")
	b.WriteString("Write a thorough, well-structured report in plain markdown. Do not include code fences.\n\n")

	fmt.Fprintf(&b, "Brand under analysis: %s\n", s.BrandName)
	if s.WebsiteURL != "" {
		fmt.Fprintf(&b, "Official website: %s\n", s.WebsiteURL)
	}
	b.WriteString("\n")

	writeListSection(&b, "Competitors", s.Competitors,
		"Benchmark the brand against exactly these competitors",
		"Identify the 4-5 most relevant competitors yourself and benchmark against them")
	writeListSection(&b, "Topics", s.Topics,
		"Cover exactly these analysis topics",
		"Select the 3-4 most relevant analysis topics for this brand yourself")
	writeListSection(&b, "Test prompts", s.TestPrompts,
		"Evaluate how the brand would surface for each of these user prompts",
		"Devise 3-4 realistic user prompts a customer might ask an AI assistant, and evaluate how the brand would surface for each")

	b.WriteString("## Target personas\n")
	if s.Personas.provided {
		b.WriteString("Analyze visibility specifically for the following target personas, exactly as described by the client:\n")
		b.WriteString(s.Personas.value)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Define 2-3 plausible target personas for this brand and analyze visibility for each.\n\n")
	}

	b.WriteString("Structure the report with these sections, in order:\n")
	b.WriteString("1. Executive overview\n")
	b.WriteString("2. Brand positioning and messaging\n")
	b.WriteString("3. Competitor benchmark\n")
	b.WriteString("4. Topic-by-topic visibility assessment\n")
	b.WriteString("5. Persona analysis\n")
	b.WriteString("6. Test prompt evaluation\n\n")

	fmt.Fprintf(&b, "Finish the report with a final section titled exactly %q containing prioritized, actionable recommendations. ", ClosingMarker)
	b.WriteString("The report is incomplete without that closing section.\n")

	return b.String()
}

func writeListSection(b *strings.Builder, title string, in ListInput, providedLead, synthesizeLead string) {
	fmt.Fprintf(b, "## %s\n", title)
	if in.provided {
		b.WriteString(providedLead)
		b.WriteString(":\n")
		for _, v := range in.values {
			fmt.Fprintf(b, "- %s\n", v)
		}
	} else {
		b.WriteString(synthesizeLead)
		b.WriteString(".\n")
	}
	b.WriteString("\n")
}
