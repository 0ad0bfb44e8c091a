package analysis

import (
	"errors"
	"strings"
	"testing"
)

func fieldNames(err error) []string {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		return nil
	}
	out := make([]string, len(vErr.Fields))
	for i, f := range vErr.Fields {
		out[i] = f.Field
	}
	return out
}

func TestValidate(t *testing.T) {
	longPrompt := strings.Repeat("p", 501)

	tests := []struct {
		name      string
		req       Request
		wantField string // empty means valid
	}{
		{"minimal valid", Request{BrandName: "Acme"}, ""},
		{"trims brand", Request{BrandName: "  Acme  "}, ""},
		{"empty brand", Request{BrandName: "   "}, "brandName"},
		{"brand too long", Request{BrandName: strings.Repeat("a", 101)}, "brandName"},
		{"too many competitors", Request{BrandName: "A", Competitors: []string{"1", "2", "3", "4", "5", "6"}}, "competitors"},
		{"too many topics", Request{BrandName: "A", Topics: []string{"1", "2", "3", "4", "5"}}, "topics"},
		{"too many prompts", Request{BrandName: "A", TestPrompts: []string{
			"prompt one is fine", "prompt two is fine", "prompt three ok", "prompt four okay", "prompt five okay",
		}}, "testPrompts"},
		{"prompt too short", Request{BrandName: "A", TestPrompts: []string{"short"}}, "testPrompts[0]"},
		{"prompt too long", Request{BrandName: "A", TestPrompts: []string{longPrompt}}, "testPrompts[0]"},
		{"personas too long", Request{BrandName: "A", Personas: strings.Repeat("p", 1001)}, "targetPersonas"},
		{"bad priority", Request{BrandName: "A", Priority: "urgent"}, "priority"},
		{"good priority", Request{BrandName: "A", Priority: PriorityHigh}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				if strings.TrimSpace(tt.req.BrandName) != tt.req.BrandName {
					t.Error("brand name not trimmed in place")
				}
				return
			}
			fields := fieldNames(err)
			for _, f := range fields {
				if f == tt.wantField {
					return
				}
			}
			t.Errorf("Validate() fields = %v, want %q flagged", fields, tt.wantField)
		})
	}
}

func TestResultDepth(t *testing.T) {
	short := &Result{Text: "brief"}
	if short.Depth() != "standard" {
		t.Errorf("short Depth = %q", short.Depth())
	}
	long := &Result{Text: strings.Repeat("x", 5000)}
	if long.Depth() != "comprehensive" {
		t.Errorf("long Depth = %q", long.Depth())
	}
}

func TestTokenUsageAdd(t *testing.T) {
	sum := TokenUsage{Input: 10, Output: 20, Total: 30}.Add(TokenUsage{Input: 1, Output: 2, Total: 3})
	if sum != (TokenUsage{Input: 11, Output: 22, Total: 33}) {
		t.Errorf("Add = %+v", sum)
	}
}
