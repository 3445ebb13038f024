package scoring

import (
	"reflect"
	"strings"
	"testing"
)

func TestCategorize_PriorityOrder(t *testing.T) {
	// "auth" is checked before "api": a doc mentioning both must classify
	// as authentication.
	a := Analyze("An auth middleware for your REST api", 0)
	if a.Category != "authentication" {
		t.Fatalf("got category %q, want %q", a.Category, "authentication")
	}

	a = Analyze("A testing framework with api assertions", 0)
	if a.Category != "api" {
		t.Fatalf("got category %q, want %q (api terms outrank testing)", a.Category, "api")
	}
}

func TestCategorize_Fallback(t *testing.T) {
	a := Analyze("just some plain text about nothing in particular", 0)
	if a.Category != "general" {
		t.Fatalf("got category %q, want %q", a.Category, "general")
	}
}

func TestCategorize_AllCategories(t *testing.T) {
	cases := []struct {
		doc  string
		want string
	}{
		{"supports oauth and jwt tokens", "authentication"},
		{"a graphql server toolkit", "api"},
		{"an orm for relational data", "database"},
		{"a widget toolkit for the web", "ui"},
		{"a minimal web framework", "framework"},
		{"a command-line tool", "cli"},
		{"an assertion helper for unit checks", "testing"},
	}
	for _, tc := range cases {
		a := Analyze(tc.doc, 0)
		if a.Category != tc.want {
			t.Errorf("doc %q: got category %q, want %q", tc.doc, a.Category, tc.want)
		}
	}
}

func TestDetectFeatures(t *testing.T) {
	a := Analyze("written in typescript with async support and a focus on security", 0)
	want := []string{"typescript", "async", "security"}
	if !reflect.DeepEqual(a.Features, want) {
		t.Fatalf("got features %v, want %v", a.Features, want)
	}

	a = Analyze("nothing special here", 0)
	if len(a.Features) != 0 {
		t.Fatalf("got features %v, want none", a.Features)
	}
}

func TestQualityTiers(t *testing.T) {
	long := strings.Repeat("x", 3500)
	medium := strings.Repeat("x", 2000)
	short := strings.Repeat("x", 600)

	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"excellent", long + " install usage", QualityExcellent},
		{"long without install/usage is basic", long, QualityBasic},
		{"good with install only", medium + " install", QualityGood},
		{"good with example only", medium + " example", QualityGood},
		{"basic", short, QualityBasic},
		{"poor", "tiny", QualityPoor},
	}
	for _, tc := range cases {
		a := Analyze(tc.doc, 0)
		if a.DocumentationQuality != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, a.DocumentationQuality, tc.want)
		}
	}
}

func TestComplexityAndHasDocumentation(t *testing.T) {
	a := Analyze(strings.Repeat("x", 5100), 0)
	if a.Complexity != ComplexityHigh {
		t.Fatalf("got complexity %q, want high", a.Complexity)
	}
	if !a.HasDocumentation {
		t.Fatal("expected has_documentation for 5100 chars")
	}

	a = Analyze(strings.Repeat("x", 2100), 0)
	if a.Complexity != ComplexityMedium {
		t.Fatalf("got complexity %q, want medium", a.Complexity)
	}

	a = Analyze("short", 0)
	if a.Complexity != ComplexityLow {
		t.Fatalf("got complexity %q, want low", a.Complexity)
	}
	if a.HasDocumentation {
		t.Fatal("did not expect has_documentation for 5 chars")
	}
}

func TestProductionReady(t *testing.T) {
	if !Analyze("battle tested in production", 0).ProductionReady {
		t.Fatal("doc mentioning production should be production ready")
	}
	if !Analyze("nothing", 1500).ProductionReady {
		t.Fatal("popularity above 1000 should be production ready")
	}
	if Analyze("nothing", 1000).ProductionReady {
		t.Fatal("popularity of exactly 1000 should not be production ready")
	}
}

func TestScore_Bounds(t *testing.T) {
	// Floor: empty doc, zero popularity.
	a := Analyze("", 0)
	if got := Score(0, a); got != 5.0 {
		t.Fatalf("got score %v, want floor 5.0", got)
	}

	// Ceiling: everything maxed must clamp to 10.
	doc := strings.Repeat("x", 6000) + " install usage typescript async security performance production"
	a = Analyze(doc, 50000)
	if got := Score(50000, a); got != 10.0 {
		t.Fatalf("got score %v, want clamp at 10.0", got)
	}
}

func TestScore_Additive(t *testing.T) {
	// 4000 chars with install+usage: excellent (+1.5). Popularity 1500:
	// +1.0 tier and production ready +1.0. No feature terms.
	doc := strings.Repeat("x", 4000) + " install usage"
	a := Analyze(doc, 1500)
	if a.DocumentationQuality != QualityExcellent {
		t.Fatalf("got quality %q, want excellent", a.DocumentationQuality)
	}
	if got, want := Score(1500, a), 8.5; got != want {
		t.Fatalf("got score %v, want %v", got, want)
	}

	// Same doc, popularity 50: only the quality bonus applies.
	a = Analyze(doc, 50)
	if got, want := Score(50, a), 6.5; got != want {
		t.Fatalf("got score %v, want %v", got, want)
	}
}

func TestDeterminism(t *testing.T) {
	doc := "an async api client with install instructions and usage examples " + strings.Repeat("y", 2000)
	first := Analyze(doc, 3000)
	firstScore := Score(3000, first)

	for i := 0; i < 10; i++ {
		a := Analyze(doc, 3000)
		if !reflect.DeepEqual(a, first) {
			t.Fatalf("analysis differs on run %d: %+v vs %+v", i, a, first)
		}
		if s := Score(3000, a); s != firstScore {
			t.Fatalf("score differs on run %d: %v vs %v", i, s, firstScore)
		}
	}
}
