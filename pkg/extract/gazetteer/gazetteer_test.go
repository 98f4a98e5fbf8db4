package gazetteer_test

import (
	"testing"

	"github.com/aidekit/aide/pkg/extract"
	"github.com/aidekit/aide/pkg/extract/gazetteer"
)

func testExtractor(opts ...gazetteer.Option) *gazetteer.Extractor {
	return gazetteer.New(map[string][]string{
		extract.LabelLocation: {"London", "New York", "Berlin"},
		extract.LabelDate:     {"today", "tomorrow", "tonight"},
	}, opts...)
}

func TestEntities_ExactMatch(t *testing.T) {
	t.Parallel()

	e := testExtractor()
	ents := e.Entities("what is the weather in london today")

	loc, ok := extract.First(ents, extract.LabelLocation)
	if !ok || loc != "London" {
		t.Errorf("location = %q ok=%v (%v), want London", loc, ok, ents)
	}
	date, ok := extract.First(ents, extract.LabelDate)
	if !ok || date != "today" {
		t.Errorf("date = %q ok=%v (%v), want today", date, ok, ents)
	}
}

func TestEntities_MultiWordBeatsSingle(t *testing.T) {
	t.Parallel()

	e := testExtractor()
	ents := e.Entities("book a flight to new york tomorrow")

	loc, ok := extract.First(ents, extract.LabelLocation)
	if !ok || loc != "New York" {
		t.Errorf("location = %q ok=%v (%v), want New York", loc, ok, ents)
	}
}

func TestEntities_PhoneticFallback(t *testing.T) {
	t.Parallel()

	e := testExtractor()
	ents := e.Entities("weather in berlyn please")

	loc, ok := extract.First(ents, extract.LabelLocation)
	if !ok || loc != "Berlin" {
		t.Errorf("location = %q ok=%v (%v), want Berlin", loc, ok, ents)
	}
}

func TestEntities_NoMatch(t *testing.T) {
	t.Parallel()

	e := testExtractor()
	if ents := e.Entities("open the calculator"); len(ents) != 0 {
		t.Errorf("expected no entities, got %v", ents)
	}
	if ents := e.Entities(""); ents != nil {
		t.Errorf("expected nil for empty text, got %v", ents)
	}
}

func TestFirst_MissingLabel(t *testing.T) {
	t.Parallel()

	ents := []extract.Entity{{Text: "today", Label: extract.LabelDate}}
	if _, ok := extract.First(ents, extract.LabelLocation); ok {
		t.Error("expected ok=false for absent label")
	}
}
