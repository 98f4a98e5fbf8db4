// Package extract defines the Extractor interface for pulling typed entities
// out of an utterance.
//
// Entities carry the surface text and a coarse label. The handler layer uses
// them to fill operation slots, e.g. the location for a weather request.
package extract

// Entity labels understood by the handler layer.
const (
	// LabelLocation marks geopolitical entities (cities, countries).
	LabelLocation = "GPE"

	// LabelDate marks date references ("today", "tomorrow").
	LabelDate = "DATE"
)

// Entity is a single typed span found in an utterance.
type Entity struct {
	// Text is the matched surface form, in its canonical casing when the
	// extractor resolved it against a known vocabulary.
	Text string

	// Label is the entity type, one of the Label constants.
	Label string
}

// Extractor finds typed entities in an utterance. Implementations must be
// safe for concurrent use.
type Extractor interface {
	Entities(text string) []Entity
}

// First returns the text of the first entity carrying label, or ok=false.
func First(entities []Entity, label string) (string, bool) {
	for _, e := range entities {
		if e.Label == label {
			return e.Text, true
		}
	}
	return "", false
}
