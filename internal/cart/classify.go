package cart

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the combo-pricing partition a cart item falls into.
type Category int

const (
	CategoryOther Category = iota
	CategoryStarter
	CategoryMain
)

func (c Category) String() string {
	switch c {
	case CategoryStarter:
		return "starter"
	case CategoryMain:
		return "main"
	default:
		return "other"
	}
}

// Default product type labels, as the menu of the day names them.
var (
	DefaultStarterLabels = []string{"entrada", "entradas", "starter", "starters"}
	DefaultMainLabels    = []string{"segundo", "segundos", "fondo", "plato de fondo", "main", "mains"}
)

// Classifier maps product type names to combo categories.
// Matching ignores case, surrounding spaces and accents ("Entrada" == "ENTRADA " == "entráda").
type Classifier struct {
	starters map[string]bool
	mains    map[string]bool
}

// NewClassifier builds a Classifier. Empty label sets fall back to the defaults.
func NewClassifier(starterLabels, mainLabels []string) *Classifier {
	if len(starterLabels) == 0 {
		starterLabels = DefaultStarterLabels
	}
	if len(mainLabels) == 0 {
		mainLabels = DefaultMainLabels
	}
	c := &Classifier{
		starters: make(map[string]bool, len(starterLabels)),
		mains:    make(map[string]bool, len(mainLabels)),
	}
	for _, l := range starterLabels {
		if k := foldLabel(l); k != "" {
			c.starters[k] = true
		}
	}
	for _, l := range mainLabels {
		if k := foldLabel(l); k != "" {
			c.mains[k] = true
		}
	}
	return c
}

// Classify returns the category for a product type name. Unknown labels
// (beverages, disposables, carte dishes) are CategoryOther.
func (c *Classifier) Classify(productTypeName string) Category {
	k := foldLabel(productTypeName)
	switch {
	case c.starters[k]:
		return CategoryStarter
	case c.mains[k]:
		return CategoryMain
	}
	return CategoryOther
}

func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
