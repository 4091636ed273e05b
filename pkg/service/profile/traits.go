package profile

import "strings"

// Trait is a style tag derived from keyword presence
type Trait struct {
	Tag      string   `toml:"tag"`
	Keywords []string `toml:"keywords"`
}

// DefaultTraits is the fixed trait vocabulary
var DefaultTraits = []Trait{
	{Tag: "formal", Keywords: []string{"formal"}},
	{Tag: "didactic", Keywords: []string{"didactic", "educational"}},
	{Tag: "empathetic", Keywords: []string{"empathetic", "compassionate"}},
	{Tag: "technical", Keywords: []string{"technical", "scientific"}},
	{Tag: "uses_analogies", Keywords: []string{"analogy", "analogies"}},
}

const (
	defaultTraits  = "professional, medical"
	fallbackTraits = "professional, medical, informative"
)

// ExtractTraits returns the comma separated tags whose keywords appear in text
func ExtractTraits(text string, vocabulary []Trait) string {
	lower := strings.ToLower(text)

	var tags []string
	for _, t := range vocabulary {
		for _, kw := range t.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				tags = append(tags, t.Tag)
				break
			}
		}
	}

	if len(tags) == 0 {
		return defaultTraits
	}
	return strings.Join(tags, ", ")
}
