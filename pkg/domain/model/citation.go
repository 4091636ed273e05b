package model

// Citation is a source reference attached to a generated answer. It exists only
// inside a single answer and is never stored on its own.
type Citation struct {
	SourceID ContentID
	Title    string
	Excerpt  string
}

// Excerpt returns the first n characters of text followed by an ellipsis
func Excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
