package anonymizer

import (
	"regexp"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

type pattern struct {
	piiType types.PIIType
	re      *regexp.Regexp
}

// patterns run in this order: national IDs, phones, emails, dates. Formatted
// numbers come before bare digit runs so that no pass sees a partial match left
// by an earlier one.
var patterns = []pattern{
	{types.PIITypeCPF, regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`)},
	{types.PIITypeCPF, regexp.MustCompile(`\b\d{11}\b`)},
	{types.PIITypeRG, regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}-\d\b`)},
	{types.PIITypeCNS, regexp.MustCompile(`\b\d{15}\b`)},

	{types.PIITypePhone, regexp.MustCompile(`\+55\s?\d{2}\s?\d{4,5}-?\d{4}\b`)},
	{types.PIITypePhone, regexp.MustCompile(`\(\d{2}\)\s?\d{4,5}-?\d{4}\b`)},
	{types.PIITypePhone, regexp.MustCompile(`\b\d{2}\s?\d{4,5}-?\d{4}\b`)},

	{types.PIITypeEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},

	{types.PIITypeDate, regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{types.PIITypeDate, regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)},
}

// placeholderPattern matches labels written by this package, numbered or not
var placeholderPattern = regexp.MustCompile(`\[[\p{Lu}]+(?:_\d+)?\]`)

var personPattern = regexp.MustCompile(`\[` + string(types.PIITypePerson) + `(?:_\d+)?\]`)

// Humanize replaces person placeholders with a plain word for display.
// Stored text is never humanized.
func Humanize(text string) string {
	return personPattern.ReplaceAllString(text, "paciente")
}

func placeholder(t types.PIIType) string {
	return "[" + t.String() + "]"
}

// replacePatterns applies every pattern in order and records each substitution
func replacePatterns(text string) (string, []model.Replacement) {
	var replacements []model.Replacement

	for _, p := range patterns {
		label := placeholder(p.piiType)
		text = p.re.ReplaceAllStringFunc(text, func(match string) string {
			replacements = append(replacements, model.Replacement{
				Original:    match,
				Placeholder: label,
				Type:        p.piiType,
			})
			return label
		})
	}

	return text, replacements
}
