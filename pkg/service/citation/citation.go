// Package citation checks and post-processes bracketed source markers in generated answers.
package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// Slack bounds labeling drift: the highest cited index must stay strictly below
// the offered citation count plus Slack, so [source_7] over five citations fails.
const Slack = 2

// ErrCitation means the answer ignored or fabricated sources
var ErrCitation = goerr.New("invalid citations in response")

var (
	markerPattern     = regexp.MustCompile(`\[source_(\d+)\]`)
	whitespacePattern = regexp.MustCompile(`\s{2,}`)
)

// Marker returns the bracketed marker of the 1-based source n
func Marker(n int) string {
	return fmt.Sprintf("[source_%d]", n)
}

// References returns the source indexes cited in text, in order of appearance
func References(text string) []int {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	refs := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		refs = append(refs, n)
	}
	return refs
}

// Validate rejects a response that offers citations but cites nothing, or whose
// highest cited index reaches the offered count plus Slack.
func Validate(text string, citations []model.Citation) error {
	refs := References(text)

	if len(citations) > 0 && len(refs) == 0 {
		return goerr.Wrap(ErrCitation, "response has no source reference",
			goerr.V("citations", len(citations)))
	}

	maxRef := 0
	for _, r := range refs {
		maxRef = max(maxRef, r)
	}
	if maxRef >= len(citations)+Slack {
		return goerr.Wrap(ErrCitation, "response cites a source that was not provided",
			goerr.V("max_ref", maxRef),
			goerr.V("citations", len(citations)))
	}

	return nil
}

// Used returns the offered citations whose marker appears in text, in source order
func Used(text string, citations []model.Citation) []model.Citation {
	used := make([]model.Citation, 0, len(citations))
	for i, c := range citations {
		if strings.Contains(text, Marker(i+1)) {
			used = append(used, c)
		}
	}
	return used
}

// StripMarkers removes source markers and collapses the whitespace they leave behind
func StripMarkers(text string) string {
	text = markerPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
