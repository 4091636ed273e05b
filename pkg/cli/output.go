package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/usecase"
)

// printer writes command results for humans
type printer struct {
	w     io.Writer
	title func(a ...any) string
	label func(a ...any) string
	dim   func(a ...any) string
	warn  func(a ...any) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:     w,
		title: color.New(color.FgGreen, color.Bold).SprintFunc(),
		label: color.New(color.FgCyan, color.Bold).SprintFunc(),
		dim:   color.New(color.Faint).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
	}
}

func (p *printer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.w, format, a...)
}

func (p *printer) Field(name string, value any) {
	p.Printf("%s %v\n", p.label(name+":"), value)
}

func (p *printer) Warn(msg string) {
	p.Printf("%s\n", p.warn(msg))
}

func (p *printer) Citations(citations []model.Citation) {
	if len(citations) == 0 {
		return
	}
	p.Printf("\n%s\n", p.label("Sources:"))
	for i, c := range citations {
		p.Printf("  [%d] %s %s\n", i+1, c.Title, p.dim("("+string(c.SourceID)+")"))
		p.Printf("      %s\n", p.dim(c.Excerpt))
	}
}

func (p *printer) Profile(name string, profile *model.StyleProfile) {
	if profile == nil {
		p.Printf("%s %s\n", p.label(name+":"), p.dim("none"))
		return
	}
	p.Printf("%s %s %s\n", p.label(name+":"), profile.StyleTraits, p.dim("("+profile.AnalysisSource.String()+")"))
	p.Printf("%s\n", profile.ProfileText)
}

// report prints the user message of err, if any, and returns err
func (p *printer) report(err error) error {
	if msg, ok := usecase.UserMessage(err); ok {
		p.Warn(msg)
	}
	return err
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 3, 64)
}
