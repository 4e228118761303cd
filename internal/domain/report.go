package domain

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Render returns the report as text: the banner, then each section header on
// its own line followed by its lines, sections separated by a blank line.
func (r InsightReport) Render() string {
	var b strings.Builder
	_ = r.RenderTo(&b)
	return b.String()
}

// RenderTo writes the rendered report to w.
func (r InsightReport) RenderTo(w io.Writer) error {
	if _, err := fmt.Fprintln(w, ReportBanner); err != nil {
		return err
	}
	for _, s := range r.Sections {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
		for _, line := range s.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Section returns the section with the given title.
func (r InsightReport) Section(title string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

func formatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// formatWhole rounds half to even and groups thousands.
func formatWhole(v float64) string {
	return formatInt(int64(math.RoundToEven(v)))
}

func formatCorr(r *float64) string {
	if r == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *r)
}

func formatTemp(t *float64) string {
	if t == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f°C", *t)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
