// Command validate checks the artifacts of one pipeline run for internal
// consistency: report layout, row counts against the report and manifest,
// and the shape of the correlation matrix.
//
// Usage:
//
//	go run ./cmd/validate -output output
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/activity-weather-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

const totalDaysPrefix = "Total days analyzed: "

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	outputDir := flag.String("output", "output", "directory holding a run's artifacts")
	flag.Parse()

	os.Exit(run(*outputDir))
}

func run(dir string) int {
	fmt.Println("=== Run Artifact Validation ===")
	fmt.Println()

	arts, err := loadArtifacts(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReportLayout(arts.reportLines),
		validateDayCounts(arts),
		validateManifest(dir, arts),
		validateCorrelation(arts.correlation),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Run %s: %d merged days, %d events\n", arts.manifest.RunID, arts.mergedRows, arts.eventRows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

type artifacts struct {
	manifest    csvfile.Manifest
	reportLines []string
	mergedRows  int
	eventRows   int
	correlation [][]string
}

func loadArtifacts(dir string) (*artifacts, error) {
	var a artifacts
	var err error

	if a.manifest, err = csvfile.ReadManifest(filepath.Join(dir, csvfile.ManifestFile)); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if a.reportLines, err = readLines(filepath.Join(dir, csvfile.ReportFile)); err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if a.mergedRows, err = csvfile.CountRows(filepath.Join(dir, csvfile.MergedFile)); err != nil {
		return nil, fmt.Errorf("load merged table: %w", err)
	}
	if a.eventRows, err = csvfile.CountRows(filepath.Join(dir, csvfile.EventsFile)); err != nil {
		return nil, fmt.Errorf("load events table: %w", err)
	}
	if a.correlation, err = readCSV(filepath.Join(dir, csvfile.CorrelationFile)); err != nil {
		return nil, fmt.Errorf("load correlation matrix: %w", err)
	}
	return &a, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

// ── Phases ──

func validateReportLayout(lines []string) *phase {
	p := &phase{name: "Report layout"}

	if len(lines) == 0 || lines[0] != domain.ReportBanner {
		p.errorf("first line should be %q", domain.ReportBanner)
	}

	next := 0
	for i, line := range lines {
		idx := slices.Index(domain.SectionTitles, line)
		if idx < 0 {
			continue
		}
		if idx != next {
			p.errorf("line %d: section %q out of order (expected %q)", i+1, line, domain.SectionTitles[next])
		}
		next = idx + 1
	}
	if next != len(domain.SectionTitles) {
		p.errorf("report ends after %d of %d sections", next, len(domain.SectionTitles))
	}
	return p
}

func validateDayCounts(a *artifacts) *phase {
	p := &phase{name: "Merged rows vs report"}

	reported, ok := totalDays(a.reportLines)
	if !ok {
		p.errorf("report has no %q line", strings.TrimSpace(totalDaysPrefix))
		return p
	}
	if reported != a.mergedRows {
		p.errorf("report says %d days, merged table has %d rows", reported, a.mergedRows)
	}
	return p
}

func totalDays(lines []string) (int, bool) {
	for _, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), totalDaysPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(rest, ",", ""))
		return n, err == nil
	}
	return 0, false
}

func validateManifest(dir string, a *artifacts) *phase {
	p := &phase{name: "Manifest consistency"}
	c := a.manifest.Counts

	if a.manifest.RunID == "" {
		p.errorf("manifest has no run_id")
	}
	if c.Joined != a.mergedRows {
		p.errorf("manifest joined=%d, merged table has %d rows", c.Joined, a.mergedRows)
	}
	if c.Normalized != a.eventRows {
		p.errorf("manifest normalized=%d, events table has %d rows", c.Normalized, a.eventRows)
	}
	if c.Normalized+c.Skipped != c.Events {
		p.errorf("normalized (%d) + skipped (%d) != events (%d)", c.Normalized, c.Skipped, c.Events)
	}
	if c.Joined+c.ActivityOnly != c.Days {
		p.errorf("joined (%d) + activity_only (%d) != days (%d)", c.Joined, c.ActivityOnly, c.Days)
	}

	var skipped int
	for _, n := range a.manifest.SkipReasons {
		skipped += n
	}
	if skipped != c.Skipped {
		p.errorf("skip reasons sum to %d, manifest skipped=%d", skipped, c.Skipped)
	}

	for _, name := range a.manifest.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			p.errorf("listed file %s: %v", name, err)
		}
	}
	return p
}

func validateCorrelation(rows [][]string) *phase {
	p := &phase{name: "Correlation matrix"}

	if len(rows) < 2 {
		p.errorf("matrix has no rows")
		return p
	}
	cols := rows[0][1:]
	if len(rows)-1 != len(cols) {
		p.errorf("matrix is %dx%d, want square", len(rows)-1, len(cols))
		return p
	}

	vals := make([][]*float64, len(cols))
	for i, row := range rows[1:] {
		if row[0] != cols[i] {
			p.errorf("row %d named %q, column named %q", i+1, row[0], cols[i])
		}
		vals[i] = make([]*float64, len(cols))
		for j, cell := range row[1:] {
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				p.errorf("%s/%s: %v", cols[i], cols[j], err)
				continue
			}
			if v < -1-1e-9 || v > 1+1e-9 {
				p.errorf("%s/%s: %g outside [-1, 1]", cols[i], cols[j], v)
			}
			vals[i][j] = &v
		}
	}

	for i := range vals {
		if d := vals[i][i]; d != nil && math.Abs(*d-1) > 1e-6 {
			p.errorf("diagonal %s = %g, want 1", cols[i], *d)
		}
		for j := i + 1; j < len(vals); j++ {
			a, b := vals[i][j], vals[j][i]
			if (a == nil) != (b == nil) || (a != nil && math.Abs(*a-*b) > 1e-9) {
				p.errorf("%s/%s not symmetric", cols[i], cols[j])
			}
		}
	}
	return p
}
