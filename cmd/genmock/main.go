// Command genmock writes deterministic synthetic fixtures: a per-event steps
// CSV and a daily weather CSV covering the same days. Walking volume follows
// temperature and drops on rainy days, so the fixtures produce non-trivial
// correlations. Output is written through the same csvfile adapters the
// pipeline reads with.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -start 2023-01-01 -days 365 -seed 7 \
//	  -events-out data/mock/step_data.csv \
//	  -weather-out data/mock/weather_data.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

// Istanbul local time, matching the default weather location.
var local = time.FixedZone("+0300", 3*60*60)

var sources = []string{"iPhone", "Apple Watch"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "2023-01-01", "first day, YYYY-MM-DD")
	days := flag.Int("days", 365, "number of days to generate")
	seed := flag.Uint64("seed", 7, "random seed")
	eventsOut := flag.String("events-out", "", "output path for the steps CSV")
	weatherOut := flag.String("weather-out", "", "output path for the weather CSV")
	flag.Parse()

	if *eventsOut == "" || *weatherOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -events-out, -weather-out")
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive")
	}
	first, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	weather := make([]domain.WeatherRecord, 0, *days)
	var events []domain.NormalizedEvent //nolint:prealloc // events per day vary

	for i := range *days {
		day := first.AddDate(0, 0, i)
		w := genWeather(rng, day)
		weather = append(weather, w)
		events = append(events, genEvents(rng, day, w)...)
	}

	for _, p := range []string{*eventsOut, *weatherOut} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	if err := csvfile.WriteEvents(*eventsOut, events); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	log.Printf("wrote %d events: %s", len(events), *eventsOut)

	if err := csvfile.WriteWeather(*weatherOut, weather); err != nil {
		return fmt.Errorf("writing weather: %w", err)
	}
	log.Printf("wrote %d days of weather: %s", len(weather), *weatherOut)

	printStats(events)
	return nil
}

// genWeather produces a seasonal temperature curve with noise and a rain
// chance that peaks in winter.
func genWeather(rng *rand.Rand, day time.Time) domain.WeatherRecord {
	season := math.Cos(2 * math.Pi * float64(day.YearDay()-200) / 365)
	mean := round1(15 + 10*season + rng.NormFloat64()*2)
	spread := 3 + rng.Float64()*4

	precip := 0.0
	if rng.Float64() < 0.35-0.2*season {
		precip = round1(rng.ExpFloat64() * 4)
	}
	snow := 0.0
	if mean < 2 && precip > 0 {
		snow = round1(precip * 8)
	}

	return domain.WeatherRecord{
		Date:          day,
		TempMean:      domain.Float(mean),
		TempMin:       domain.Float(round1(mean - spread)),
		TempMax:       domain.Float(round1(mean + spread)),
		Precipitation: domain.Float(precip),
		Snow:          domain.Float(snow),
		WindDirection: domain.Float(float64(rng.IntN(360))),
		WindSpeed:     domain.Float(round1(5 + rng.Float64()*20)),
		WindGust:      domain.Float(round1(20 + rng.Float64()*40)),
		Pressure:      domain.Float(round1(1013 + rng.NormFloat64()*6)),
		SunshineHours: domain.Float(round1(math.Max(0, 8+4*season-precip))),
	}
}

// genEvents splits a daily step target into a handful of walks.
func genEvents(rng *rand.Rand, day time.Time, w domain.WeatherRecord) []domain.NormalizedEvent {
	target := 6000 + 250*(*w.TempMean-10) - 600*(*w.Precipitation) + rng.NormFloat64()*1500
	if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		target += 1500
	}
	if target < 300 {
		target = 300
	}

	walks := 2 + rng.IntN(5)
	out := make([]domain.NormalizedEvent, 0, walks)
	hour := 7
	for range walks {
		hour += rng.IntN(3)
		if hour > 22 {
			break
		}
		startAt := time.Date(day.Year(), day.Month(), day.Day(), hour, rng.IntN(50), 0, 0, local)
		minutes := 5 + rng.IntN(40)
		steps := int64(target / float64(walks))
		out = append(out, domain.NewNormalizedEvent(
			startAt,
			startAt.Add(time.Duration(minutes)*time.Minute),
			steps,
			sources[rng.IntN(len(sources))],
		))
		hour++
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func printStats(events []domain.NormalizedEvent) {
	days := domain.AggregateDaily(events)
	var total int64
	for _, d := range days {
		total += d.TotalMagnitude
	}
	fmt.Println()
	fmt.Println("=== Fixture Stats ===")
	fmt.Printf("  %-20s %d\n", "Events:", len(events))
	fmt.Printf("  %-20s %d\n", "Days with events:", len(days))
	if len(days) > 0 {
		fmt.Printf("  %-20s %.0f\n", "Mean daily steps:", float64(total)/float64(len(days)))
	}
}
