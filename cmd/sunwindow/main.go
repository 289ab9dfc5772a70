package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lilleviklofoten/webcamsweep/pkg/config"
	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

func main() {
	var dateStr, cfgFile string
	var year int
	flag.StringVar(&dateStr, "date", "", "Date to calculate the window for (YYYY-MM-DD, default today)")
	flag.IntVar(&year, "year", 0, "Print the window for every day of this year with summary statistics")
	flag.StringVar(&cfgFile, "config", "", "Path to YAML site configuration (built-in Gimsøysand site when empty)")
	flag.Parse()

	cfgData, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	sc, err := cfgData.SolarConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	calc := solar.NewCalculator(sc)
	zone := calc.Config().Zone

	if year != 0 {
		printYear(calc, year, zone)
		return
	}

	date := time.Now().In(zone)
	if dateStr != "" {
		date, err = time.ParseInLocation(time.DateOnly, dateStr, zone)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			os.Exit(1)
		}
	}

	w := calc.Window(date)
	fmt.Printf("Display window for %s (%.4f, %.4f)\n", w.Date.Format(time.DateOnly), sc.Location.Latitude, sc.Location.Longitude)
	fmt.Printf("  Regime:   %s\n", w.Regime)
	fmt.Printf("  Dawn:     %s\n", w.Dawn.Format(time.TimeOnly))
	fmt.Printf("  Sunrise:  %s\n", w.Sunrise.Format(time.TimeOnly))
	fmt.Printf("  Sunset:   %s\n", w.Sunset.Format(time.TimeOnly))
	fmt.Printf("  Dusk:     %s\n", w.Dusk.Format(time.TimeOnly))
	fmt.Printf("  Length:   %s\n", w.Length())
}

func printYear(calc *solar.Calculator, year int, zone *time.Location) {
	fmt.Printf("%-10s  %-19s  %-8s  %-8s  %-8s  %-8s  %s\n", "date", "regime", "dawn", "sunrise", "sunset", "dusk", "length")

	var hours []float64
	counts := make(map[solar.Regime]int)
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, zone); d.Year() == year; d = d.AddDate(0, 0, 1) {
		w := calc.Window(d)
		counts[w.Regime]++
		if w.Regime == solar.Ordinary {
			hours = append(hours, w.Length().Hours())
		}
		fmt.Printf("%-10s  %-19s  %-8s  %-8s  %-8s  %-8s  %s\n",
			w.Date.Format(time.DateOnly), w.Regime,
			w.Dawn.Format(time.TimeOnly), w.Sunrise.Format(time.TimeOnly),
			w.Sunset.Format(time.TimeOnly), w.Dusk.Format(time.TimeOnly), w.Length())
	}

	fmt.Println()
	fmt.Printf("Ordinary days:            %d\n", counts[solar.Ordinary])
	fmt.Printf("Continuous daylight days: %d\n", counts[solar.ContinuousDaylight])
	fmt.Printf("Continuous darkness days: %d\n", counts[solar.ContinuousDarkness])
	if len(hours) == 0 {
		return
	}
	mean, std := stat.MeanStdDev(hours, nil)
	fmt.Printf("Ordinary window length:   mean %.2fh, stddev %.2fh, min %.2fh, max %.2fh\n",
		mean, std, floats.Min(hours), floats.Max(hours))
}
