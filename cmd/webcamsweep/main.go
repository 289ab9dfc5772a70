package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/lilleviklofoten/webcamsweep/internal/app"
	"github.com/lilleviklofoten/webcamsweep/internal/constants"
	"github.com/lilleviklofoten/webcamsweep/internal/log"
	"github.com/lilleviklofoten/webcamsweep/internal/sweep"
	"github.com/lilleviklofoten/webcamsweep/pkg/config"
)

const usageExamples = `
Examples:
  # Dry run for all years older than 5 years
  webcamsweep -base-dir /srv/webcam

  # Actually delete files for all years older than 5 years
  webcamsweep -base-dir /srv/webcam -delete

  # Process only images from March 2018
  webcamsweep -year-filter 2018/03

  # Keep one photo per hour and recompress the rest at quality 80
  webcamsweep -delete -one-per-hour -compress-quality 80
`

func main() {
	cfgFile := flag.String("config", "", "Path to YAML site configuration (built-in Gimsøysand site when empty)")
	baseDir := flag.String("base-dir", "", "Base directory containing webcam images (default from config, else .)")
	doDelete := flag.Bool("delete", false, "Actually delete files (default is dry-run mode)")
	yearFilter := flag.String("year-filter", "", "Only process images in this year/month, YYYY/MM (e.g. 2018/03)")
	minAge := flag.Int("min-age-years", -1, "Only process images older than N years (default from config, else 5)")
	onePerHour := flag.Bool("one-per-hour", false, "Keep only one photo per hour (closest to whole hour), delete others")
	quality := flag.Int("compress-quality", 0, "Recompress remaining images to quality Q (1-100)")
	workers := flag.Int("workers", 0, "Parallel recompression workers (default number of CPUs)")
	exifFallback := flag.Bool("exif-fallback", false, "Read the EXIF capture time of images without a timestamp in their name")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprint(flag.CommandLine.Output(), usageExamples)
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("webcamsweep %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider := config.NewProvider(*cfgFile)
	defer provider.Close()
	defaults, err := provider.GetSweep()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading configuration: %v\n", err)
		exit(1)
	}

	opts := sweep.Options{
		BaseDir:         firstString(*baseDir, defaults.BaseDir, "."),
		Delete:          *doDelete,
		YearFilter:      *yearFilter,
		MinAgeYears:     defaults.MinAgeYears,
		OnePerHour:      *onePerHour || defaults.OnePerHour,
		CompressQuality: defaults.CompressQuality,
		Workers:         defaults.Workers,
		ExifFallback:    *exifFallback,
	}
	if *minAge >= 0 {
		opts.MinAgeYears = *minAge
	}
	if *quality != 0 {
		opts.CompressQuality = *quality
	}
	if *workers != 0 {
		opts.Workers = *workers
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}

	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	application := app.New(provider, log.Component("webcamsweep"))
	if _, err := application.Sweep(context.Background(), opts, os.Stdout); err != nil {
		log.Errorf("sweep finished with errors: %v", err)
		exit(1)
	}
}

// exit flushes the logger, which a deferred Sync cannot do across os.Exit.
func exit(code int) {
	log.Sync()
	os.Exit(code)
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
