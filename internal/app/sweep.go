package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/lilleviklofoten/webcamsweep/internal/recompress"
	"github.com/lilleviklofoten/webcamsweep/internal/sweep"
)

// Sweep plans and executes one cleanup run, printing the banner and the
// summary to out. SIGINT and SIGTERM stop the run between files.
func (a *App) Sweep(ctx context.Context, opts sweep.Options, out io.Writer) (*sweep.Stats, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	calc, err := a.Calculator()
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	logger := a.logger.Named("sweep").With("run", runID)

	writeBanner(out, opts, calc.Config().Location.Latitude, calc.Config().Location.Longitude)
	logger.Infow("sweep started", "base_dir", opts.BaseDir, "dry_run", opts.DryRun(),
		"year_filter", opts.YearFilter, "min_age_years", opts.MinAgeYears,
		"one_per_hour", opts.OnePerHour, "compress_quality", opts.CompressQuality)

	plan, planErr := sweep.NewPlanner(calc, opts, logger).Plan(ctx)
	if plan == nil {
		return nil, planErr
	}
	if planErr != nil {
		logger.Warnw("some directories could not be read", "error", planErr)
	}
	logger.Infow("plan ready", "days", plan.Days, "examined", plan.Examined,
		"to_delete", len(plan.Delete), "to_compress", len(plan.Compress), "unparsed", plan.Unparsed)

	exec := sweep.NewExecutor(opts, sweep.CompressorFunc(recompress.JPEG), logger)
	stats, execErr := exec.Execute(ctx, plan)
	stats.WriteSummary(out)

	logger.Infow("sweep finished", "deleted", stats.Deleted, "freed", stats.SizeToDelete,
		"compressed", stats.FilesToCompress, "saved", stats.TotalSaved())

	switch {
	case execErr != nil && planErr != nil:
		return stats, fmt.Errorf("planning: %v; executing: %w", planErr, execErr)
	case execErr != nil:
		return stats, execErr
	default:
		return stats, planErr
	}
}

func writeBanner(out io.Writer, opts sweep.Options, lat, lon float64) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "WEBCAM IMAGE CLEANUP")
	fmt.Fprintln(out, rule)
	if opts.DryRun() {
		fmt.Fprintln(out, "Mode: DRY RUN (no files will be deleted)")
	} else {
		fmt.Fprintln(out, "Mode: DELETE MODE")
	}
	base, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		base = opts.BaseDir
	}
	fmt.Fprintf(out, "Base directory: %s\n", base)
	fmt.Fprintf(out, "Site: %.7f, %.7f\n", lat, lon)
	fmt.Fprintf(out, "Minimum age: %d years\n", opts.MinAgeYears)
	if opts.YearFilter != "" {
		fmt.Fprintf(out, "Year/Month filter: %s\n", opts.YearFilter)
	}
	if opts.OnePerHour {
		fmt.Fprintln(out, "One-per-hour mode: ENABLED (keeping only image closest to whole hour)")
	}
	if opts.Compressing() {
		fmt.Fprintf(out, "Compression: ENABLED (quality %d)\n", opts.CompressQuality)
	}
	fmt.Fprintln(out, rule)
}
