package sweep

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EstimatedCompressionSavings is the share of the original size a dry run
// assumes recompression will free.
const EstimatedCompressionSavings = 0.5

// Stats summarises an executed plan.
type Stats struct {
	DryRun      bool
	Compressing bool

	TotalFiles    int
	FilesToDelete int
	Deleted       int
	SizeToDelete  int64

	FilesToCompress    int
	SizeBeforeCompress int64
	SizeAfterCompress  int64
	// Ratios holds after/before for every file actually recompressed.
	Ratios []float64
}

// CompressionSaved returns the bytes freed by recompression, estimated in a
// dry run.
func (s *Stats) CompressionSaved() int64 {
	if s.DryRun {
		return int64(float64(s.SizeBeforeCompress) * EstimatedCompressionSavings)
	}
	return s.SizeBeforeCompress - s.SizeAfterCompress
}

// TotalSaved returns deleted plus recompressed savings.
func (s *Stats) TotalSaved() int64 {
	if !s.Compressing {
		return s.SizeToDelete
	}
	return s.SizeToDelete + s.CompressionSaved()
}

// WriteSummary prints the end-of-run report.
func (s *Stats) WriteSummary(w io.Writer) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)
	if s.DryRun {
		fmt.Fprintln(w, "Mode: DRY RUN (no files deleted)")
	} else {
		fmt.Fprintln(w, "Mode: DELETE MODE")
	}
	fmt.Fprintf(w, "Total files examined: %d\n", s.TotalFiles)
	fmt.Fprintf(w, "Files to delete: %d\n", s.FilesToDelete)
	fmt.Fprintf(w, "Space to free: %s\n", humanize.IBytes(uint64(s.SizeToDelete)))

	if s.Compressing {
		fmt.Fprintf(w, "\nFiles to compress: %d\n", s.FilesToCompress)
		if s.DryRun {
			fmt.Fprintf(w, "Estimated space to save via compression: %s\n", humanize.IBytes(uint64(s.CompressionSaved())))
			fmt.Fprintf(w, "Total estimated space savings: %s\n", humanize.IBytes(uint64(s.TotalSaved())))
		} else {
			fmt.Fprintf(w, "Space saved via compression: %s\n", humanize.IBytes(uint64(max(s.CompressionSaved(), 0))))
			fmt.Fprintf(w, "Total space saved: %s\n", humanize.IBytes(uint64(max(s.TotalSaved(), 0))))
			if len(s.Ratios) > 0 {
				mean, std := stat.Mean(s.Ratios, nil), 0.0
				if len(s.Ratios) > 1 {
					std = stat.StdDev(s.Ratios, nil)
				}
				fmt.Fprintf(w, "Size ratio after/before: mean %.2f, stddev %.2f, best %.2f, worst %.2f\n",
					mean, std, floats.Min(s.Ratios), floats.Max(s.Ratios))
			}
		}
	}

	if s.DryRun {
		fmt.Fprintln(w, "\nRun with -delete to actually delete these files.")
	}
	fmt.Fprintln(w, rule)
}
