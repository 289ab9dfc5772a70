// Package sweep finds webcam frames that the site never shows and removes
// or shrinks them. Planning and execution are separate so a dry run walks
// exactly the same decisions as a real one.
package sweep

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lilleviklofoten/webcamsweep/internal/recompress"
)

// Options controls one sweep.
type Options struct {
	BaseDir string
	// Delete actually removes and rewrites files. Without it the sweep only
	// reports what it would do.
	Delete bool
	// YearFilter restricts the sweep to one YYYY/MM month and bypasses the
	// minimum age.
	YearFilter  string
	MinAgeYears int
	OnePerHour  bool
	// CompressQuality re-encodes surviving frames when non-zero.
	CompressQuality int
	Workers         int
	// ExifFallback reads the EXIF capture time of frames whose names carry
	// no timestamp.
	ExifFallback bool
	// Now is the reference for MinAgeYears. Zero means the current time.
	Now time.Time
}

// DryRun reports whether files are left untouched.
func (o Options) DryRun() bool { return !o.Delete }

// Compressing reports whether surviving frames are re-encoded.
func (o Options) Compressing() bool { return o.CompressQuality != 0 }

// Validate checks the option values a user can get wrong.
func (o Options) Validate() error {
	if o.YearFilter != "" {
		if _, _, err := ParseYearFilter(o.YearFilter); err != nil {
			return err
		}
	}
	if o.Compressing() && !recompress.ValidQuality(o.CompressQuality) {
		return fmt.Errorf("compress quality must be between %d and %d, got %d",
			recompress.MinQuality, recompress.MaxQuality, o.CompressQuality)
	}
	if o.MinAgeYears < 0 {
		return fmt.Errorf("min age years must not be negative, got %d", o.MinAgeYears)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	return nil
}

// ParseYearFilter splits a YYYY/MM filter.
func ParseYearFilter(s string) (year int, month int, err error) {
	y, m, ok := strings.Cut(s, "/")
	if !ok || len(y) != 4 || len(m) != 2 {
		return 0, 0, fmt.Errorf("year filter %q must be in format YYYY/MM (e.g. 2018/03)", s)
	}
	if year, err = strconv.Atoi(y); err != nil {
		return 0, 0, fmt.Errorf("year filter %q must be in format YYYY/MM (e.g. 2018/03)", s)
	}
	if month, err = strconv.Atoi(m); err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("year filter %q has invalid month", s)
	}
	return year, month, nil
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}
