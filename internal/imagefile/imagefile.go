// Package imagefile knows how webcam frames are laid out on disk: one
// directory per day (YYYY/MM/DD), one JPEG per frame named after the capture
// time, and an optional mini/ directory of thumbnails with matching names.
package imagefile

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MiniDir is the name of the per-day thumbnail directory.
const MiniDir = "mini"

// Extension of frame files.
const Extension = ".jpg"

const timestampLayout = "20060102150405"

// DayLayout is the relative path of a day directory under the image root.
const DayLayout = "2006/01/02"

var timestampPattern = regexp.MustCompile(`\d{14}`)

// ErrNoTimestamp is returned for names without a run of 14 digits.
var ErrNoTimestamp = errors.New("no YYYYMMDDhhmmss timestamp in name")

// ParseTimestamp returns the capture time encoded in the base name of path:
// the first run of 14 consecutive digits, read as YYYYMMDDhhmmss in loc.
func ParseTimestamp(path string, loc *time.Location) (time.Time, error) {
	base := filepath.Base(path)
	digits := timestampPattern.FindString(base)
	if digits == "" {
		return time.Time{}, fmt.Errorf("%s: %w", base, ErrNoTimestamp)
	}
	t, err := time.ParseInLocation(timestampLayout, digits, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid timestamp %q: %w", base, digits, err)
	}
	return t, nil
}

// ParseDay returns midnight in loc of the day named by the last three
// components of dir, which must be YYYY/MM/DD.
func ParseDay(dir string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/")
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("%s: not a YYYY/MM/DD directory", dir)
	}
	parts = parts[len(parts)-3:]
	if len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%s: not a YYYY/MM/DD directory", dir)
	}
	day, err := time.ParseInLocation(DayLayout, strings.Join(parts, "/"), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", dir, err)
	}
	return day, nil
}

// DayDir returns the path of the directory holding frames taken on day.
func DayDir(root string, day time.Time) string {
	return filepath.Join(root, filepath.FromSlash(day.Format(DayLayout)))
}

// MiniPath returns where the thumbnail for the frame at path lives.
func MiniPath(path string) string {
	return filepath.Join(filepath.Dir(path), MiniDir, filepath.Base(path))
}

// IsFrame reports whether name looks like a frame file.
func IsFrame(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// IsYear reports whether name is a four digit year directory.
func IsYear(name string) bool {
	if len(name) != 4 {
		return false
	}
	_, err := strconv.Atoi(name)
	return err == nil
}

// IsTwoDigit reports whether name is a month or day directory.
func IsTwoDigit(name string) bool {
	return len(name) == 2 && name[0] >= '0' && name[0] <= '9' && name[1] >= '0' && name[1] <= '9'
}
