package imagefile

import (
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifTime returns the EXIF DateTime of the frame at path. Cameras write a
// wall clock without a zone, so the clock fields are read in loc.
func ExifTime(path string, loc *time.Location) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", path, err)
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", path, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// CaptureTime returns the timestamp in the file name of path and, when
// useExif is set and the name carries none, falls back to the EXIF DateTime.
func CaptureTime(path string, loc *time.Location, useExif bool) (time.Time, error) {
	t, err := ParseTimestamp(path, loc)
	if err == nil || !useExif {
		return t, err
	}
	if et, exifErr := ExifTime(path, loc); exifErr == nil {
		return et, nil
	}
	return time.Time{}, err
}
