// Package recompress re-encodes webcam frames at a lower JPEG quality.
package recompress

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
)

// MinQuality and MaxQuality bound the accepted encoder quality.
const (
	MinQuality = 1
	MaxQuality = 100
)

// ValidQuality reports whether q can be passed to JPEG.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// JPEG decodes the image at path and writes it back in place at quality.
// The new file is written next to the old one and renamed over it, so a
// failed encode leaves the original untouched. It returns the file size
// before and after.
func JPEG(path string, quality int) (before, after int64, err error) {
	if !ValidQuality(quality) {
		return 0, 0, fmt.Errorf("quality %d out of range [%d, %d]", quality, MinQuality, MaxQuality)
	}

	src, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	info, err := src.Stat()
	if err != nil {
		src.Close()
		return 0, 0, err
	}
	img, _, err := image.Decode(src)
	src.Close()
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".recompress-*")
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err = jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality}); err != nil {
		tmp.Close()
		return 0, 0, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return 0, 0, err
	}
	if err = os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return 0, 0, err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return 0, 0, err
	}

	out, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return info.Size(), out.Size(), nil
}
