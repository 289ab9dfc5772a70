package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lilleviklofoten/webcamsweep/internal/sweep"
	"github.com/lilleviklofoten/webcamsweep/pkg/config"
)

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * y), G: uint8(x*3 + y), B: uint8(y * 5), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 100}))
	require.NoError(t, f.Close())
}

func newApp(t *testing.T) *App {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return New(config.NewStaticProvider(config.Default()), logger.Sugar())
}

func TestSweepEndToEnd(t *testing.T) {
	base := t.TempDir()
	// Polar night: window 06:00:00 to 17:59:59.
	writeJPEG(t, filepath.Join(base, "2018/12/20/20181220030000.jpg"))
	writeJPEG(t, filepath.Join(base, "2018/12/20/mini/20181220030000.jpg"))
	writeJPEG(t, filepath.Join(base, "2018/12/20/20181220100000.jpg"))
	writeJPEG(t, filepath.Join(base, "2018/12/20/20181220101500.jpg"))
	writeJPEG(t, filepath.Join(base, "2018/12/20/mini/20181220100000.jpg"))

	opts := sweep.Options{
		BaseDir:         base,
		MinAgeYears:     5,
		OnePerHour:      true,
		CompressQuality: 40,
		Workers:         2,
		Now:             time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	// Dry run first: nothing changes.
	var out bytes.Buffer
	stats, err := newApp(t).Sweep(context.Background(), opts, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 3, stats.FilesToDelete)
	assert.Equal(t, 2, stats.FilesToCompress)
	assert.FileExists(t, filepath.Join(base, "2018/12/20/20181220030000.jpg"))
	assert.Contains(t, out.String(), "WEBCAM IMAGE CLEANUP")
	assert.Contains(t, out.String(), "Mode: DRY RUN")
	assert.Contains(t, out.String(), "Estimated space to save via compression")

	before, err := os.Stat(filepath.Join(base, "2018/12/20/20181220100000.jpg"))
	require.NoError(t, err)

	opts.Delete = true
	out.Reset()
	stats, err = newApp(t).Sweep(context.Background(), opts, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Deleted)
	assert.NoFileExists(t, filepath.Join(base, "2018/12/20/20181220030000.jpg"))
	assert.NoFileExists(t, filepath.Join(base, "2018/12/20/mini/20181220030000.jpg"))
	assert.NoFileExists(t, filepath.Join(base, "2018/12/20/20181220101500.jpg"))

	after, err := os.Stat(filepath.Join(base, "2018/12/20/20181220100000.jpg"))
	require.NoError(t, err)
	assert.Less(t, after.Size(), before.Size())
	assert.Contains(t, out.String(), "Space saved via compression")
}

func TestSweepRejectsBadOptions(t *testing.T) {
	var out bytes.Buffer
	_, err := newApp(t).Sweep(context.Background(), sweep.Options{BaseDir: t.TempDir(), CompressQuality: 150}, &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())

	_, err = newApp(t).Sweep(context.Background(), sweep.Options{BaseDir: t.TempDir(), YearFilter: "18/3"}, &out)
	assert.Error(t, err)
}

func TestSweepMissingBaseDir(t *testing.T) {
	var out bytes.Buffer
	_, err := newApp(t).Sweep(context.Background(), sweep.Options{BaseDir: filepath.Join(t.TempDir(), "missing"), MinAgeYears: 5}, &out)
	assert.Error(t, err)
}

func TestCalculatorRejectsBadSite(t *testing.T) {
	cfg := config.Default()
	cfg.Site.FakeSunriseHour = 30
	a := New(config.NewStaticProvider(cfg), zap.NewNop().Sugar())
	_, err := a.Calculator()
	assert.Error(t, err)
}
