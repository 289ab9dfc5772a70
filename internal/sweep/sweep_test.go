package sweep

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

const (
	frameSize = 100
	miniSize  = 10
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return logger.Sugar()
}

func touch(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o644))
}

// buildTree lays out three days covering the three regimes:
//
//	2018/03/15  ordinary, window roughly 04:20 to 20:05
//	2018/06/10  continuous daylight
//	2018/12/20  continuous darkness, window 06:00:00 to 17:59:59
//	2024/01/10  too recent for the default minimum age
func buildTree(t *testing.T) string {
	base := t.TempDir()
	frame := func(day, stamp string, withMini bool) {
		p := filepath.Join(base, day, stamp+".jpg")
		touch(t, p, frameSize)
		if withMini {
			touch(t, filepath.Join(base, day, "mini", stamp+".jpg"), miniSize)
		}
	}

	frame("2018/03/15", "20180315020000", true)
	frame("2018/03/15", "20180315120300", true)
	frame("2018/03/15", "20180315120700", false)
	frame("2018/03/15", "20180315124500", true)
	frame("2018/03/15", "20180315140000", false)
	frame("2018/03/15", "20180315230000", false)
	touch(t, filepath.Join(base, "2018/03/15", "snapshot.jpg"), frameSize)
	touch(t, filepath.Join(base, "2018/03/15", "notes.txt"), 1)

	frame("2018/06/10", "20180610030000", false)

	frame("2018/12/20", "20181220055959", false)
	frame("2018/12/20", "20181220060000", true)
	frame("2018/12/20", "20181220180000", false)

	frame("2024/01/10", "20240110030000", false)

	// Not a day directory.
	touch(t, filepath.Join(base, "2018", "03", "misc", "20180301000000.jpg"), frameSize)
	return base
}

func rel(t *testing.T, base string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(base, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func newPlanner(t *testing.T, opts Options) *Planner {
	if opts.Now.IsZero() {
		opts.Now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.MinAgeYears == 0 {
		opts.MinAgeYears = 5
	}
	return NewPlanner(solar.NewCalculator(solar.DefaultConfig()), opts, testLogger(t))
}

func TestPlanDeletesOutsideWindow(t *testing.T) {
	base := buildTree(t)
	plan, err := newPlanner(t, Options{BaseDir: base}).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2018/03/15/20180315020000.jpg",
		"2018/03/15/mini/20180315020000.jpg",
		"2018/03/15/20180315230000.jpg",
		"2018/12/20/20181220055959.jpg",
		"2018/12/20/20181220180000.jpg",
	}, rel(t, base, plan.Delete))
	assert.Empty(t, plan.Compress)

	assert.Equal(t, 3, plan.Days)
	assert.Equal(t, 11, plan.Examined)
	assert.Equal(t, 1, plan.Unparsed)
	assert.Equal(t, 6, plan.Displayed)
	assert.Equal(t, map[solar.Regime]int{
		solar.Ordinary:           1,
		solar.ContinuousDaylight: 1,
		solar.ContinuousDarkness: 1,
	}, plan.Regimes)
}

func TestPlanOnePerHour(t *testing.T) {
	base := buildTree(t)
	plan, err := newPlanner(t, Options{BaseDir: base, OnePerHour: true, CompressQuality: 80}).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2018/03/15/20180315020000.jpg",
		"2018/03/15/mini/20180315020000.jpg",
		"2018/03/15/20180315230000.jpg",
		"2018/03/15/20180315120700.jpg",
		"2018/03/15/20180315124500.jpg",
		"2018/03/15/mini/20180315124500.jpg",
		"2018/12/20/20181220055959.jpg",
		"2018/12/20/20181220180000.jpg",
	}, rel(t, base, plan.Delete))

	assert.Equal(t, []string{
		"2018/03/15/20180315120300.jpg",
		"2018/03/15/20180315140000.jpg",
		"2018/06/10/20180610030000.jpg",
		"2018/12/20/20181220060000.jpg",
	}, rel(t, base, plan.Compress))
}

func TestPlanCompressWithoutOnePerHour(t *testing.T) {
	base := buildTree(t)
	plan, err := newPlanner(t, Options{BaseDir: base, CompressQuality: 60}).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2018/03/15/20180315120300.jpg",
		"2018/03/15/20180315120700.jpg",
		"2018/03/15/20180315124500.jpg",
		"2018/03/15/20180315140000.jpg",
		"2018/06/10/20180610030000.jpg",
		"2018/12/20/20181220060000.jpg",
	}, rel(t, base, plan.Compress))

	for _, d := range plan.Delete {
		assert.NotContains(t, plan.Compress, d)
	}
}

func TestPlanYearFilterBypassesMinAge(t *testing.T) {
	base := buildTree(t)
	opts := Options{
		BaseDir:     base,
		YearFilter:  "2018/12",
		MinAgeYears: 50,
	}
	plan, err := newPlanner(t, opts).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Days)
	assert.Equal(t, []string{
		"2018/12/20/20181220055959.jpg",
		"2018/12/20/20181220180000.jpg",
	}, rel(t, base, plan.Delete))
}

// On 20 July the sun sets just after midnight and there is no twilight; the
// whole day stays on display.
func TestPlanKeepsDayWithSunsetAfterMidnight(t *testing.T) {
	base := t.TempDir()
	for _, stamp := range []string{"20180720010000", "20180720120000", "20180720233000"} {
		touch(t, filepath.Join(base, "2018/07/20", stamp+".jpg"), frameSize)
	}

	plan, err := newPlanner(t, Options{BaseDir: base, YearFilter: "2018/07", CompressQuality: 70}).Plan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, plan.Delete)
	assert.Equal(t, 3, plan.Displayed)
	assert.Equal(t, []string{
		"2018/07/20/20180720010000.jpg",
		"2018/07/20/20180720120000.jpg",
		"2018/07/20/20180720233000.jpg",
	}, rel(t, base, plan.Compress))
	assert.Equal(t, map[solar.Regime]int{solar.Ordinary: 1}, plan.Regimes)
}

func TestPlanYearFilterMissingMonth(t *testing.T) {
	base := buildTree(t)
	plan, err := newPlanner(t, Options{BaseDir: base, YearFilter: "2017/01"}).Plan(context.Background())
	assert.Error(t, err)
	require.NotNil(t, plan)
	assert.Zero(t, plan.Days)
}

func TestPlanMinAge(t *testing.T) {
	base := buildTree(t)

	tests := []struct {
		name     string
		now      time.Time
		minAge   int
		expected int
	}{
		{"everything old enough", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 5, 4},
		{"2018 is exactly old enough", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 5, 3},
		{"2018 too recent", time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), 5, 0},
		{"one year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newPlanner(t, Options{BaseDir: base, Now: tt.now, MinAgeYears: tt.minAge}).Plan(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, plan.Days)
		})
	}
}

func TestPlanMissingBaseDir(t *testing.T) {
	_, err := newPlanner(t, Options{BaseDir: filepath.Join(t.TempDir(), "nope")}).Plan(context.Background())
	assert.Error(t, err)
}

func TestPlanCancelled(t *testing.T) {
	base := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPlanner(t, Options{BaseDir: base}).Plan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWindowMemoised(t *testing.T) {
	p := newPlanner(t, Options{})
	day := time.Date(2018, 3, 15, 0, 0, 0, 0, p.zone)
	w := p.Window(day)
	assert.Len(t, p.windows, 1)
	assert.Equal(t, w, p.Window(day.Add(3*time.Hour)))
	assert.Len(t, p.windows, 1)
}

func TestClosestToHour(t *testing.T) {
	at := func(h, m, s int) frame {
		return frame{path: fmt.Sprintf("%02d%02d%02d", h, m, s), taken: time.Date(2018, 3, 15, h, m, s, 0, time.UTC)}
	}
	tests := []struct {
		name     string
		frames   []frame
		expected int
	}{
		{"single", []frame{at(9, 30, 0)}, 0},
		{"exact hour", []frame{at(9, 10, 0), at(9, 0, 0), at(9, 5, 0)}, 1},
		{"tie keeps first", []frame{at(9, 2, 0), at(9, 2, 0)}, 0},
		{"late in hour", []frame{at(9, 59, 59), at(9, 40, 0)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, closestToHour(tt.frames))
		})
	}
}

func TestGroupByHour(t *testing.T) {
	mk := func(h, m int) frame {
		return frame{taken: time.Date(2018, 3, 15, h, m, 0, 0, time.UTC)}
	}
	groups := groupByHour([]frame{mk(14, 1), mk(9, 5), mk(14, 30), mk(9, 0)})
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Equal(t, 9, groups[0][0].taken.Hour())
	assert.Equal(t, 5, groups[0][0].taken.Minute())
	assert.Len(t, groups[1], 2)
}

// recordingCompressor halves every file it is given.
type recordingCompressor struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (r *recordingCompressor) Compress(path string, quality int) (int64, int64, error) {
	r.mu.Lock()
	r.calls = append(r.calls, path)
	r.mu.Unlock()
	if r.fail[filepath.Base(path)] {
		return 0, 0, fmt.Errorf("cannot compress %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	half := info.Size() / 2
	if err := os.Truncate(path, half); err != nil {
		return 0, 0, err
	}
	return info.Size(), half, nil
}

func (r *recordingCompressor) sorted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.calls...)
	sort.Strings(out)
	return out
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	base := buildTree(t)
	opts := Options{BaseDir: base, OnePerHour: true, CompressQuality: 80}
	plan, err := newPlanner(t, opts).Plan(context.Background())
	require.NoError(t, err)

	comp := &recordingCompressor{}
	stats, err := NewExecutor(opts, comp, testLogger(t)).Execute(context.Background(), plan)
	require.NoError(t, err)

	for _, p := range plan.Delete {
		assert.FileExists(t, p)
	}
	assert.Empty(t, comp.calls)

	assert.True(t, stats.DryRun)
	assert.Equal(t, 8, stats.FilesToDelete)
	assert.Zero(t, stats.Deleted)
	assert.Equal(t, int64(6*frameSize+2*miniSize), stats.SizeToDelete)
	// Four frames plus the thumbnails of 12:03 and 2018-12-20 06:00.
	assert.Equal(t, 6, stats.FilesToCompress)
	assert.Equal(t, int64(4*frameSize+2*miniSize), stats.SizeBeforeCompress)
	assert.Equal(t, int64(float64(4*frameSize+2*miniSize)*0.5), stats.CompressionSaved())
}

func TestExecuteDeletesAndCompresses(t *testing.T) {
	base := buildTree(t)
	opts := Options{BaseDir: base, Delete: true, OnePerHour: true, CompressQuality: 80, Workers: 2}
	plan, err := newPlanner(t, opts).Plan(context.Background())
	require.NoError(t, err)

	comp := &recordingCompressor{}
	stats, err := NewExecutor(opts, comp, testLogger(t)).Execute(context.Background(), plan)
	require.NoError(t, err)

	for _, p := range plan.Delete {
		assert.NoFileExists(t, p)
	}
	for _, p := range plan.Compress {
		assert.FileExists(t, p)
	}
	assert.Equal(t, len(plan.Delete), stats.Deleted)

	assert.Equal(t, []string{
		"2018/03/15/20180315120300.jpg",
		"2018/03/15/20180315140000.jpg",
		"2018/03/15/mini/20180315120300.jpg",
		"2018/06/10/20180610030000.jpg",
		"2018/12/20/20181220060000.jpg",
		"2018/12/20/mini/20181220060000.jpg",
	}, rel(t, base, comp.sorted()))

	assert.Equal(t, 6, stats.FilesToCompress)
	assert.Equal(t, int64(4*frameSize+2*miniSize), stats.SizeBeforeCompress)
	assert.Equal(t, int64(4*frameSize/2+2*miniSize/2), stats.SizeAfterCompress)
	assert.Len(t, stats.Ratios, 6)
	assert.Equal(t, stats.SizeToDelete+stats.CompressionSaved(), stats.TotalSaved())
}

func TestExecuteCollectsFailures(t *testing.T) {
	base := buildTree(t)
	opts := Options{BaseDir: base, Delete: true, CompressQuality: 80, Workers: 1}
	plan, err := newPlanner(t, opts).Plan(context.Background())
	require.NoError(t, err)

	// A file that disappears between planning and execution.
	require.NoError(t, os.Remove(plan.Delete[0]))

	comp := &recordingCompressor{fail: map[string]bool{"20180315120300.jpg": true}}
	stats, err := NewExecutor(opts, comp, testLogger(t)).Execute(context.Background(), plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot compress")

	assert.Equal(t, len(plan.Delete)-1, stats.Deleted)
	// The failing frame's thumbnail is left alone; everything else went through.
	assert.NotContains(t, comp.sorted(), filepath.Join(base, "2018/03/15/mini/20180315120300.jpg"))
	assert.Equal(t, 7, stats.FilesToCompress)
}

func TestStatsSummary(t *testing.T) {
	dry := &Stats{DryRun: true, Compressing: true, TotalFiles: 10, FilesToDelete: 4, SizeToDelete: 2048, FilesToCompress: 2, SizeBeforeCompress: 4096}
	var buf bytes.Buffer
	dry.WriteSummary(&buf)
	out := buf.String()
	assert.Contains(t, out, "Mode: DRY RUN")
	assert.Contains(t, out, "Total files examined: 10")
	assert.Contains(t, out, "Space to free: 2.0 KiB")
	assert.Contains(t, out, "Estimated space to save via compression: 2.0 KiB")
	assert.Contains(t, out, "Total estimated space savings: 4.0 KiB")
	assert.Contains(t, out, "-delete")

	done := &Stats{Compressing: true, SizeToDelete: 1024, SizeBeforeCompress: 3000, SizeAfterCompress: 1000, Ratios: []float64{0.25, 0.5}}
	buf.Reset()
	done.WriteSummary(&buf)
	out = buf.String()
	assert.Contains(t, out, "Mode: DELETE MODE")
	assert.Contains(t, out, "Space saved via compression")
	assert.Contains(t, out, "mean 0.38")
	assert.False(t, strings.Contains(out, "-delete"))
	assert.Equal(t, int64(3024), done.TotalSaved())

	noCompress := &Stats{SizeToDelete: 5}
	assert.Equal(t, int64(5), noCompress.TotalSaved())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"defaults", Options{MinAgeYears: 5}, ""},
		{"year filter", Options{YearFilter: "2018/03"}, ""},
		{"year filter no slash", Options{YearFilter: "201803"}, "YYYY/MM"},
		{"year filter letters", Options{YearFilter: "20a8/03"}, "YYYY/MM"},
		{"year filter month 13", Options{YearFilter: "2018/13"}, "invalid month"},
		{"quality low", Options{CompressQuality: -1}, "between 1 and 100"},
		{"quality high", Options{CompressQuality: 101}, "between 1 and 100"},
		{"quality ok", Options{CompressQuality: 100}, ""},
		{"negative age", Options{MinAgeYears: -1}, "min age"},
		{"negative workers", Options{Workers: -2}, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
