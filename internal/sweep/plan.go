package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"cloudeng.io/errors"
	"go.uber.org/zap"

	"github.com/lilleviklofoten/webcamsweep/internal/imagefile"
	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

// Plan lists what a sweep will do. Delete holds frames and their thumbnails;
// Compress holds frames only, their thumbnails follow them.
type Plan struct {
	Delete   []string
	Compress []string

	Days      int
	Examined  int
	Unparsed  int
	Displayed int
	Regimes   map[solar.Regime]int
}

// Planner decides, one day directory at a time, which frames fall outside
// the display window.
type Planner struct {
	opts    Options
	calc    *solar.Calculator
	zone    *time.Location
	logger  *zap.SugaredLogger
	windows map[string]solar.Window
}

// NewPlanner returns a planner that judges frames with calc.
func NewPlanner(calc *solar.Calculator, opts Options, logger *zap.SugaredLogger) *Planner {
	return &Planner{
		opts:    opts,
		calc:    calc,
		zone:    calc.Config().Zone,
		logger:  logger,
		windows: make(map[string]solar.Window),
	}
}

// Plan walks the image tree. Unreadable directories and unparsable names
// are logged and skipped; their errors are returned together with the plan.
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	plan := &Plan{Regimes: make(map[solar.Regime]int)}
	errs := &errors.M{}

	dirs, err := p.dayDirs(errs)
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return plan, err
		}
		if err := p.planDay(dir, plan); err != nil {
			p.logger.Warnw("skipping day directory", "dir", dir, "error", err)
			errs.Append(err)
		}
	}
	return plan, errs.Err()
}

// Window returns the display window for day, computing it at most once.
func (p *Planner) Window(day time.Time) solar.Window {
	key := day.Format(time.DateOnly)
	if w, ok := p.windows[key]; ok {
		return w
	}
	w := p.calc.Window(day)
	p.windows[key] = w
	return w
}

func (p *Planner) dayDirs(errs *errors.M) ([]string, error) {
	if p.opts.YearFilter != "" {
		year, month, err := ParseYearFilter(p.opts.YearFilter)
		if err != nil {
			return nil, err
		}
		monthDir := filepath.Join(p.opts.BaseDir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
		days, err := subdirs(monthDir, imagefile.IsTwoDigit)
		if err != nil {
			p.logger.Warnw("year filter matches nothing", "dir", monthDir, "error", err)
			errs.Append(err)
		}
		return days, nil
	}

	years, err := subdirs(p.opts.BaseDir, imagefile.IsYear)
	if err != nil {
		return nil, fmt.Errorf("reading base directory: %w", err)
	}

	cutoff := p.opts.now().Year() - p.opts.MinAgeYears
	var days []string
	for _, yearDir := range years {
		year, _ := strconv.Atoi(filepath.Base(yearDir))
		if year > cutoff {
			p.logger.Debugw("year too recent", "year", year, "cutoff", cutoff)
			continue
		}
		months, err := subdirs(yearDir, imagefile.IsTwoDigit)
		if err != nil {
			errs.Append(err)
			continue
		}
		for _, monthDir := range months {
			d, err := subdirs(monthDir, imagefile.IsTwoDigit)
			if err != nil {
				errs.Append(err)
				continue
			}
			days = append(days, d...)
		}
	}
	return days, nil
}

// subdirs lists the directories in dir whose names pass keep, in name order.
func subdirs(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && keep(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

type frame struct {
	path  string
	taken time.Time
}

func (p *Planner) planDay(dir string, plan *Plan) error {
	day, err := imagefile.ParseDay(dir, p.zone)
	if err != nil {
		p.logger.Debugw("not a day directory", "dir", dir, "error", err)
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	w := p.Window(day)
	plan.Days++
	plan.Regimes[w.Regime]++
	p.logger.Debugw("day window", "day", day.Format(time.DateOnly), "regime", w.Regime,
		"dawn", w.Dawn.Format(time.TimeOnly), "dusk", w.Dusk.Format(time.TimeOnly))

	var shown []frame
	for _, e := range entries {
		if e.IsDir() || !imagefile.IsFrame(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		plan.Examined++

		taken, err := imagefile.CaptureTime(path, p.zone, p.opts.ExifFallback)
		if err != nil {
			plan.Unparsed++
			p.logger.Debugw("skipping frame", "path", path, "error", err)
			continue
		}
		if !w.Contains(taken) {
			p.markDelete(plan, path)
			continue
		}
		shown = append(shown, frame{path: path, taken: taken})
	}
	plan.Displayed += len(shown)

	if !p.opts.OnePerHour {
		if p.opts.Compressing() {
			for _, f := range shown {
				plan.Compress = append(plan.Compress, f.path)
			}
		}
		return nil
	}

	for _, hour := range groupByHour(shown) {
		keep := closestToHour(hour)
		for i, f := range hour {
			if i == keep {
				if p.opts.Compressing() {
					plan.Compress = append(plan.Compress, f.path)
				}
				continue
			}
			p.markDelete(plan, f.path)
		}
	}
	return nil
}

// markDelete schedules path and, when present, its thumbnail.
func (p *Planner) markDelete(plan *Plan, path string) {
	plan.Delete = append(plan.Delete, path)
	mini := imagefile.MiniPath(path)
	if _, err := os.Stat(mini); err == nil {
		plan.Delete = append(plan.Delete, mini)
	}
}

func hourOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// groupByHour buckets frames by the clock hour they were taken in. Buckets
// come back in chronological order with frames in name order.
func groupByHour(frames []frame) [][]frame {
	byHour := make(map[int64][]frame)
	var hours []int64
	for _, f := range frames {
		h := hourOf(f.taken).Unix()
		if _, ok := byHour[h]; !ok {
			hours = append(hours, h)
		}
		byHour[h] = append(byHour[h], f)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })
	out := make([][]frame, len(hours))
	for i, h := range hours {
		out[i] = byHour[h]
	}
	return out
}

// closestToHour returns the index of the frame nearest its whole hour. The
// first one wins a tie.
func closestToHour(frames []frame) int {
	best := 0
	bestDist := time.Duration(-1)
	for i, f := range frames {
		d := f.taken.Sub(hourOf(f.taken))
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
