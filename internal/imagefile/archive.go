package imagefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ErrNoFrames is returned when a search finds no frame at all.
var ErrNoFrames = errors.New("no frames found")

// Frame is one frame found on disk.
type Frame struct {
	Path  string
	Mini  string // empty when the frame has no thumbnail
	Taken time.Time
	Size  int64
}

// ListDay returns the frames in the day directory for day, oldest first.
// Files whose names carry no timestamp are left out.
func ListDay(root string, day time.Time, loc *time.Location) ([]Frame, error) {
	dir := DayDir(root, day)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var frames []Frame
	for _, e := range entries {
		if e.IsDir() || !IsFrame(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		taken, err := ParseTimestamp(path, loc)
		if err != nil {
			continue
		}
		f := Frame{Path: path, Taken: taken}
		if info, err := e.Info(); err == nil {
			f.Size = info.Size()
		}
		if mini := MiniPath(path); fileExists(mini) {
			f.Mini = mini
		}
		frames = append(frames, f)
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Taken.Before(frames[j].Taken) })
	return frames, nil
}

// DaysWithFrames returns midnight of every day in year/month that holds at
// least one frame.
func DaysWithFrames(root string, year int, month time.Month, loc *time.Location) ([]time.Time, error) {
	monthDir := filepath.Join(root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", int(month)))
	entries, err := os.ReadDir(monthDir)
	if err != nil {
		return nil, err
	}
	var days []time.Time
	for _, e := range entries {
		if !e.IsDir() || !IsTwoDigit(e.Name()) {
			continue
		}
		day, err := ParseDay(filepath.Join(monthDir, e.Name()), loc)
		if err != nil {
			continue
		}
		frames, err := ListDay(root, day, loc)
		if err != nil || len(frames) == 0 {
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// Latest returns the newest frame under root. Day directories are searched
// newest first and the search stops at the first one holding frames.
func Latest(root string, loc *time.Location) (Frame, error) {
	years, err := sortedDirs(root, IsYear)
	if err != nil {
		return Frame{}, err
	}
	for _, y := range years {
		months, err := sortedDirs(y, IsTwoDigit)
		if err != nil {
			continue
		}
		for _, m := range months {
			days, err := sortedDirs(m, IsTwoDigit)
			if err != nil {
				continue
			}
			for _, d := range days {
				day, err := ParseDay(d, loc)
				if err != nil {
					continue
				}
				frames, err := ListDay(root, day, loc)
				if err != nil || len(frames) == 0 {
					continue
				}
				return frames[len(frames)-1], nil
			}
		}
	}
	return Frame{}, ErrNoFrames
}

// sortedDirs lists directories in dir passing keep, newest (highest name) first.
func sortedDirs(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsDir() && keep(entries[i].Name()) {
			out = append(out, filepath.Join(dir, entries[i].Name()))
		}
	}
	return out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsNotExist reports whether err means a directory or file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
