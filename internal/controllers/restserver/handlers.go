package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lilleviklofoten/webcamsweep/internal/imagefile"
	"github.com/lilleviklofoten/webcamsweep/internal/log"
	"github.com/lilleviklofoten/webcamsweep/pkg/responseformat"
	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

// Windows never change for a past date; an hour keeps today's answer fresh
// enough after a configuration change.
const windowCacheSeconds = 3600

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// GetWindow handles /window/{date} with date as YYYY-MM-DD
func (h *Handlers) GetWindow(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	date, err := time.ParseInLocation(time.DateOnly, vars["date"], h.controller.Zone)
	if err != nil {
		log.Debugf("invalid request: unable to parse date: %v", vars["date"])
		h.writeError(w, req, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	resp := h.windowResponse(h.controller.Calculator.Window(date))
	h.write(w, req, resp, map[string]string{"Cache-Control": fmt.Sprintf("max-age=%d", windowCacheSeconds)})
}

// GetDayImages handles /images/{year}/{month}/{day}: the frames shown on the
// site for that day, oldest first. An optional hour=HH narrows the list.
func (h *Handlers) GetDayImages(w http.ResponseWriter, req *http.Request) {
	day, ok := h.dayFromVars(w, req)
	if !ok {
		return
	}

	hour := -1
	if hs := req.URL.Query().Get("hour"); hs != "" {
		var err error
		hour, err = strconv.Atoi(hs)
		if err != nil || hour < 0 || hour > 23 {
			h.writeError(w, req, http.StatusBadRequest, "hour must be between 0 and 23")
			return
		}
	}

	frames, err := imagefile.ListDay(h.controller.BaseDir, day, h.controller.Zone)
	if err != nil {
		if imagefile.IsNotExist(err) {
			h.writeError(w, req, http.StatusNotFound, "no images for "+day.Format(time.DateOnly))
			return
		}
		log.Errorf("error listing %s: %v", day.Format(time.DateOnly), err)
		h.writeError(w, req, http.StatusInternalServerError, "error listing images")
		return
	}

	window := h.controller.Calculator.Window(day)
	resp := DayImagesResponse{
		Window: h.windowResponse(window),
		Images: []ImageEntry{},
	}
	for _, f := range frames {
		if !window.Contains(f.Taken) {
			resp.Hidden++
			continue
		}
		if hour >= 0 && f.Taken.Hour() != hour {
			continue
		}
		resp.Images = append(resp.Images, h.imageEntry(f))
	}
	resp.Count = len(resp.Images)

	h.write(w, req, resp, map[string]string{"Cache-Control": "max-age=60"})
}

// GetMonthDays handles /days/{year}/{month}
func (h *Handlers) GetMonthDays(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	year, _ := strconv.Atoi(vars["year"])
	month, _ := strconv.Atoi(vars["month"])
	if month < 1 || month > 12 {
		h.writeError(w, req, http.StatusBadRequest, "invalid month")
		return
	}

	days, err := imagefile.DaysWithFrames(h.controller.BaseDir, year, time.Month(month), h.controller.Zone)
	if err != nil {
		if imagefile.IsNotExist(err) {
			h.writeError(w, req, http.StatusNotFound, fmt.Sprintf("no images for %04d-%02d", year, month))
			return
		}
		log.Errorf("error listing %04d/%02d: %v", year, month, err)
		h.writeError(w, req, http.StatusInternalServerError, "error listing days")
		return
	}

	resp := MonthDaysResponse{Year: year, Month: month, Days: make([]string, 0, len(days))}
	for _, d := range days {
		resp.Days = append(resp.Days, d.Format(time.DateOnly))
	}
	h.write(w, req, resp, map[string]string{"Cache-Control": "max-age=300"})
}

// GetLatest handles /latest
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	f, err := imagefile.Latest(h.controller.BaseDir, h.controller.Zone)
	if err != nil {
		if errors.Is(err, imagefile.ErrNoFrames) || imagefile.IsNotExist(err) {
			h.writeError(w, req, http.StatusNotFound, "no images found")
			return
		}
		log.Errorf("error finding latest image: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "error finding latest image")
		return
	}

	resp := LatestResponse{
		Site:  h.controller.SiteName,
		Date:  f.Taken.Format(time.DateOnly),
		Image: h.imageEntry(f),
	}
	h.write(w, req, resp, map[string]string{"Cache-Control": "no-cache"})
}

func (h *Handlers) dayFromVars(w http.ResponseWriter, req *http.Request) (time.Time, bool) {
	vars := mux.Vars(req)
	s := vars["year"] + "-" + vars["month"] + "-" + vars["day"]
	day, err := time.ParseInLocation(time.DateOnly, s, h.controller.Zone)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, "invalid date "+s)
		return time.Time{}, false
	}
	return day, true
}

func (h *Handlers) windowResponse(win solar.Window) WindowResponse {
	zone, _ := win.Date.Zone()
	return WindowResponse{
		Date:          win.Date.Format(time.DateOnly),
		Regime:        win.Regime.String(),
		Dawn:          win.Dawn.Format(time.TimeOnly),
		Sunrise:       win.Sunrise.Format(time.TimeOnly),
		Sunset:        win.Sunset.Format(time.TimeOnly),
		Dusk:          win.Dusk.Format(time.TimeOnly),
		DawnTS:        win.Dawn.Unix(),
		DuskTS:        win.Dusk.Unix(),
		LengthSeconds: int64(win.Length().Seconds()),
		Zone:          zone,
	}
}

// imageEntry converts a frame into URLs under FramesPrefix. The preview is
// the thumbnail when one exists.
func (h *Handlers) imageEntry(f imagefile.Frame) ImageEntry {
	e := ImageEntry{
		Path:      h.frameURL(f.Path),
		Timestamp: f.Taken.Unix(),
		Time:      f.Taken.Format(time.TimeOnly),
		Size:      f.Size,
	}
	e.Preview = e.Path
	if f.Mini != "" {
		e.Mini = h.frameURL(f.Mini)
		e.Preview = e.Mini
	}
	return e
}

func (h *Handlers) frameURL(p string) string {
	rel, err := filepath.Rel(h.controller.BaseDir, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	return path.Join(FramesPrefix, filepath.ToSlash(rel))
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) {
	if err := h.formatter.WriteResponse(w, req, data, headers); err != nil {
		log.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	if err := h.formatter.WriteError(w, req, status, msg); err != nil {
		log.Errorf("error encoding error response for %s: %v", req.URL.Path, err)
	}
}
