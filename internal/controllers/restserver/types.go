package restserver

// WindowResponse is the display window for one date. Times are local
// HH:MM:SS strings on the requested date; the *TS fields are Unix seconds.
type WindowResponse struct {
	Date          string `json:"date"`
	Regime        string `json:"regime"`
	Dawn          string `json:"dawn"`
	Sunrise       string `json:"sunrise"`
	Sunset        string `json:"sunset"`
	Dusk          string `json:"dusk"`
	DawnTS        int64  `json:"dawn_ts"`
	DuskTS        int64  `json:"dusk_ts"`
	LengthSeconds int64  `json:"length_seconds"`
	Zone          string `json:"zone"`
}

// ImageEntry describes one frame. Path and Mini are URLs relative to the
// server root.
type ImageEntry struct {
	Path      string `json:"path"`
	Mini      string `json:"mini,omitempty"`
	Preview   string `json:"preview"`
	Timestamp int64  `json:"ts"`
	Time      string `json:"time"`
	Size      int64  `json:"size"`
}

// DayImagesResponse lists the frames shown for a day.
type DayImagesResponse struct {
	Window WindowResponse `json:"window"`
	Count  int            `json:"count"`
	Hidden int            `json:"hidden"`
	Images []ImageEntry   `json:"images"`
}

// MonthDaysResponse lists the days of a month that have frames.
type MonthDaysResponse struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Days  []string `json:"days"`
}

// LatestResponse is the newest frame in the archive.
type LatestResponse struct {
	Site  string     `json:"site,omitempty"`
	Date  string     `json:"date"`
	Image ImageEntry `json:"image"`
}
