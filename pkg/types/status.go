package types

import "time"

// Status is the daemon's view of the status line.
// This struct is shared between the daemon and client packages.
type Status struct {
	// Line is the last line written to the display, empty before the first
	// write.
	Line    string     `json:"line"`
	Emitted bool       `json:"emitted"`
	Fields  []Field    `json:"fields"`
	Writes  WriteStats `json:"writes"`
	Started time.Time  `json:"started"`
}

// Field is one category of the status line.
type Field struct {
	Category string    `json:"category"`
	Text     string    `json:"text"`
	Display  string    `json:"display"`
	Stale    bool      `json:"stale"`
	Error    string    `json:"error,omitempty"`
	Updated  time.Time `json:"updated,omitempty"`
	Failed   time.Time `json:"failed,omitempty"`
}

// WriteStats counts writes to the display.
type WriteStats struct {
	Written    uint64 `json:"written"`
	Suppressed uint64 `json:"suppressed"`
	Failed     uint64 `json:"failed"`
}

// Version identifies a daemon build.
type Version struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
}
