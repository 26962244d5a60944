// Package state holds the composite status: the latest known-good text of
// every category, and whether that category is currently failing.
package state

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Category is one field of the status line.
type Category int

const (
	Network Category = iota
	Volume
	Date
	Battery

	numCategories
)

// Categories lists every category in the default display order.
var Categories = []Category{Network, Volume, Date, Battery}

var categoryNames = [numCategories]string{
	Network: "network",
	Volume:  "volume",
	Date:    "date",
	Battery: "battery",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory parses a category name such as "network".
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// Update is the outcome of one refresh of a category.
type Update struct {
	Category Category
	// Text replaces the cached text when Err is nil.
	Text string
	// Fallback is shown instead of the cached text while Err is set.
	Fallback string
	Err      error
	At       time.Time
}

// Entry is the cached state of one category.
type Entry struct {
	Text     string    `json:"text"`
	Fallback string    `json:"fallback,omitempty"`
	Err      error     `json:"-"`
	Stale    bool      `json:"stale"`
	Updated  time.Time `json:"updated"`
	Failed   time.Time `json:"failed,omitempty"`
}

// Filled reports whether the category ever had a value or a failure.
func (e Entry) Filled() bool {
	return !e.Updated.IsZero() || e.Stale
}

// Display is what the status line shows for this entry.
func (e Entry) Display() string {
	if e.Stale {
		return e.Fallback
	}
	return e.Text
}

// Snapshot is a point-in-time copy of every category.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Entries [numCategories]Entry
}

// Get returns the entry of category c.
func (s Snapshot) Get(c Category) Entry {
	if c < 0 || c >= numCategories {
		return Entry{}
	}
	return s.Entries[c]
}

// Cache is the composite state. Only its owner applies updates; any
// goroutine may take snapshots.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Apply applies a single update.
func (c *Cache) Apply(u Update) {
	c.ApplyAll([]Update{u})
}

// ApplyAll applies a batch of updates under one lock, so readers see
// either none or all of them.
func (c *Cache) ApplyAll(updates []Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range updates {
		if u.Category < 0 || u.Category >= numCategories {
			continue
		}
		e := &c.snap.Entries[u.Category]
		if u.Err != nil {
			// Keep the last good text around; only the display changes.
			e.Err = u.Err
			e.Fallback = u.Fallback
			e.Stale = true
			e.Failed = u.At
			continue
		}
		e.Text = u.Text
		e.Err = nil
		e.Fallback = ""
		e.Stale = false
		e.Updated = u.At
	}
}

// Snapshot returns a copy of the current state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
