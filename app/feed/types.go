package feed

import (
	"time"
)

// Entry is a single feed entry as delivered by the feed parser. Empty
// strings and a nil Updated mean the field was missing.
type Entry struct {
	Title      string
	Link       string
	Content    string // raw HTML
	Updated    *time.Time
	Categories []string
}

// Release is one processed release announcement. It is never mutated after
// the assembler builds it.
type Release struct {
	Title     string    `json:"title" yaml:"title"`
	Summary   string    `json:"summary" yaml:"summary"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Link      string    `json:"link,omitempty" yaml:"link,omitempty"`
}
