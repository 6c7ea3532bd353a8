package database

import (
	"time"
)

type Release struct {
	ID        string // Content hash of title and link
	Title     string
	Summary   string
	Content   string
	Link      string
	Timestamp time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
