package domain

import "time"

type ID string

type Task struct {
	ID          ID
	OwnerID     string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Stats struct {
	Total     int
	Completed int
}

func (s Stats) Pending() int {
	return s.Total - s.Completed
}
