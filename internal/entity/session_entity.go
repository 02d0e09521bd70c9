package entity

import "time"

// Session is a live conversation bound to one project memory.
type Session struct {
	Id        string
	Memory    *Memory
	CreatedAt time.Time
}
