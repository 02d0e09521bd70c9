package entity

import "time"

type Decision struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
