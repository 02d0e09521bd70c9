package entity

import "time"

type Constraint struct {
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Impact    string    `json:"impact"`
	CreatedAt time.Time `json:"created_at"`
}
