package entity

import "time"

type Risk struct {
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Mitigation  string    `json:"mitigation"`
	CreatedAt   time.Time `json:"created_at"`
}
