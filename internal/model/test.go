package model

// Test is a global catalog item independent of any lab.
type Test struct {
	Base
	Name            string `json:"name" db:"name"`
	Category        string `json:"category" db:"category"`
	Description     string `json:"description,omitempty" db:"description"`
	Price           int64  `json:"price" db:"price"`
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`
}
