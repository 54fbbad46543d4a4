package workorder

import (
	"strings"
	"time"
)

// Conventional status values. Stored as free text: the edit form offers
// these, but any non-empty string a client sends is kept as-is.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusClosed     = "Closed"
)

// Statuses is the set offered by the create/edit forms.
var Statuses = []string{StatusOpen, StatusInProgress, StatusClosed}

// WorkOrder is the work_orders table GORM model: one customer repair
// request. Timestamps are managed by the service layer, not by GORM
// auto-tracking, so every store backend behaves identically.
type WorkOrder struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	CustomerName string    `gorm:"size:120;not null"`
	Vehicle      string    `gorm:"size:120;not null"` // e.g. "2013 Infiniti G37S"
	Complaint    string    `gorm:"type:text;not null"`
	Status       string    `gorm:"size:40;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

// Matches reports whether the query appears, case-insensitively, in any of
// the searchable fields. An empty query matches everything.
func (w WorkOrder) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{w.CustomerName, w.Vehicle, w.Status, w.Complaint} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
