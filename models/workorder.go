package models

import (
	"time"

	"github.com/google/uuid"
)

type WorkOrderStatus string

const (
	WorkOrderDraft     WorkOrderStatus = "DRAFT"
	WorkOrderCompleted WorkOrderStatus = "COMPLETED"
)

// WorkOrder is a field-inspection visit to one station. StationName is a
// snapshot taken when the draft is created, not a live reference. TestTags is
// an ordered set of test-type codes: a code is appended the first time its
// sub-form is opened and never duplicated.
type WorkOrder struct {
	ID           uuid.UUID       `json:"id"`
	StationID    uuid.UUID       `json:"station_id"`
	StationName  string          `json:"station_name"`
	Date         string          `json:"date"`
	Observations string          `json:"observations"`
	Status       WorkOrderStatus `json:"status"`
	TestTags     []string        `json:"test_tags"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// AddTestTag appends a test code unless it is already recorded and reports
// whether it was added.
func (w *WorkOrder) AddTestTag(code string) bool {
	if w.HasTestTag(code) {
		return false
	}
	w.TestTags = append(w.TestTags, code)
	return true
}

func (w *WorkOrder) HasTestTag(code string) bool {
	for _, t := range w.TestTags {
		if t == code {
			return true
		}
	}
	return false
}
