// models/switch.go
package models

import "time"

const SwitchTable = "switches"
const CounterTable = "counters"

type Status string

const (
	StatusFaultyNotSent Status = "faulty_not_sent"
	StatusSentForFix    Status = "sent_for_fix"
	StatusFixed         Status = "fixed"
)

// Statuses lists every lifecycle status in display order.
var Statuses = []Status{StatusFaultyNotSent, StatusSentForFix, StatusFixed}

func (s Status) Valid() bool {
	switch s {
	case StatusFaultyNotSent, StatusSentForFix, StatusFixed:
		return true
	}
	return false
}

type DeliveredStatus string

const (
	Delivered    DeliveredStatus = "delivered"
	NotDelivered DeliveredStatus = "not_delivered"
)

func (d DeliveredStatus) Valid() bool {
	return d == Delivered || d == NotDelivered
}

// Switch is one physical device's current repair record.
// Serial columns always hold uppercase values.
type Switch struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UniqueKey int64  `gorm:"uniqueIndex;not null" json:"uniqueKey"`
	Status    Status `gorm:"size:20;not null;default:'faulty_not_sent';index" json:"status"`

	DeliveredStatus *DeliveredStatus `gorm:"size:20" json:"deliveredStatus,omitempty"`

	Provider string `gorm:"size:120" json:"provider,omitempty"`
	Model    string `gorm:"size:120" json:"model,omitempty"`
	Notes    string `gorm:"type:text" json:"notes,omitempty"`

	SerialNumber    string `gorm:"size:120;index" json:"serialNumber,omitempty"`
	OldSerialNumber string `gorm:"size:120;index" json:"oldSerialNumber,omitempty"`
	NewSerialNumber string `gorm:"size:120;index" json:"newSerialNumber,omitempty"`
	OldModel        string `gorm:"size:120" json:"oldModel,omitempty"`
	NewModel        string `gorm:"size:120" json:"newModel,omitempty"`

	DateSent *time.Time `json:"dateSent,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Switch) TableName() string { return SwitchTable }

// Delivery returns the delivered sub-state, or "" when absent.
func (s *Switch) Delivery() DeliveredStatus {
	if s.DeliveredStatus == nil {
		return ""
	}
	return *s.DeliveredStatus
}

// Resolved reports whether the record's serial claim is released.
func (s *Switch) Resolved() bool {
	return s.Status == StatusFixed && s.Delivery() == Delivered
}

// Counter is a named, monotonically increasing sequence.
type Counter struct {
	Name string `gorm:"primaryKey;size:64"`
	Seq  int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string { return CounterTable }
