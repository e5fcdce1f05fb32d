package models

import (
	"time"
)

// Ticket priorities. The labels double as the SLA tier names shown to users.
const (
	PriorityUrgent      = "Urgent"
	PrioritySevenDays   = "7 Days"
	PriorityFifteenDays = "15 Days"
)

// Ticket statuses
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusSolved     = "Solved"
	StatusClosed     = "Closed"
)

// PendingStatuses are the statuses still counted against the SLA.
var PendingStatuses = []string{StatusOpen, StatusInProgress, StatusSolved}

type Ticket struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StaffID uint `gorm:"not null;index" json:"staff_id"`

	PracticeName string `gorm:"not null" json:"practice_name"`
	ProviderName string `gorm:"not null" json:"provider_name"`
	Subject      string `gorm:"not null" json:"subject"`
	Description  string `gorm:"not null;type:text" json:"description"`

	Priority           string `gorm:"not null" json:"priority"`
	Status             string `gorm:"default:'Open'" json:"status"`
	AttachmentFilename string `json:"attachment_filename,omitempty"`

	AssignedTo string `gorm:"default:''" json:"assigned_to"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DueTime   time.Time `gorm:"not null" json:"due_time"`

	Staff    User      `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Comments []Comment `gorm:"foreignKey:TicketID" json:"comments,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// ValidPriority reports whether p is one of the known SLA tiers.
func ValidPriority(p string) bool {
	switch p {
	case PriorityUrgent, PrioritySevenDays, PriorityFifteenDays:
		return true
	}
	return false
}

// DueTimeFor computes the SLA deadline for a priority relative to now.
// Unknown priorities fall back to the seven-day tier.
func DueTimeFor(priority string, now time.Time) time.Time {
	switch priority {
	case PriorityUrgent:
		return now.Add(2 * time.Hour)
	case PrioritySevenDays:
		return now.Add(7 * 24 * time.Hour)
	case PriorityFifteenDays:
		return now.Add(15 * 24 * time.Hour)
	}
	return now.Add(7 * 24 * time.Hour)
}

// Overdue reports whether the ticket has passed its deadline and is still pending.
func (t *Ticket) Overdue(now time.Time) bool {
	return t.Status != StatusClosed && t.DueTime.Before(now)
}
