package services

import (
	"errors"
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
)

// TicketStats mirrors the dashboard summary cards.
type TicketStats struct {
	Total   int `json:"total"`
	Closed  int `json:"closed"`
	Overdue int `json:"overdue"`
}

// TicketService provides methods to interact with the ticket database
type TicketService interface {
	// CreateTicket persists a new ticket, stamping status and SLA deadline.
	CreateTicket(ticket *models.Ticket) error
	// GetTicketByID retrieves a ticket with its staff owner and comments.
	GetTicketByID(id uint) (*models.Ticket, error)
	// ListTickets returns tickets newest first. staffID 0 means all staff
	// (admin view); a non-empty status filters the result.
	ListTickets(staffID uint, status string) ([]models.Ticket, error)
	// Stats summarizes a ticket list for dashboard cards.
	Stats(tickets []models.Ticket, now time.Time) TicketStats
	// UpdateStatus is the admin transition to Open, In Progress or Solved.
	UpdateStatus(id uint, status string) (*models.Ticket, error)
	// Assign sets the free-text assignee on a ticket.
	Assign(id uint, assignee string) (*models.Ticket, error)
	// Close is the staff approval transition to Closed.
	Close(ticket *models.Ticket) error
	// Reopen moves a Solved or Closed ticket back to In Progress with a
	// fresh SLA deadline.
	Reopen(ticket *models.Ticket) error
	// FindOverdue returns pending tickets whose deadline passed before now.
	FindOverdue(now time.Time) ([]models.Ticket, error)
}

// ticketService is the implementation of the TicketService interface
type ticketService struct {
	db *gorm.DB
}

// NewTicketService creates a new instance of TicketService
func NewTicketService(db *gorm.DB) TicketService {
	return &ticketService{db: db}
}

func (s *ticketService) CreateTicket(ticket *models.Ticket) error {
	now := time.Now().UTC()
	ticket.Status = models.StatusOpen
	ticket.DueTime = models.DueTimeFor(ticket.Priority, now)
	return s.db.Create(ticket).Error
}

func (s *ticketService) GetTicketByID(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Preload("Staff").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *ticketService) ListTickets(staffID uint, status string) ([]models.Ticket, error) {
	query := s.db.Preload("Staff").Order("created_at DESC")
	if staffID != 0 {
		query = query.Where("staff_id = ?", staffID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *ticketService) Stats(tickets []models.Ticket, now time.Time) TicketStats {
	stats := TicketStats{Total: len(tickets)}
	for i := range tickets {
		if tickets[i].Status == models.StatusClosed {
			stats.Closed++
		}
		if tickets[i].Overdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

func (s *ticketService) UpdateStatus(id uint, status string) (*models.Ticket, error) {
	switch status {
	case models.StatusOpen, models.StatusInProgress, models.StatusSolved:
	default:
		return nil, ErrInvalidStatus
	}

	ticket, err := s.GetTicketByID(id)
	if err != nil {
		return nil, err
	}

	ticket.Status = status
	if err := s.db.Model(ticket).Update("status", status).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) Assign(id uint, assignee string) (*models.Ticket, error) {
	ticket, err := s.GetTicketByID(id)
	if err != nil {
		return nil, err
	}

	ticket.AssignedTo = assignee
	if err := s.db.Model(ticket).Update("assigned_to", assignee).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) Close(ticket *models.Ticket) error {
	switch ticket.Status {
	case models.StatusOpen, models.StatusInProgress, models.StatusSolved:
	default:
		return ErrInvalidTransition
	}

	ticket.Status = models.StatusClosed
	return s.db.Model(ticket).Update("status", models.StatusClosed).Error
}

func (s *ticketService) Reopen(ticket *models.Ticket) error {
	switch ticket.Status {
	case models.StatusSolved, models.StatusClosed:
	default:
		return ErrInvalidTransition
	}

	ticket.Status = models.StatusInProgress
	ticket.DueTime = models.DueTimeFor(ticket.Priority, time.Now().UTC())
	return s.db.Model(ticket).Updates(map[string]interface{}{
		"status":   ticket.Status,
		"due_time": ticket.DueTime,
	}).Error
}

func (s *ticketService) FindOverdue(now time.Time) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.Preload("Staff").
		Where("status IN ?", models.PendingStatuses).
		Where("due_time <= ?", now).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
