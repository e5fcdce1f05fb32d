package services

import (
	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"gorm.io/gorm"
)

type CommentService interface {
	AddComment(comment *models.Comment) error
	GetCommentsByTicketID(ticketID uint) ([]models.Comment, error)
}

type commentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) CommentService {
	return &commentService{db: db}
}

func (s *commentService) AddComment(comment *models.Comment) error {
	return s.db.Create(comment).Error
}

func (s *commentService) GetCommentsByTicketID(ticketID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.Preload("User").
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
