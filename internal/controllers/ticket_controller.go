package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/middleware"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/uploads"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// TicketNotifier is the subset of mail notifications ticket handlers trigger.
type TicketNotifier interface {
	TicketCreated(t *models.Ticket, staff *models.User)
	TicketClosed(t *models.Ticket, by *models.User)
	TicketReopened(t *models.Ticket, by *models.User)
}

// TicketController handles HTTP requests related to tickets
type TicketController interface {
	// ListTickets lists tickets visible to the caller with dashboard stats
	ListTickets(c *gin.Context)
	// CreateTicket accepts the multipart ticket form with optional attachment
	CreateTicket(c *gin.Context)
	// GetTicket retrieves one ticket with comments
	GetTicket(c *gin.Context)
	// DownloadAttachment streams the ticket attachment
	DownloadAttachment(c *gin.Context)
	// AddComment posts a comment on a ticket
	AddComment(c *gin.Context)
	// StaffAction applies the owner's approve_close / reopen action
	StaffAction(c *gin.Context)
}

type ticketController struct {
	tickets  services.TicketService
	comments services.CommentService
	store    *uploads.Store
	notifier TicketNotifier
	location *time.Location
}

// NewTicketController creates a new instance of TicketController
func NewTicketController(tickets services.TicketService, comments services.CommentService,
	store *uploads.Store, notifier TicketNotifier, location *time.Location) TicketController {
	return &ticketController{
		tickets:  tickets,
		comments: comments,
		store:    store,
		notifier: notifier,
		location: location,
	}
}

// ListTickets godoc
// @Summary List tickets
// @Description Staff see their own tickets, admins see all; optional status filter; includes dashboard stats
// @Tags tickets
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/tickets [get]
func (tc *ticketController) ListTickets(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return
	}

	status := c.Query("status")
	if status == "All" {
		status = ""
	}

	// Admins see every ticket; staff only their own.
	staffID := user.ID
	if user.IsAdmin() {
		staffID = 0
	}

	tickets, err := tc.tickets.ListTickets(staffID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve tickets"))
		return
	}

	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"tickets": tc.renderTickets(tickets),
		"stats":   tc.tickets.Stats(tickets, now),
		"now":     now.In(tc.location),
	})
}

// CreateTicket godoc
// @Summary Create a ticket
// @Description Staff submit a new credentialing ticket (multipart form, optional attachment)
// @Tags tickets
// @Accept mpfd
// @Produce json
// @Param practice_name formData string true "Practice name"
// @Param provider_name formData string true "Provider name"
// @Param subject formData string true "Subject"
// @Param description formData string true "Description"
// @Param priority formData string true "Urgent | 7 Days | 15 Days"
// @Param attachment formData file false "Attachment"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/tickets [post]
func (tc *ticketController) CreateTicket(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return
	}
	if user.IsAdmin() {
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Only staff can create tickets."))
		return
	}

	practiceName := strings.TrimSpace(c.PostForm("practice_name"))
	providerName := strings.TrimSpace(c.PostForm("provider_name"))
	subject := strings.TrimSpace(c.PostForm("subject"))
	description := strings.TrimSpace(c.PostForm("description"))
	priority := strings.TrimSpace(c.PostForm("priority"))

	if practiceName == "" || providerName == "" || subject == "" || description == "" || priority == "" {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrTicketInvalidData,
			"All fields including priority are required."))
		return
	}
	if !models.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrTicketInvalidData,
			"Priority must be one of: Urgent, 7 Days, 15 Days."))
		return
	}

	var storedName string
	if fileHeader, err := c.FormFile("attachment"); err == nil && fileHeader.Filename != "" {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Failed to read attachment"))
			return
		}
		defer file.Close()

		storedName, err = tc.store.Save(fileHeader.Filename, file)
		if errors.Is(err, uploads.ErrTypeNotAllowed) {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrAttachmentType, "Invalid attachment type."))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to store attachment"))
			return
		}
	}

	ticket := &models.Ticket{
		StaffID:            user.ID,
		PracticeName:       practiceName,
		ProviderName:       providerName,
		Subject:            subject,
		Description:        description,
		Priority:           priority,
		AttachmentFilename: storedName,
	}

	if err := tc.tickets.CreateTicket(ticket); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to create ticket"))
		return
	}

	tc.notifier.TicketCreated(ticket, user)

	log.WithFields(log.Fields{"ticket_id": ticket.ID, "staff_id": user.ID, "priority": priority}).
		Info("Ticket created")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket created successfully.",
		"ticket":  tc.renderTicket(*ticket),
	})
}

// GetTicket godoc
// @Summary Get a ticket
// @Description Retrieve a ticket with its comments; owner or admin only
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/tickets/{id} [get]
func (tc *ticketController) GetTicket(c *gin.Context) {
	ticket, _, ok := tc.loadVisibleTicket(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": tc.renderTicket(*ticket)})
}

// DownloadAttachment godoc
// @Summary Download a ticket attachment
// @Tags tickets
// @Produce octet-stream
// @Param id path int true "Ticket ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/tickets/{id}/attachment [get]
func (tc *ticketController) DownloadAttachment(c *gin.Context) {
	ticket, _, ok := tc.loadVisibleTicket(c)
	if !ok {
		return
	}

	if ticket.AttachmentFilename == "" {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrAttachmentMissing, "No attachment for this ticket."))
		return
	}

	path, err := tc.store.Path(ticket.AttachmentFilename)
	if err != nil {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrAttachmentMissing, "Attachment file is missing."))
		return
	}
	c.FileAttachment(path, ticket.AttachmentFilename)
}

// AddComment godoc
// @Summary Comment on a ticket
// @Description Two-way thread between staff and the credentialing team
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body object true "message"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/tickets/{id}/comments [post]
func (tc *ticketController) AddComment(c *gin.Context) {
	ticket, user, ok := tc.loadVisibleTicket(c)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrCommentEmpty, "Comment cannot be empty."))
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrCommentEmpty, "Comment cannot be empty."))
		return
	}

	comment := &models.Comment{
		TicketID: ticket.ID,
		UserID:   user.ID,
		Message:  message,
	}
	if err := tc.comments.AddComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to post comment"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment posted successfully.",
		"comment": comment,
	})
}

// StaffAction godoc
// @Summary Approve & close, or reopen a ticket
// @Description Owner-only transitions: approve_close (Open/In Progress/Solved -> Closed), reopen (Solved/Closed -> In Progress, due time recomputed)
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body object true "action: approve_close | reopen"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/tickets/{id}/actions [post]
func (tc *ticketController) StaffAction(c *gin.Context) {
	ticket, user, ok := tc.loadVisibleTicket(c)
	if !ok {
		return
	}

	// Admins update status through the admin endpoint, not staff actions.
	if user.IsAdmin() || ticket.StaffID != user.ID {
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Not authorized."))
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	switch req.Action {
	case "approve_close":
		if err := tc.tickets.Close(ticket); err != nil {
			c.JSON(http.StatusConflict, models.NewAPIError(models.ErrInvalidTransition,
				"Invalid action for current status."))
			return
		}
		tc.notifier.TicketClosed(ticket, user)
		c.JSON(http.StatusOK, gin.H{"message": "Ticket closed.", "ticket": tc.renderTicket(*ticket)})

	case "reopen":
		if err := tc.tickets.Reopen(ticket); err != nil {
			c.JSON(http.StatusConflict, models.NewAPIError(models.ErrInvalidTransition,
				"Invalid action for current status."))
			return
		}
		tc.notifier.TicketReopened(ticket, user)
		c.JSON(http.StatusOK, gin.H{"message": "Ticket reopened and set to In Progress.", "ticket": tc.renderTicket(*ticket)})

	default:
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Unknown action."))
	}
}

// loadVisibleTicket parses the id param, loads the ticket and enforces the
// owner-or-admin visibility rule, writing the error response itself.
func (tc *ticketController) loadVisibleTicket(c *gin.Context) (*models.Ticket, *models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return nil, nil, false
	}

	id, existID := c.Params.Get("id")
	if !existID {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid ticket ID"))
		return nil, nil, false
	}
	ticketID, err := strconv.Atoi(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid ticket ID format"))
		return nil, nil, false
	}

	ticket, err := tc.tickets.GetTicketByID(uint(ticketID))
	if err != nil {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrTicketNotFound, "Ticket not found"))
		return nil, nil, false
	}

	if !user.IsAdmin() && ticket.StaffID != user.ID {
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
			"You are not allowed to view this ticket."))
		return nil, nil, false
	}
	return ticket, user, true
}

// renderTicket shifts timestamps into the portal timezone for display.
func (tc *ticketController) renderTicket(t models.Ticket) models.Ticket {
	t.CreatedAt = t.CreatedAt.In(tc.location)
	t.UpdatedAt = t.UpdatedAt.In(tc.location)
	t.DueTime = t.DueTime.In(tc.location)
	for i := range t.Comments {
		t.Comments[i].CreatedAt = t.Comments[i].CreatedAt.In(tc.location)
	}
	return t
}

func (tc *ticketController) renderTickets(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = tc.renderTicket(t)
	}
	return out
}
