package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AdminNotifier is the subset of mail notifications admin handlers trigger.
type AdminNotifier interface {
	StatusChanged(t *models.Ticket)
}

// AdminController handles the admin-only ticket operations. Role enforcement
// happens in the route group middleware.
type AdminController struct {
	tickets  services.TicketService
	notifier AdminNotifier
}

func NewAdminController(tickets services.TicketService, notifier AdminNotifier) *AdminController {
	return &AdminController{tickets: tickets, notifier: notifier}
}

// UpdateStatus godoc
// @Summary Update ticket status
// @Description Admin sets a ticket to Open, In Progress or Solved; the owner is notified
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body object true "status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/admin/tickets/{id}/status [put]
func (ac *AdminController) UpdateStatus(c *gin.Context) {
	ticketID, ok := parseTicketID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	ticket, err := ac.tickets.UpdateStatus(ticketID, req.Status)
	if errors.Is(err, services.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid status."))
		return
	}
	if err != nil {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrTicketNotFound, "Ticket not found"))
		return
	}

	ac.notifier.StatusChanged(ticket)

	log.WithFields(log.Fields{"ticket_id": ticket.ID, "status": ticket.Status}).
		Info("Ticket status updated")
	c.JSON(http.StatusOK, gin.H{"message": "Ticket status updated.", "ticket": ticket})
}

// UpdateAssignee godoc
// @Summary Assign a ticket
// @Description Admin sets the free-text assignee on a ticket
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body object true "assigned_to"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security SessionCookie
// @Router /api/v1/admin/tickets/{id}/assignee [put]
func (ac *AdminController) UpdateAssignee(c *gin.Context) {
	ticketID, ok := parseTicketID(c)
	if !ok {
		return
	}

	var req struct {
		AssignedTo string `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	ticket, err := ac.tickets.Assign(ticketID, strings.TrimSpace(req.AssignedTo))
	if err != nil {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrTicketNotFound, "Ticket not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket assigned.",
		"ticket":  ticket,
	})
}

func parseTicketID(c *gin.Context) (uint, bool) {
	id, existID := c.Params.Get("id")
	if !existID {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid ticket ID"))
		return 0, false
	}
	ticketID, err := strconv.Atoi(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid ticket ID format"))
		return 0, false
	}
	return uint(ticketID), true
}
