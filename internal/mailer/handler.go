package mailer

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SendEmail handles POST /api/send-email.
func (h *Handler) SendEmail(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id, err := h.service.Deliver(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"id": id},
		})
	case errors.Is(err, ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email type"})
	case errors.Is(err, ErrMissingEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
	case errors.Is(err, ErrInvalidData):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[ERROR] mailer: %s email to %s failed: %v", req.Type, req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
	}
}
