package handlers_messages

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"littlesite/internal/models/clmessages"
)

type MessagesHandler struct {
	service *clmessages.MessageService
	scorer  *clmessages.SpamScorer
}

func NewMessagesHandler(service *clmessages.MessageService) *MessagesHandler {
	return &MessagesHandler{
		service: service,
		scorer:  clmessages.NewSpamScorer(),
	}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// API : réception d'une soumission de contact
func (h *MessagesHandler) CreateMessageAPI(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	msg := &clmessages.ContactMessage{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		IPAddress: c.ClientIP(),
		SpamScore: h.scorer.Score(req.Message),
	}
	msg.SetMetadata(map[string]any{
		"user_agent": c.Request.UserAgent(),
		"source":     "api",
	})

	if err := h.service.Insert(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Message received from %s", msg.Name),
		"email":   msg.Email,
	})
}

// API : liste des messages pour le triage
func (h *MessagesHandler) GetMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.DefaultQuery("status", "all")

	messages, total, err := h.service.ListByStatus(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// API : transition du workflow de triage d'un message
func (h *MessagesHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut manquant"})
		return
	}

	switch err := h.service.UpdateStatus(uint(id), req.Status); {
	case errors.Is(err, clmessages.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Message non trouvé"})
	case errors.Is(err, clmessages.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Statut mis à jour", "status": req.Status})
	}
}

// API : marquer un message comme spam (score du corps si non fourni)
func (h *MessagesHandler) MarkSpam(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var req struct {
		Score *float64 `json:"score"`
	}
	c.ShouldBindJSON(&req)

	var score float64
	if req.Score != nil {
		score = *req.Score
	} else {
		msg, err := h.service.Get(uint(id))
		if errors.Is(err, clmessages.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message non trouvé"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		score = h.scorer.Score(msg.Message)
	}

	switch err := h.service.MarkSpam(uint(id), score); {
	case errors.Is(err, clmessages.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Message non trouvé"})
	case errors.Is(err, clmessages.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Message marqué comme spam"})
	}
}
