package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bankassist/internal/models"
	"bankassist/internal/service/assistant"
	"bankassist/internal/service/guard"
	"bankassist/internal/worker"
)

type SessionManager interface {
	Open() *models.Session
	Submit(worker.Request) (assistant.Reply, error)
	History(sessionID string) (*models.Session, []models.Turn, error)
	Close(sessionID string) error
}

// Handler wires HTTP routes to the per-session assistants.
type Handler struct {
	workers SessionManager
	logger  *zap.Logger
	model   string
}

// NewHandler constructs a Handler instance.
func NewHandler(workers SessionManager, modelName string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		workers: workers,
		logger:  logger,
		model:   modelName,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
	api := router.Group("/api")
	api.GET("/quick-actions", h.listQuickActions)
	api.POST("/sessions", h.createSession)
	sessionRoutes := api.Group("/sessions/:session_id")
	sessionRoutes.Use(h.requireSession())
	sessionRoutes.GET("/messages", h.getSessionMessages)
	sessionRoutes.POST("/messages", h.captureInput)
	sessionRoutes.DELETE("", h.deleteSession)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"model": h.model,
		"time":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) listQuickActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":         assistant.AppTitle,
		"tagline":       assistant.AppTagline,
		"tip":           assistant.AppTip,
		"escalation":    assistant.Escalation,
		"quick_actions": assistant.QuickActions(),
		"topics":        guard.Keywords(),
	})
}

func (h *Handler) createSession(c *gin.Context) {
	session := h.workers.Open()
	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"created_at": session.CreatedAt,
	})
}

func (h *Handler) getSessionMessages(c *gin.Context) {
	sessionID, _ := SessionIDFromContext(c)
	session, turns, err := h.workers.History(sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"updated_at": session.UpdatedAt,
		"messages":   turns,
	})
}

func (h *Handler) deleteSession(c *gin.Context) {
	sessionID, _ := SessionIDFromContext(c)
	if err := h.workers.Close(sessionID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// User input interface
type inputRequest struct {
	Content     string `json:"content"`
	QuickAction string `json:"quick_action"`
}

func (h *Handler) captureInput(c *gin.Context) {
	sessionID, _ := SessionIDFromContext(c)
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	quick := strings.TrimSpace(req.QuickAction)
	hasContent := strings.TrimSpace(req.Content) != ""
	if quick == "" && !hasContent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content or quick_action is required"})
		return
	}
	if quick != "" && hasContent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "send either content or quick_action, not both"})
		return
	}

	reply, err := h.workers.Submit(worker.Request{
		Context:     c.Request.Context(),
		SessionID:   sessionID,
		Content:     req.Content,
		QuickAction: quick,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_message":      reply.UserTurn,
		"assistant_message": reply.Turn,
		"in_domain":         reply.InDomain,
		"degraded":          reply.Degraded,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, worker.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, assistant.ErrUnknownQuickAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, assistant.ErrBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "session is busy, please retry"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
