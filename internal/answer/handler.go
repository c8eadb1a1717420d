package answer

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luminedge/sage/pkg/logging"
	"github.com/luminedge/sage/pkg/middleware"
)

const maxQuestionLength = 4000

// Handler exposes the answer pipeline over HTTP.
type Handler struct {
	pipeline *Pipeline
	logger   logging.Logger
}

func NewHandler(pipeline *Pipeline, logger logging.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// RegisterRoutes mounts the /api group. An empty key set leaves the group
// open; otherwise requests need a matching bearer key.
func (h *Handler) RegisterRoutes(router *gin.Engine, apiKeys []string) {
	api := router.Group("/api")
	api.Use(middleware.APIKeyAuthMiddleware(apiKeys))
	api.POST("/ask", h.Ask)
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/ask.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	if len(question) > maxQuestionLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is too long"})
		return
	}

	logger := middleware.GetContextLogger(c, h.logger)
	logger.WithField("question_length", len(question)).Info("Answering question")

	result := h.pipeline.Answer(c.Request.Context(), question)
	c.JSON(http.StatusOK, result)
}
