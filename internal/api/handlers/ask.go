package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sightline/internal/llm"
	"github.com/your-org/sightline/pkg/dto"
)

type AskHandler struct {
	llm     *llm.Service
	timeout time.Duration
}

func NewAskHandler(svc *llm.Service, timeout time.Duration) *AskHandler {
	return &AskHandler{llm: svc, timeout: timeout}
}

// Ask answers a question about previously returned detections. Model
// failures degrade to a fallback answer, so this endpoint stays 200 even
// when the language model is down.
func (h *AskHandler) Ask(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	answer, elapsed := h.llm.Answer(ctx, req.Question, req.Detections, req.ImageBase64)

	c.JSON(http.StatusOK, dto.AnswerResponse{
		Answer:         answer,
		ProcessingTime: round3(elapsed),
	})
}
