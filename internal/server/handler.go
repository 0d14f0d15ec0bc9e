package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coderag/internal/adapter/llm"
	"coderag/internal/domain"
	"coderag/internal/usecase"
)

// Details returned to clients for LLM failures.
const (
	timeoutDetail     = "LLM API request timed out. The model may need more time to generate a response."
	unavailableDetail = "Could not connect to LLM API. Please check if Ollama service is running."
	retryAfterSeconds = "30"
)

// Querier answers one query request.
type Querier interface {
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}

type QueryHandler struct {
	querier Querier
	logger  *zap.Logger
}

func NewQueryHandler(querier Querier, logger *zap.Logger) *QueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHandler{querier: querier, logger: logger}
}

func (h *QueryHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online", "service": "Code-Aware RAG API"})
}

func (h *QueryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req domain.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.TopK <= 0 {
		req.TopK = usecase.DefaultTopK
	}

	resp, err := h.querier.Query(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QueryHandler) writeError(c *gin.Context, err error) {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrTimeout):
		h.logger.Error("timeout calling LLM API", zap.Error(err))
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": timeoutDetail})
	case errors.Is(err, llm.ErrUnavailable):
		h.logger.Error("connection error to LLM API", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": unavailableDetail})
	case errors.As(err, &statusErr):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("Error calling LLM API: %d", statusErr.Code)})
	case errors.Is(err, usecase.ErrEmptyQuery):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	default:
		h.logger.Error("error processing query", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
