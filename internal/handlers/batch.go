package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/services"
	"github.com/tferezin/onchainledger/pkg/logger"
)

// BatchHandler serves paid batch analysis with volume pricing
type BatchHandler struct {
	projection *services.ProjectionService
}

// NewBatchHandler creates a new BatchHandler instance
func NewBatchHandler(projection *services.ProjectionService) *BatchHandler {
	return &BatchHandler{projection: projection}
}

// AnalyzeBatch handles POST /api/analyze/batch requests for up to 20
// tokens. Duplicates are collapsed before analysis and pricing.
func (h *BatchHandler) AnalyzeBatch(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid JSON in batch request", zap.Error(err))
		models.HandleError(c, models.NewAppErrorWithDetails(
			models.ErrorCodeMalformedJSON,
			"Invalid JSON format",
			err.Error(),
		), log)
		return
	}

	if len(req.Tokens) == 0 {
		log.Warn("Empty token list in batch request")
		models.HandleError(c, models.NewAppErrorWithDetails(
			models.ErrorCodeEmptyTokenList,
			"Token list cannot be empty",
			"At least one token address must be provided",
		), log)
		return
	}

	if services.DedupedCount(req.Tokens) > models.BatchMaxTokens {
		log.Warn("Too many tokens in batch request",
			zap.Int("token_count", len(req.Tokens)),
		)
		models.HandleError(c, models.NewAppErrorWithDetails(
			models.ErrorCodeTooManyTokens,
			"Batch is limited to 20 unique tokens",
			fmt.Sprintf("Got %d unique tokens", services.DedupedCount(req.Tokens)),
		), log)
		return
	}

	for i, token := range req.Tokens {
		if !isValidTokenAddress(token) {
			log.Warn("Invalid token address in batch request",
				zap.String("token_address", token),
				zap.Int("token_index", i),
			)
			models.HandleError(c, models.NewInvalidAddressError(token), log)
			return
		}
	}

	log.Info("Processing batch analysis request",
		zap.Int("token_count", len(req.Tokens)),
		zap.Int("unique_count", services.DedupedCount(req.Tokens)),
	)

	view, err := h.projection.Batch(c.Request.Context(), req.Tokens, models.TierFull)
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	log.Info("Batch analysis completed",
		zap.Int("analyzed", view.Summary.Analyzed),
		zap.Int("failed", view.Summary.Failed),
	)

	c.JSON(http.StatusOK, view)
}
