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

// CompareHandler serves paid multi-token comparisons
type CompareHandler struct {
	projection *services.ProjectionService
}

// NewCompareHandler creates a new CompareHandler instance
func NewCompareHandler(projection *services.ProjectionService) *CompareHandler {
	return &CompareHandler{projection: projection}
}

// Compare handles POST /api/compare requests for 2-5 tokens
func (h *CompareHandler) Compare(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid JSON in compare request", zap.Error(err))
		models.HandleError(c, models.NewAppErrorWithDetails(
			models.ErrorCodeMalformedJSON,
			"Invalid JSON format",
			err.Error(),
		), log)
		return
	}

	if len(req.Tokens) < models.CompareMinTokens || len(req.Tokens) > models.CompareMaxTokens {
		log.Warn("Comparison token count out of range",
			zap.Int("token_count", len(req.Tokens)),
		)
		models.HandleError(c, models.NewValidationError(
			"Comparison requires 2 to 5 tokens",
			fmt.Sprintf("Got %d tokens", len(req.Tokens)),
		), log)
		return
	}

	for i, token := range req.Tokens {
		if !isValidTokenAddress(token) {
			log.Warn("Invalid token address in compare request",
				zap.String("token_address", token),
				zap.Int("token_index", i),
			)
			models.HandleError(c, models.NewInvalidAddressError(token), log)
			return
		}
	}

	log.Info("Processing comparison request",
		zap.Int("token_count", len(req.Tokens)),
	)

	view, err := h.projection.Compare(c.Request.Context(), req.Tokens, models.TierFull)
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	c.JSON(http.StatusOK, view)
}
