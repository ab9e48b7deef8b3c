package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/services"
	"github.com/tferezin/onchainledger/pkg/logger"
)

// AnalyzeHandler serves the paid full-analysis tier
type AnalyzeHandler struct {
	scores *services.TrustScoreService
}

// NewAnalyzeHandler creates a new AnalyzeHandler instance
func NewAnalyzeHandler(scores *services.TrustScoreService) *AnalyzeHandler {
	return &AnalyzeHandler{scores: scores}
}

// Analyze handles POST /api/analyze/:tokenAddress requests
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	tokenAddress := c.Param("tokenAddress")
	if !isValidTokenAddress(tokenAddress) {
		log.Warn("Invalid token address in analyze request",
			zap.String("token_address", tokenAddress),
		)
		models.HandleError(c, models.NewInvalidAddressError(tokenAddress), log)
		return
	}

	log.Info("Processing full analysis request",
		zap.String("token_address", tokenAddress),
	)

	result, err := h.scores.ComputeFull(c.Request.Context(), tokenAddress)
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	log.Info("Full analysis completed",
		zap.String("token_address", tokenAddress),
		zap.Float64("score", result.TrustScore.Score),
		zap.String("grade", result.TrustScore.Grade),
	)

	c.JSON(http.StatusOK, result)
}
