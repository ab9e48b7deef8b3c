package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/services"
	"github.com/tferezin/onchainledger/pkg/logger"
)

// ScoreHandler serves the free teaser tier
type ScoreHandler struct {
	scores     *services.TrustScoreService
	projection *services.ProjectionService
}

// NewScoreHandler creates a new ScoreHandler instance
func NewScoreHandler(scores *services.TrustScoreService, projection *services.ProjectionService) *ScoreHandler {
	return &ScoreHandler{
		scores:     scores,
		projection: projection,
	}
}

// GetScore handles GET /api/score/:tokenAddress requests. The response
// is a coarse preview; the exact score stays behind the paid tier.
func (h *ScoreHandler) GetScore(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	tokenAddress := c.Param("tokenAddress")
	if !isValidTokenAddress(tokenAddress) {
		log.Warn("Invalid token address in teaser request",
			zap.String("token_address", tokenAddress),
		)
		models.HandleError(c, models.NewInvalidAddressError(tokenAddress), log)
		return
	}

	log.Info("Processing teaser score request",
		zap.String("token_address", tokenAddress),
	)

	result, err := h.scores.ComputeTeaser(c.Request.Context(), tokenAddress)
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	c.JSON(http.StatusOK, h.projection.ProjectTeaser(result))
}
