package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/services"
	"github.com/tferezin/onchainledger/pkg/logger"
	"github.com/tferezin/onchainledger/pkg/metrics"
)

// PaymentHeader is the header clients settle 402 challenges through
const PaymentHeader = "X-PAYMENT"

// PriceResolver returns the lamports price for the current request.
// Batch endpoints price per deduplicated token, so the price can
// depend on the request body.
type PriceResolver func(c *gin.Context) string

// FixedPrice resolves every request to the same lamports price
func FixedPrice(lamports string) PriceResolver {
	return func(*gin.Context) string {
		return lamports
	}
}

// BatchPrice resolves the volume-tiered price from the request body.
// The body is restored so the handler can bind it again.
func BatchPrice(projection *services.ProjectionService) PriceResolver {
	return func(c *gin.Context) string {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return projection.PricingFor(1).Lamports
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		var request models.BatchRequest
		if err := json.Unmarshal(body, &request); err != nil || len(request.Tokens) == 0 {
			return projection.PricingFor(1).Lamports
		}
		return projection.PricingFor(services.DedupedCount(request.Tokens)).Lamports
	}
}

// PaymentMiddleware gates an endpoint behind an x402 payment. Unpaid
// requests get a 402 challenge describing how to pay; requests with a
// plausible payment header pass through and are recorded.
//
// Verification is currently structural (signature length) only.
// TODO: verify the settlement transaction on-chain before accepting.
func PaymentMiddleware(cfg *config.Config, audits *services.PaymentAuditService, collector *metrics.MetricsCollector, price PriceResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Payment.Enabled {
			c.Next()
			return
		}

		log := logger.GetLogger().WithContext(c.Request.Context())
		lamports := price(c)

		header := c.GetHeader(PaymentHeader)
		if header == "" {
			log.Debug("Payment required, issuing challenge",
				zap.String("path", c.Request.URL.Path),
				zap.String("lamports", lamports),
			)
			collector.RecordPayment(false)
			c.JSON(http.StatusPaymentRequired, buildChallenge(cfg, c, lamports, "Payment required"))
			c.Abort()
			return
		}

		payment := parsePaymentHeader(header)
		if payment == nil || len(payment.Signature) < cfg.Payment.MinSignatureLen {
			log.Warn("Rejected payment header",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			collector.RecordPayment(false)
			c.JSON(http.StatusPaymentRequired, buildChallenge(cfg, c, lamports, "Invalid payment"))
			c.Abort()
			return
		}

		collector.RecordPayment(true)
		audits.Record(&models.PaymentRecord{
			Signature:  payment.Signature,
			Resource:   c.Request.URL.Path,
			Lamports:   lamports,
			ClientIP:   c.ClientIP(),
			ReceivedAt: time.Now().UTC(),
		})

		log.Info("Payment accepted",
			zap.String("path", c.Request.URL.Path),
			zap.String("lamports", lamports),
		)

		c.Next()
	}
}

// parsePaymentHeader accepts a JSON payment object, a "type:signature"
// pair, or a bare signature
func parsePaymentHeader(header string) *models.Payment {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}

	if strings.HasPrefix(header, "{") {
		var payment models.Payment
		if err := json.Unmarshal([]byte(header), &payment); err != nil {
			return nil
		}
		if payment.Signature == "" {
			return nil
		}
		return &payment
	}

	if idx := strings.Index(header, ":"); idx > 0 {
		return &models.Payment{
			Type:      header[:idx],
			Signature: strings.TrimSpace(header[idx+1:]),
		}
	}

	return &models.Payment{Signature: header}
}

func buildChallenge(cfg *config.Config, c *gin.Context, lamports, errorText string) *models.PaymentChallenge {
	resource := cfg.Server.BaseURL + c.Request.URL.Path

	return &models.PaymentChallenge{
		Error:       errorText,
		X402Version: models.X402Version,
		Accepts: []models.PaymentOption{
			{
				Scheme:            "exact",
				Network:           cfg.Payment.Network,
				MaxAmountRequired: lamports,
				Resource:          resource,
				PayTo:             cfg.Payment.WalletAddress,
				Description:       "Token trust score analysis",
				MimeType:          "application/json",
				PaymentMethods:    []string{"solana"},
			},
		},
		Message: "Send the payment and retry with the " + PaymentHeader + " header",
	}
}
