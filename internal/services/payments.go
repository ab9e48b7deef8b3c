package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/pkg/logger"
)

// PaymentAuditService persists accepted payment headers to MongoDB.
// The store is optional: a nil service is valid and records nothing,
// so the API runs fine without a database.
type PaymentAuditService struct {
	db         *mongo.Database
	collection *mongo.Collection
	config     *config.MongoDBConfig
}

// NewPaymentAuditService connects to the payment audit store. Returns
// (nil, nil) when no URI is configured.
func NewPaymentAuditService(cfg *config.MongoDBConfig) (*PaymentAuditService, error) {
	if cfg.URI == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	clientOptions.SetConnectTimeout(cfg.ConnectTimeout)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)
	clientOptions.SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)
	collection := db.Collection(cfg.PaymentCollection)

	// Index on signature for replay lookups
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "signature", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err = collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		// Index might already exist, which is fine
	}

	return &PaymentAuditService{
		db:         db,
		collection: collection,
		config:     cfg,
	}, nil
}

// Record persists one accepted payment. Failures are logged, never
// surfaced; auditing must not fail a request that already paid.
func (p *PaymentAuditService) Record(record *models.PaymentRecord) {
	if p == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := p.collection.InsertOne(ctx, record); err != nil {
			logger.GetLogger().Warn("Failed to record payment",
				zap.String("resource", record.Resource),
				zap.Error(err),
			)
		}
	}()
}

// SeenSignature reports whether a payment signature was recorded
// before
func (p *PaymentAuditService) SeenSignature(ctx context.Context, signature string) (bool, error) {
	if p == nil {
		return false, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.collection.FindOne(queryCtx, bson.M{"signature": signature}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the MongoDB connection
func (p *PaymentAuditService) Close() error {
	if p == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.db.Client().Disconnect(ctx)
}
