// Package mongo provides the MongoDB implementation of the movement archive.
// The archive is the query side for full movement history; the authoritative
// ledger state stays in PostgreSQL.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crebito-ledger/internal/domain/movement"
)

const (
	// ArchiveCollectionName is the name of the movement archive collection in MongoDB
	ArchiveCollectionName = "movements"
)

// ArchiveRepository implements the movement.ArchiveRepository interface for MongoDB
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB movement archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) movement.ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Save upserts a movement keyed by its ledger id. The feed delivers
// at-least-once, so replays must not duplicate archive entries.
func (r *ArchiveRepository) Save(ctx context.Context, m *movement.Movement) error {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"movement_id": m.ID}
	update := bson.M{"$set": m}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to archive movement",
			"movement_id", m.ID,
			"account_id", m.AccountID,
			"error", err)
		return fmt.Errorf("failed to archive movement: %w", err)
	}

	return nil
}

// GetByAccountID retrieves paginated archived movements for an account.
// Results are sorted by movement id in descending order (newest first).
func (r *ArchiveRepository) GetByAccountID(ctx context.Context, accountID int, limit, offset int) ([]*movement.Movement, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"account_id": accountID}
	opts := options.Find().
		SetSort(bson.M{"movement_id": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived movements",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to get archived movements: %w", err)
	}
	defer cursor.Close(ctx)

	var movements []*movement.Movement
	if err := cursor.All(ctx, &movements); err != nil {
		r.logger.Error("Failed to decode archived movements",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to decode archived movements: %w", err)
	}

	return movements, nil
}

// CountByAccountID counts the total number of archived movements for an account
func (r *ArchiveRepository) CountByAccountID(ctx context.Context, accountID int) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"account_id": accountID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived movements",
			"account_id", accountID,
			"error", err)
		return 0, fmt.Errorf("failed to count archived movements: %w", err)
	}

	return count, nil
}
