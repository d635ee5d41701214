package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/review-api/internal/core/ports"
)

const authEventsCollection = "auth_events"

// AuditRepository implements ports.AuditLog as an append-only collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(authEventsCollection)}
}

// EnsureIndexes creates the lookup indexes used by operators querying the
// trail per user and per kind.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("username_at"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("kind_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("create auth_events indexes: %w", err)
	}
	return nil
}

// Record appends event to the trail.
func (r *AuditRepository) Record(ctx context.Context, event ports.AuthEvent) error {
	_, err := r.coll.InsertOne(ctx, toDocument(event))
	return err
}

func toDocument(e ports.AuthEvent) bson.M {
	doc := bson.M{
		"kind":     string(e.Kind),
		"username": e.Username,
		"role":     e.Role,
		"at":       e.At.UTC(),
	}
	if e.Actor != "" {
		doc["actor"] = e.Actor
	}
	return doc
}
