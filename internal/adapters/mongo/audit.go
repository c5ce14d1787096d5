package mongo

import (
	"context"
	"time"

	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditMirror writes a copy of every in-memory audit entry to Mongo. The
// engine's own log stays authoritative; the mirror only gives operators a
// queryable trail and is skipped entirely when Mongo is not configured.
type AuditMirror struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditMirror(db *mongo.Database, logger observability.Logger) *AuditMirror {
	return &AuditMirror{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

func (a *AuditMirror) MirrorAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	doc := bson.M{
		"_id":       entry.ID,
		"action":    entry.Action,
		"details":   entry.Details,
		"timestamp": entry.Timestamp,
	}
	_, err := a.coll.InsertOne(ctx, doc)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

// Entries returns the mirrored trail, oldest first.
func (a *AuditMirror) Entries(ctx context.Context) ([]domain.AuditLogEntry, error) {
	cur, err := a.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.AuditLogEntry
	for cur.Next(ctx) {
		var doc struct {
			ID        string    `bson:"_id"`
			Action    string    `bson:"action"`
			Details   string    `bson:"details"`
			Timestamp time.Time `bson:"timestamp"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domain.AuditLogEntry{
			ID:        doc.ID,
			Action:    doc.Action,
			Details:   doc.Details,
			Timestamp: doc.Timestamp,
		})
	}
	return out, cur.Err()
}
