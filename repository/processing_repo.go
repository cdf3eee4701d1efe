package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tieubaoca/docproc-be/types"
)

// ProcessingRepo persists one record per pipeline run, so operators can see
// what was processed, by which backend, and whether chunking degraded.
type ProcessingRepo interface {
	SaveRecord(ctx context.Context, record *types.ProcessingRecord) error
	GetRecordsByFilename(ctx context.Context, filename string) ([]*types.ProcessingRecord, error)
	ListRecords(ctx context.Context, limit int64) ([]*types.ProcessingRecord, error)
}

type processingRepo struct {
	collection *mongo.Collection
}

func NewProcessingRepo(collection *mongo.Collection) ProcessingRepo {
	return &processingRepo{
		collection: collection,
	}
}

func (r *processingRepo) SaveRecord(ctx context.Context, record *types.ProcessingRecord) error {
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *processingRepo) GetRecordsByFilename(ctx context.Context, filename string) ([]*types.ProcessingRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"filename": filename})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeRecords(ctx, cursor)
}

func (r *processingRepo) ListRecords(ctx context.Context, limit int64) ([]*types.ProcessingRecord, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeRecords(ctx, cursor)
}

func decodeRecords(ctx context.Context, cursor *mongo.Cursor) ([]*types.ProcessingRecord, error) {
	var records []*types.ProcessingRecord
	for cursor.Next(ctx) {
		var record types.ProcessingRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, cursor.Err()
}
