package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
)

// MongoRepository stores resume documents in a MongoDB collection, one
// record per resume variant keyed by the resume id.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *errors.Logger
}

var _ Repository = (*MongoRepository)(nil)

// NewMongoRepository connects to MongoDB and verifies the connection with a
// ping before returning.
func NewMongoRepository(ctx context.Context, cfg config.StoreConfig, logger *errors.Logger) (*MongoRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout).
		SetMaxPoolSize(cfg.MaxPoolSize)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to connect to the resume store", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Resume store did not answer ping", err)
	}

	repo := &MongoRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger,
	}

	if err := repo.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}

	logger.Info("Connected to resume store",
		"database", cfg.Database,
		"collection", cfg.Collection)

	return repo, nil
}

// ensureIndexes creates the per-user lookup index. Idempotent.
func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "updatedAt", Value: -1},
		},
	})
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to create store indexes", err)
	}
	return nil
}

// Save implements Repository. The stored record is replaced wholesale; a
// concurrent save of the same resume id wins by last write.
func (r *MongoRepository) Save(ctx context.Context, userID string, resume schema.ResumeDocument) (Record, error) {
	if resume.ResumeID == "" {
		resume.ResumeID = uuid.NewString()
	}

	now := time.Now().UTC()
	record := Record{
		ID:        resume.ResumeID,
		UserID:    userID,
		Resume:    resume,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Keep the original createdAt on replacement.
	var existing Record
	err := r.collection.FindOne(ctx, bson.M{"_id": record.ID, "userId": userID}).Decode(&existing)
	if err == nil {
		record.CreatedAt = existing.CreatedAt
	} else if err != mongo.ErrNoDocuments {
		return Record{}, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to read existing resume", err)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID, "userId": userID}, record, opts); err != nil {
		return Record{}, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to save resume", err)
	}

	r.logger.Debug("Resume saved", "resume_id", record.ID, "user_id", userID)
	return record, nil
}

// Get implements Repository
func (r *MongoRepository) Get(ctx context.Context, userID, resumeID string) (Record, error) {
	var record Record
	err := r.collection.FindOne(ctx, bson.M{"_id": resumeID, "userId": userID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return Record{}, errors.NewStoreError(errors.ErrCodeDocumentNotFound,
			"Resume not found", nil).WithContext("resume_id", resumeID)
	}
	if err != nil {
		return Record{}, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to load resume", err)
	}
	return record, nil
}

// List implements Repository
func (r *MongoRepository) List(ctx context.Context, userID string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to list resumes", err)
	}
	defer cursor.Close(ctx)

	records := []Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to decode resume list", err)
	}
	return records, nil
}

// Delete implements Repository
func (r *MongoRepository) Delete(ctx context.Context, userID, resumeID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": resumeID, "userId": userID})
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to delete resume", err)
	}
	if result.DeletedCount == 0 {
		return errors.NewStoreError(errors.ErrCodeDocumentNotFound,
			"Resume not found", nil).WithContext("resume_id", resumeID)
	}

	r.logger.Debug("Resume deleted", "resume_id", resumeID, "user_id", userID)
	return nil
}

// Watch implements Repository using a change stream. Each event triggers a
// fresh List so subscribers always see a complete snapshot rather than a
// delta. Delete events carry no fullDocument, so they must pass the match
// unconditionally; the per-user List keeps foreign events harmless.
func (r *MongoRepository) Watch(ctx context.Context, userID string) (<-chan []Record, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.collection.Watch(ctx, watchPipeline(userID), opts)
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreUnavailable,
			"Failed to open change stream", err)
	}

	updates := make(chan []Record, 1)
	go func() {
		defer close(updates)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			records, err := r.List(ctx, userID)
			if err != nil {
				r.logger.LogError(err, "Failed to refresh resume snapshot", "user_id", userID)
				continue
			}
			select {
			case updates <- records:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}

// watchPipeline matches the user's document events plus every delete
// event. Deletes carry only a documentKey, so a fullDocument.userId filter
// alone would drop them.
func watchPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.userId": userID},
			bson.M{"operationType": "delete"},
		}}}},
	}
}

// Close implements Repository
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
