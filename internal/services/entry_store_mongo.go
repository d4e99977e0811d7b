package services

import (
	"context"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const moodEntriesCollection = "mood_entries"

// MongoEntryStore keeps every user's entries in one collection, scoped by user_id.
type MongoEntryStore struct {
	col *mongo.Collection
}

func NewMongoEntryStore(db *mongo.Database) *MongoEntryStore {
	return &MongoEntryStore{col: db.Collection(moodEntriesCollection)}
}

// EnsureIndexes configures indexes for the mood_entries collection.
// Called on startup from main after Mongo has connected.
func (s *MongoEntryStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "entry_id", Value: 1},
			},
			Options: options.Index().SetName("uniq_user_entry").SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_created"),
		},
	}

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// Set upserts the entry and stamps created_at with the server's clock.
func (s *MongoEntryStore) Set(ctx context.Context, userID string, e models.Entry) (models.Entry, error) {
	filter := bson.M{"user_id": userID, "entry_id": e.ID}

	fields := bson.M{
		"user_id":  userID,
		"entry_id": e.ID,
		"emoji":    e.Emoji,
	}
	update := bson.M{
		"$set":         fields,
		"$currentDate": bson.M{"created_at": true},
	}
	if e.Context != "" {
		fields["context"] = e.Context
	} else {
		update["$unset"] = bson.M{"context": ""}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.Entry
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return models.Entry{}, err
	}
	saved.CreatedAt = saved.CreatedAt.UTC()
	return saved, nil
}

func (s *MongoEntryStore) Delete(ctx context.Context, userID, entryID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"user_id": userID, "entry_id": entryID})
	return err
}

func (s *MongoEntryStore) List(ctx context.Context, userID string) ([]models.Entry, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "entry_id", Value: -1},
	})

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].CreatedAt = entries[i].CreatedAt.UTC()
	}
	return entries, nil
}
