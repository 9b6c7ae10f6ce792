package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrollsvc/internal/enrollment/models"
	"enrollsvc/pkg/platform/sentinel"
)

const collectionName = "enrollments"

// MongoStore persists enrollments in a document collection. The duplicate-
// ACTIVE invariant is enforced by a partial unique index, so concurrent
// inserts race at the database rather than in this process.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongo(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes creates the partial unique index backing the single-ACTIVE
// invariant. Idempotent; called once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().
			SetName("unique_active_enrollment").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": models.StatusActive}),
	})
	if err != nil {
		return fmt.Errorf("create enrollment indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, e *models.Enrollment) error {
	now := time.Now()
	e.ID = primitive.NewObjectID().Hex()
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = now
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.findOne(ctx, bson.M{"_id": id}, nil)
}

func (s *MongoStore) FindActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	filter := bson.M{
		"student_id": studentID,
		"course_id":  courseID,
		"status":     models.StatusActive,
	}
	return s.findOne(ctx, filter, nil)
}

func (s *MongoStore) FindLatest(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	filter := bson.M{"student_id": studentID, "course_id": courseID}
	opts := options.FindOne().SetSort(bson.D{{Key: "enrolled_at", Value: -1}})
	return s.findOne(ctx, filter, opts)
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Enrollment, error) {
	filter := bson.M{}
	if f.StudentID != "" {
		filter["student_id"] = f.StudentID
	}
	if f.CourseID != "" {
		filter["course_id"] = f.CourseID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "enrolled_at", Value: -1}}).
		SetLimit(ListLimit)

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]models.Enrollment, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode enrollments: %w", err)
	}
	return records, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Enrollment, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Enrollment
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		// Reactivating a record can collide with another ACTIVE one under
		// the partial unique index.
		if mongo.IsDuplicateKeyError(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("update enrollment status: %w", err)
	}
	return &updated, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Enrollment, error) {
	var e models.Enrollment

	var res *mongo.SingleResult
	if opts != nil {
		res = s.collection.FindOne(ctx, filter, opts)
	} else {
		res = s.collection.FindOne(ctx, filter)
	}
	if err := res.Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &e, nil
}
