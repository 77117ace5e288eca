package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
)

const (
	equipmentCollection = "equipment"
	reportCollection    = "weekly_reports"
)

// ErrSnapshotNotFound is returned when no snapshot carries the serial.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Repository defines equipment snapshot and report storage.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot equipment.Snapshot) error
	LoadSnapshots(ctx context.Context) ([]equipment.Snapshot, error)
	DeleteSnapshot(ctx context.Context, serial string) error
	SaveWeeklyReport(ctx context.Context, report models.WeeklyReport) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// SaveSnapshot upserts the snapshot keyed by its serial.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot equipment.Snapshot) error {
	if snapshot.Serial == "" {
		return errors.New("snapshot serial must not be empty")
	}

	filter := bson.M{"_id": snapshot.Serial}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection(equipmentCollection).ReplaceOne(ctx, filter, snapshot, opts); err != nil {
		return fmt.Errorf("failed to upsert snapshot %s: %w", snapshot.Serial, err)
	}
	return nil
}

// LoadSnapshots returns every stored snapshot ordered by serial.
func (r *MongoDBRepository) LoadSnapshots(ctx context.Context) ([]equipment.Snapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection(equipmentCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []equipment.Snapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return snapshots, nil
}

// DeleteSnapshot removes a retired record.
func (r *MongoDBRepository) DeleteSnapshot(ctx context.Context, serial string) error {
	res, err := r.collection(equipmentCollection).DeleteOne(ctx, bson.M{"_id": serial})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", serial, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, serial)
	}
	return nil
}

// SaveWeeklyReport archives a weekly fleet digest.
func (r *MongoDBRepository) SaveWeeklyReport(ctx context.Context, report models.WeeklyReport) error {
	if _, err := r.collection(reportCollection).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert weekly report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
