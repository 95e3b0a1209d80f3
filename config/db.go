package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client   *mongo.Client
	database *mongo.Database
)

// ConnectDB establishes the process-wide MongoDB connection. It is called
// once from main; the client is reused by every handler for the life of
// the process.
func ConnectDB() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "blood-donation-app"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(50 * time.Second)

	var err error
	client, err = mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	database = client.Database(dbName)

	if err := ensureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	log.Println("Connected to MongoDB")
}

// GetCollection returns a handle to the named collection on the shared
// database. ConnectDB must have been called first.
func GetCollection(name string) *mongo.Collection {
	return database.Collection(name)
}

func ensureIndexes(ctx context.Context) error {
	users := GetCollection(UserCollection())
	requests := GetCollection(BloodRequestCollection())

	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clerkID", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "nid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "address.location", Value: "2dsphere"}},
		},
	})
	if err != nil {
		return err
	}

	_, err = requests.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}},
	})
	return err
}

func UserCollection() string {
	if name := os.Getenv("MONGODB_COLLECTION_USERS"); name != "" {
		return name
	}
	return "users"
}

func BloodRequestCollection() string {
	if name := os.Getenv("MONGODB_COLLECTION_BLOODREQUESTS"); name != "" {
		return name
	}
	return "bloodrequests"
}

func ReviewCollection() string {
	if name := os.Getenv("MONGODB_COLLECTION_REVIEWS"); name != "" {
		return name
	}
	return "reviews"
}
