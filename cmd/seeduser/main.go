// cmd/seeduser/main.go — creates or refreshes the demo admin account.
// Usage: go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/MILO-debug/POS/internal/infra"
)

func main() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "saripos"
	}
	username := "admin"
	password := "1234"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := infra.NewMongo(ctx, uri, dbName)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}

	filter := bson.M{"username": username}
	update := bson.M{"$set": bson.M{
		"username":     username,
		"passwordHash": string(hash),
		"role":         "admin",
		"employeeName": "Admin",
		"active":       true,
	}, "$setOnInsert": bson.M{"_id": uuid.NewString(), "createdAt": time.Now().UTC()}}

	res, err := db.Collection(infra.ColUsers).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		log.Fatalf("upsert error: %v", err)
	}
	if res.UpsertedID != nil {
		fmt.Printf("user %q created with password %q\n", username, password)
	} else {
		fmt.Printf("user %q updated with password %q\n", username, password)
	}
}
