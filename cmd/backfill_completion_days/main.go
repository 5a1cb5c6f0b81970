package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/ArtlessApps/ruckplan/internal/repository"
	"github.com/ArtlessApps/ruckplan/internal/schedule"
)

// Backfills program_workout_day on completion records written before day
// tagging existed. Untagged records are assigned to ruck days positionally,
// oldest record to the earliest unclaimed slot, matching how plan builds
// interpret them at read time.

type groupKey struct {
	UserID    string
	ProgramID string
}

func main() {
	mongoURI := flag.String("mongo", "", "MongoDB URI (required)")
	dbName := flag.String("db", "ruckplan", "Database name")
	dryRun := flag.Bool("dry-run", true, "Preview changes without writing (default: true)")
	flag.Parse()

	if *mongoURI == "" {
		*mongoURI = os.Getenv("MONGODB_URI")
		if *mongoURI == "" {
			log.Fatal("MongoDB URI is required. Use -mongo flag or MONGODB_URI env var")
		}
	}

	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(*dbName)
	completionsCol := db.Collection("completions")
	programRepo := repository.NewMongoProgramRepository(db)
	configRepo := repository.NewMongoScheduleConfigRepository(db)

	fmt.Println("=== Completion Day Backfill ===")
	fmt.Printf("Database: %s\n", *dbName)
	fmt.Printf("Dry Run: %v\n\n", *dryRun)

	// Step 1: collect untagged records, grouped by user and program
	filter := bson.M{"$or": []bson.M{
		{"program_workout_day": bson.M{"$exists": false}},
		{"program_workout_day": 0},
	}}
	cursor, err := completionsCol.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		log.Fatalf("Failed to query completions: %v", err)
	}
	var untagged []*domain.CompletionRecord
	if err := cursor.All(ctx, &untagged); err != nil {
		log.Fatalf("Failed to decode completions: %v", err)
	}

	groups := make(map[groupKey][]*domain.CompletionRecord)
	for _, rec := range untagged {
		key := groupKey{UserID: rec.UserID, ProgramID: rec.ProgramID}
		groups[key] = append(groups[key], rec)
	}
	fmt.Printf("Found %d untagged records across %d user/program pairs\n\n", len(untagged), len(groups))

	updated, skipped := 0, 0
	for key, records := range groups {
		cfg, err := configRepo.GetByUser(ctx, key.UserID)
		if err != nil || cfg.ProgramID != key.ProgramID {
			// No live enrollment for this program; leave the records alone,
			// positional matching at read time still covers them.
			skipped += len(records)
			continue
		}

		program, err := programRepo.GetByID(ctx, key.ProgramID)
		if err != nil {
			skipped += len(records)
			continue
		}

		sched, err := schedule.Generate(program, cfg)
		if err != nil {
			skipped += len(records)
			continue
		}

		// Days already claimed by tagged records stay claimed
		claimed := make(map[int]bool)
		taggedCursor, err := completionsCol.Find(ctx, bson.M{
			"user_id":             key.UserID,
			"program_id":          key.ProgramID,
			"program_workout_day": bson.M{"$gt": 0},
		})
		if err == nil {
			var tagged []*domain.CompletionRecord
			if err := taggedCursor.All(ctx, &tagged); err == nil {
				for _, rec := range tagged {
					claimed[rec.ProgramWorkoutDay] = true
				}
			}
		}

		sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

		slot := 0
		for _, rec := range records {
			day := 0
			for ; slot < len(sched); slot++ {
				if sched[slot].WorkoutType == domain.WorkoutTypeRest || claimed[sched[slot].DayNumber] {
					continue
				}
				day = sched[slot].DayNumber
				slot++
				break
			}
			if day == 0 {
				skipped++
				continue
			}

			fmt.Printf("user=%s record=%s date=%s -> day %d\n", key.UserID, rec.ID, rec.Date.Format("2006-01-02"), day)
			if !*dryRun {
				_, err := completionsCol.UpdateOne(ctx,
					bson.M{"_id": mustObjectID(rec.ID)},
					bson.M{"$set": bson.M{"program_workout_day": day}},
				)
				if err != nil {
					log.Fatalf("Failed to update record %s: %v", rec.ID, err)
				}
			}
			updated++
		}
	}

	fmt.Printf("\nDone. %d records assigned, %d skipped.\n", updated, skipped)
	if *dryRun {
		fmt.Println("Dry run only. Re-run with -dry-run=false to write.")
	}
}

func mustObjectID(hex string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		log.Fatalf("Invalid record id %q: %v", hex, err)
	}
	return oid
}
