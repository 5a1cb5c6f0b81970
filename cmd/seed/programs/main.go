package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArtlessApps/ruckplan/internal/config"
	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/ArtlessApps/ruckplan/internal/repository"
)

// daySpec is one slot in a repeating week pattern.
type daySpec struct {
	Title       string
	Description string
	Type        domain.WorkoutType
}

func rest() daySpec {
	return daySpec{Title: "Rest", Description: "Full rest day. Hydrate and stretch.", Type: domain.WorkoutTypeRest}
}

// buildEntries expands a per-week pattern into contiguous day numbers.
func buildEntries(weeks int, pattern [7]daySpec) []domain.TemplateEntry {
	entries := make([]domain.TemplateEntry, 0, weeks*7)
	for w := 0; w < weeks; w++ {
		for d := 0; d < 7; d++ {
			spec := pattern[d]
			entries = append(entries, domain.TemplateEntry{
				DayNumber:   w*7 + d + 1,
				Title:       fmt.Sprintf("Week %d: %s", w+1, spec.Title),
				Description: spec.Description,
				WorkoutType: spec.Type,
			})
		}
	}
	return entries
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	programRepo := repository.NewMongoProgramRepository(db)

	programs := []*domain.Program{
		{
			Name:        "Ruck Foundations",
			Description: "Four weeks to build your rucking base. Three sessions a week, light loads, steadily increasing distance.",
			Difficulty:  "beginner",
			Entries: buildEntries(4, [7]daySpec{
				{Title: "Base Ruck", Description: "3 km at a comfortable pace, 10 kg load.", Type: domain.WorkoutTypeStandard},
				rest(),
				{Title: "Pace Ruck", Description: "2 km brisk, aim for under 10 min/km.", Type: domain.WorkoutTypePace},
				rest(),
				{Title: "Long Ruck", Description: "5 km easy, focus on foot care and posture.", Type: domain.WorkoutTypeStandard},
				rest(),
				{Title: "Recovery Walk", Description: "30 minute unloaded walk.", Type: domain.WorkoutTypeRecovery},
			}),
		},
		{
			Name:        "Hill Strong",
			Description: "Six weeks of climbing-focused rucks. Builds the legs and lungs for mountain events.",
			Difficulty:  "intermediate",
			Entries: buildEntries(6, [7]daySpec{
				{Title: "Vertical Intervals", Description: "8 hill repeats with 15 kg, walk-down recovery.", Type: domain.WorkoutTypeVertical},
				rest(),
				{Title: "Tempo Ruck", Description: "5 km rolling terrain at steady effort.", Type: domain.WorkoutTypePace},
				rest(),
				{Title: "Stair Session", Description: "30 minutes of stairs or steep grade, 15 kg.", Type: domain.WorkoutTypeVertical},
				{Title: "Long Ruck", Description: "8-10 km with 500 m of gain if available.", Type: domain.WorkoutTypeStandard},
				rest(),
			}),
		},
		{
			Name:        "12-Mile Standard",
			Description: "Eight weeks to a sub-3-hour 12-miler with 20 kg. Peak mileage in week six, taper after.",
			Difficulty:  "advanced",
			Entries: buildEntries(8, [7]daySpec{
				{Title: "Pace Work", Description: "4 x 1.5 km at goal pace, 20 kg.", Type: domain.WorkoutTypePace},
				rest(),
				{Title: "Base Ruck", Description: "6 km conversational pace, 20 kg.", Type: domain.WorkoutTypeStandard},
				{Title: "Recovery Walk", Description: "40 minutes unloaded, easy effort.", Type: domain.WorkoutTypeRecovery},
				rest(),
				{Title: "Long Ruck", Description: "Build from 10 km to 18 km over the program.", Type: domain.WorkoutTypeStandard},
				rest(),
			}),
		},
	}

	existing, err := programRepo.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list programs: %v", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, p := range existing {
		byName[p.Name] = true
	}

	for _, p := range programs {
		if byName[p.Name] {
			fmt.Printf("Skipping %q (already seeded)\n", p.Name)
			continue
		}
		if err := programRepo.Create(ctx, p); err != nil {
			log.Fatalf("Failed to create program %q: %v", p.Name, err)
		}
		fmt.Printf("✓ Seeded %q (%d days)\n", p.Name, len(p.Entries))
	}
}
