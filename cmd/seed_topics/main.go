package main

import (
	"context"
	"log"
	"os"
	"time"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/specification"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Predefined topics survive centroid recomputation even when empty; only
// auto-discovered topics get pruned.
var predefinedTopics = []entity.Topic{
	{Name: "Work", Description: "Projects, meetings and professional notes", Color: "#2563eb", Keywords: []string{"project", "meeting", "deadline", "client"}},
	{Name: "Personal", Description: "Journal entries and everyday life", Color: "#16a34a", Keywords: []string{"journal", "diary", "family", "home"}},
	{Name: "Learning", Description: "Study notes, courses and reading summaries", Color: "#9333ea", Keywords: []string{"course", "study", "book", "tutorial"}},
	{Name: "Ideas", Description: "Sketches, brainstorms and things to build", Color: "#ea580c", Keywords: []string{"idea", "brainstorm", "draft", "concept"}},
	{Name: "Finance", Description: "Budgets, expenses and money planning", Color: "#ca8a04", Keywords: []string{"budget", "expense", "invoice", "savings"}},
	{Name: "Health", Description: "Exercise, nutrition and wellbeing", Color: "#dc2626", Keywords: []string{"workout", "recipe", "sleep", "doctor"}},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	color.Cyan("Seeding predefined topics...")

	created, skipped := 0, 0
	for _, t := range predefinedTopics {
		existing, err := uow.TopicRepository().FindOne(ctx, specification.TopicByName{Name: t.Name})
		if err != nil {
			color.Red("Failed to check topic %q: %v", t.Name, err)
			os.Exit(1)
		}
		if existing != nil {
			color.Yellow("Topic %q already exists, skipping", t.Name)
			skipped++
			continue
		}

		topic := t
		topic.Id = uuid.New()
		topic.IsPredefined = true
		topic.CreatedAt = time.Now()

		if err := uow.TopicRepository().Create(ctx, &topic); err != nil {
			color.Red("Failed to create topic %q: %v", t.Name, err)
			os.Exit(1)
		}
		color.Green("Created topic: %s", topic.Name)
		created++
	}

	color.Cyan("Seeding completed: %d created, %d skipped", created, skipped)
}
