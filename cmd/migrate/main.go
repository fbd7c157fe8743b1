package main

import (
	"log"
	"os"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/model"
	"knowledgebase-engine/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("Error: Failed to install pgcrypto:", err)
	}
	if err := database.EnsureVectorExtension(db); err != nil {
		log.Fatal("Error: Failed to install pgvector:", err)
	}

	log.Println("Step 2: Migrating tables...")
	err = db.AutoMigrate(
		&entity.Note{},
		&model.NoteEmbedding{},
		&model.Topic{},
		&model.NoteTopic{},
	)
	if err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	log.Println("Step 3: Creating search indexes...")
	indexSQL := []string{
		// Lexical ranking reads this expression; index it the same way.
		`CREATE INDEX IF NOT EXISTS idx_notes_fts ON notes USING GIN (
			(setweight(to_tsvector('simple', coalesce(title, '')), 'A') ||
			 setweight(to_tsvector('simple', coalesce(content, '')), 'B'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_note_embeddings_vector ON note_embeddings
			USING hnsw (vector vector_cosine_ops);`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed index statement: %v", err)
		}
	}

	log.Println("Migration completed!")
}
