package main

import (
	"log"
	"os"

	"ai-paperwriter-be/internal/model"
	"ai-paperwriter-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions AutoMigrate can't create
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Source{},
		&model.SourceChunk{},
		&model.Claim{},
		&model.CanonicalCitation{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	// 5. Post-Migration: ANN indexes for the vector columns and the FTS
	// index the keyword path depends on
	log.Println("Step 3: Creating search indexes...")

	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_source_chunks_embedding ON source_chunks USING hnsw (embedding_value vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_claims_embedding ON claims USING hnsw (embedding_value vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_source_chunks_fts ON source_chunks USING gin (to_tsvector('english', content));`,
	}

	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v. Continuing...", err)
		}
	}

	log.Println("✅ Migration complete")
}
