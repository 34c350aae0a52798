package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-paperwriter-be/internal/config"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/database"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/embedding/jina"
	"ai-paperwriter-be/pkg/rag/retriever"
	"ai-paperwriter-be/pkg/rerank"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Traces one query through every retrieval mode and prints the scored
// results side by side.
//
// Usage: go run ./cmd/debug/rag_trace "query text" [sourceId ...]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: rag_trace \"query text\" [sourceId ...]")
	}
	query := os.Args[1]

	var sourceIds []uuid.UUID
	for _, arg := range os.Args[2:] {
		id, err := uuid.Parse(arg)
		if err != nil {
			log.Fatalf("Invalid source id %q: %v", arg, err)
		}
		sourceIds = append(sourceIds, id)
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	reranker := rerank.NewClient(cfg.Keys.Reranker, cfg.Ai.RerankerBaseURL, cfg.Ai.RerankerModel)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	ret := retriever.NewRetriever(uowFactory, embeddingProvider, reranker, sysLogger)

	color.Cyan("🔍 Tracing retrieval for: %q\n", query)
	if len(sourceIds) > 0 {
		color.Cyan("   Scoped to %d source(s)\n", len(sourceIds))
	}
	if reranker.Enabled() {
		color.Cyan("   Reranker: ENABLED (%s)\n", cfg.Ai.RerankerModel)
	} else {
		color.Yellow("   Reranker: disabled (no RERANKER_API_KEY)\n")
	}

	for _, mode := range []retriever.Mode{retriever.ModeHybrid, retriever.ModeVector, retriever.ModeKeyword} {
		color.Yellow("\n=== Mode: %s ===", mode)

		result, err := ret.Retrieve(context.Background(), query, sourceIds, retriever.Config{
			Mode:         mode,
			VectorWeight: cfg.Rag.VectorWeight,
			MinScore:     cfg.Rag.MinScore,
			Limit:        cfg.Rag.Limit,
			MaxPerSource: cfg.Rag.MaxPerSource,
			Rerank:       mode == retriever.ModeHybrid,
		})
		if err != nil {
			color.Red("Retrieve failed: %v", err)
			continue
		}

		if result.UsedMode != mode {
			color.Yellow("   (fell back to %s)", result.UsedMode)
		}
		if result.Reranked {
			color.Green("   reranked: yes")
		}
		if len(result.Chunks) == 0 {
			color.Red("   no chunks above min_score %.2f", cfg.Rag.MinScore)
			continue
		}

		for i, c := range result.Chunks {
			preview := strings.Join(strings.Fields(c.Content), " ")
			if len(preview) > 110 {
				preview = preview[:110] + "…"
			}
			scoreLine := fmt.Sprintf("score=%.3f", c.Score)
			if c.RerankedFrom > 0 {
				scoreLine += fmt.Sprintf(" (was %.3f)", c.RerankedFrom)
			}
			if c.VectorScore > 0 || c.KeywordScore > 0 {
				scoreLine += fmt.Sprintf(" [vec=%.3f kw=%.3f]", c.VectorScore, c.KeywordScore)
			}
			color.Green("%2d. %s src=%s %s", i+1, scoreLine, c.SourceId.String()[:8], c.EvidenceStrength)
			fmt.Printf("    %s\n", preview)
		}
	}
}
