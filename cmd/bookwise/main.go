package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bookwise-ai/bookwise/internal/adapters/driven/config/file"
	embgemini "github.com/bookwise-ai/bookwise/internal/adapters/driven/embedding/gemini"
	embollama "github.com/bookwise-ai/bookwise/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/bookwise-ai/bookwise/internal/adapters/driven/embedding/openai"
	llmgemini "github.com/bookwise-ai/bookwise/internal/adapters/driven/llm/gemini"
	llmollama "github.com/bookwise-ai/bookwise/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/bookwise-ai/bookwise/internal/adapters/driven/llm/openai"
	"github.com/bookwise-ai/bookwise/internal/adapters/driven/llm/ratelimit"
	"github.com/bookwise-ai/bookwise/internal/adapters/driven/storage/sqlite"
	"github.com/bookwise-ai/bookwise/internal/adapters/driven/vector/memory"
	"github.com/bookwise-ai/bookwise/internal/adapters/driven/vector/qdrant"
	"github.com/bookwise-ai/bookwise/internal/adapters/driving/cli"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
	"github.com/bookwise-ai/bookwise/internal/core/services"
	"github.com/bookwise-ai/bookwise/internal/embedding"
	"github.com/bookwise-ai/bookwise/internal/extract"
	"github.com/bookwise-ai/bookwise/internal/extract/docx"
	"github.com/bookwise-ai/bookwise/internal/extract/epub"
	"github.com/bookwise-ai/bookwise/internal/extract/pdf"
	"github.com/bookwise-ai/bookwise/internal/extract/plaintext"
)

func main() {
	_ = godotenv.Load()

	cfg, err := file.NewConfigStore(os.Getenv("BOOKWISE_CONFIG_DIR"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		log.Fatalf("failed to open prompt store: %v", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		log.Fatalf("failed to open library database: %v", err)
	}
	defer store.Close()

	embedder := buildEmbedder(cfg)
	llm := buildLLM(cfg)
	vectors := buildVectorStore(cfg, embedder)

	registry := extract.NewRegistry(
		plaintext.New(),
		pdf.New(),
		docx.New(),
		epub.New(),
	)
	processor := extract.NewProcessor(registry)

	rag := services.NewRAGService(processor, vectors, llm)
	rag.SetChunking(cfg.GetInt("chunking.size"), cfg.GetInt("chunking.overlap"))

	library := services.NewLibraryService(
		store.BookStore(),
		store.DocumentStore(),
		vectors,
		processor,
		embedding.NewGenerator(embedder),
		rag,
	)
	library.SetChunking(cfg.GetInt("chunking.size"), cfg.GetInt("chunking.overlap"))

	study := services.NewStudyService(store.BookStore(), rag, llm)
	study.SetPromptStore(prompts)

	watcher := services.NewWatcher(library, registry)
	if secs := cfg.GetInt("watch.settle_seconds"); secs > 0 {
		watcher.SetSettleDelay(time.Duration(secs) * time.Second)
	}

	cli.SetServices(cli.Services{
		Library: library,
		Study:   study,
		Watcher: watcher,
	})

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildEmbedder selects the embedding provider from config. An unreachable
// or unconfigured provider is tolerated: books then index without vectors
// and querying degrades until one is available.
func buildEmbedder(cfg *file.ConfigStore) driven.EmbeddingService {
	switch provider := cfg.GetString("embedding.provider"); provider {
	case "openai":
		svc, err := embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		if err != nil {
			log.Fatalf("openai embedder: %v", err)
		}
		return svc
	case "gemini":
		svc, err := embgemini.NewEmbeddingService(embgemini.Config{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		if err != nil {
			log.Fatalf("gemini embedder: %v", err)
		}
		return svc
	case "", "ollama":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	default:
		log.Fatalf("unknown embedding provider: %s", provider)
		return nil
	}
}

// buildLLM selects the generation provider from config and wraps it in a
// client-side rate limiter.
func buildLLM(cfg *file.ConfigStore) driven.LLMService {
	var svc driven.LLMService
	switch provider := cfg.GetString("llm.provider"); provider {
	case "openai":
		s, err := llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			log.Fatalf("openai llm: %v", err)
		}
		svc = s
	case "gemini":
		s, err := llmgemini.NewLLMService(llmgemini.Config{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			log.Fatalf("gemini llm: %v", err)
		}
		svc = s
	case "", "ollama":
		svc = llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	default:
		log.Fatalf("unknown llm provider: %s", provider)
	}

	rpm := cfg.GetInt("llm.requests_per_minute")
	if rpm <= 0 {
		rpm = 60
	}
	return ratelimit.New(svc, rpm)
}

// buildVectorStore selects the vector backend. Memory is the default and
// keeps the index process-local; qdrant persists it across runs.
func buildVectorStore(cfg *file.ConfigStore, embedder driven.EmbeddingService) driven.VectorStore {
	switch provider := cfg.GetString("vector.provider"); provider {
	case "qdrant":
		return qdrant.New(qdrant.Config{
			URL:    cfg.GetString("vector.url"),
			APIKey: os.Getenv("QDRANT_API_KEY"),
		}, embedder)
	case "", "memory":
		return memory.New(embedder)
	default:
		log.Fatalf("unknown vector provider: %s", provider)
		return nil
	}
}
