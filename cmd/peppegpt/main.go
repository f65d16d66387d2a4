// Package main is the PeppeGPT CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pepperumo/peppegpt/internal/chat"
	"github.com/pepperumo/peppegpt/internal/compose"
	"github.com/pepperumo/peppegpt/internal/config"
	"github.com/pepperumo/peppegpt/internal/content"
	"github.com/pepperumo/peppegpt/internal/embedding"
	"github.com/pepperumo/peppegpt/internal/facts"
	"github.com/pepperumo/peppegpt/internal/keyword"
	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/internal/retrieval"
	"github.com/pepperumo/peppegpt/internal/server"
	"github.com/pepperumo/peppegpt/internal/session"
	"github.com/pepperumo/peppegpt/internal/watcher"
	"github.com/pepperumo/peppegpt/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/peppegpt/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "search":
		runSearch()
	case "version", "--version", "-v":
		fmt.Printf("peppegpt version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: peppegpt <command> [flags]

Commands:
  server    start the HTTP API server
  chat      ask one question against a running server
  search    run a raw content search against a running server
  version   print the version
  help      show this help
`)
}

// components holds everything the server needs, built once at startup.
type components struct {
	Engine   *retrieval.Engine
	Chat     *chat.Service
	Keyword  *keyword.Index
	Sessions *session.Store
	embedder embedding.Embedder
}

func (c *components) Close() {
	if c.embedder != nil {
		_ = c.embedder.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Sessions != nil {
		_ = c.Sessions.Close()
	}
}

// buildEmbedder constructs the configured embedding backend. A construction
// failure is reported to the caller, which falls back to degraded mode.
func buildEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Backend {
	case config.EmbeddingBackendOpenAI:
		return embedding.NewOpenAIEmbedder(config.OpenAIAPIKey(), cfg.Embedding.Model, cfg.Embedding.Dimensions, cfg.Embedding.CacheSize)
	case config.EmbeddingBackendLocal:
		return embedding.NewLocalEmbedder(cfg.Embedding.ModelPath, cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens, cfg.Embedding.CacheSize)
	case config.EmbeddingBackendMock:
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend: %q", cfg.Embedding.Backend)
	}
}

// buildGenerator constructs the configured generation backend, or nil for
// the template-only mode.
func buildGenerator(ctx context.Context, cfg *config.Config) (compose.Generator, error) {
	switch cfg.Generation.Backend {
	case config.GenerationBackendOpenAI:
		return compose.NewOpenAIGenerator(config.OpenAIAPIKey(), cfg.Generation.Model)
	case config.GenerationBackendGemini:
		return compose.NewGeminiGenerator(ctx, config.GeminiAPIKey(), cfg.Generation.Model)
	case config.GenerationBackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generation backend: %q", cfg.Generation.Backend)
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	c := &components{}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		logger.Warn("embedding backend unavailable, running degraded",
			zap.String("backend", cfg.Embedding.Backend),
			zap.Error(err),
		)
		embedder = nil
	}
	c.embedder = embedder
	c.Engine = retrieval.NewEngine(embedder, logger)

	kw, err := keyword.NewIndex()
	if err != nil {
		logger.Warn("keyword index unavailable", zap.Error(err))
	} else {
		c.Keyword = kw
	}

	chunks, source, err := content.Load(cfg.Content.AIContentPath, cfg.Content.StructuredPath)
	if err != nil {
		logger.Error("failed to load CV content", zap.Error(err))
	} else {
		logger.Info("content loaded", zap.String("source", source), zap.Int("chunks", len(chunks)))
		if embedder != nil {
			if err := c.Engine.Load(ctx, chunks); err != nil {
				logger.Error("failed to build embedding index, running degraded", zap.Error(err))
			}
		}
		if c.Keyword != nil {
			if err := c.Keyword.Load(chunks); err != nil {
				logger.Warn("failed to build keyword index", zap.Error(err))
			}
		}
	}

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		logger.Warn("generation backend unavailable, template answers only",
			zap.String("backend", cfg.Generation.Backend),
			zap.Error(err),
		)
		generator = nil
	}

	if cfg.Sessions.Enabled {
		store, err := session.NewStore(cfg.Sessions.DatabasePath)
		if err != nil {
			logger.Warn("session log unavailable", zap.Error(err))
		} else {
			c.Sessions = store
		}
	}

	subject := cfg.Subject.Name
	extractor := facts.NewExtractor(subject)
	composer := compose.NewComposer(generator, subject, cfg.Generation.Timeout(), logger)
	var recorder chat.Recorder
	if c.Sessions != nil {
		recorder = c.Sessions
	}
	c.Chat = chat.NewService(c.Engine, extractor, composer, c.Keyword, recorder, subject, logger)
	return c, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var watchSvc *watcher.Watcher
	if cfg.Content.WatchEnabled {
		reload := func() {
			chunks, source, err := content.Load(cfg.Content.AIContentPath, cfg.Content.StructuredPath)
			if err != nil {
				logger.Warn("content reload failed", zap.Error(err))
				return
			}
			if err := components.Engine.Load(context.Background(), chunks); err != nil {
				logger.Warn("embedding index rebuild failed", zap.Error(err))
			}
			if components.Keyword != nil {
				if err := components.Keyword.Load(chunks); err != nil {
					logger.Warn("keyword index rebuild failed", zap.Error(err))
				}
			}
			logger.Info("content reloaded", zap.String("source", source), zap.Int("chunks", len(chunks)))
		}
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.NewWatcher(cfg.Content.AIContentPath, reload, watchOpts...)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Warn("failed to start content watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Chat, components.Engine, components.Sessions, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	sessionID := fs.String("session", "", "session id (empty = server assigns one)")
	_ = fs.Parse(os.Args[2:])

	question := buildQuery(fs.Args())
	if question == "" {
		fmt.Println("Usage: peppegpt chat [flags] <question>")
		os.Exit(1)
	}

	req := models.ChatRequest{Message: question, SessionID: *sessionID}
	var resp models.ChatResponse
	if err := postJSON(*serverURL+"/api/v1/chat", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(resp.Response)
	fmt.Printf("\n[%s, confidence %.2f, session %s]\n", resp.ResponseType, resp.Confidence, resp.SessionID)
	if len(resp.Sources) > 0 {
		fmt.Printf("Sources: %s\n", strings.Join(resp.Sources, ", "))
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 5, "number of results")
	minConfidence := fs.Float64("min-confidence", 0.3, "minimum confidence")
	_ = fs.Parse(os.Args[2:])

	query := buildQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: peppegpt search [flags] <query>")
		os.Exit(1)
	}

	req := models.SearchRequest{Query: query, MaxResults: *limit, MinConfidence: *minConfidence}
	var resp models.SearchResponse
	if err := postJSON(*serverURL+"/api/v1/search", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	if resp.TotalResults == 0 {
		fmt.Println("No results.")
		return
	}
	for i, r := range resp.Results {
		fmt.Printf("%d. [%s] %.2f  %s\n", i+1, r.Section, r.Confidence, r.Content)
	}
}

func postJSON(url string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	httpResp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}
	if httpResp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", httpResp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", httpResp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
