package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Subject.Name == "" {
		cfg.Subject.Name = "Giuseppe"
	}
	if cfg.Content.AIContentPath == "" {
		cfg.Content.AIContentPath = "./data/cv_ai_content.json"
	}
	if cfg.Content.StructuredPath == "" {
		cfg.Content.StructuredPath = "./data/cv_structured.json"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = EmbeddingBackendOpenAI
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "./data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Backend {
		case EmbeddingBackendLocal:
			cfg.Embedding.Dimensions = 384
		default:
			cfg.Embedding.Dimensions = 1536
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1024
	}
	if cfg.Generation.Backend == "" {
		cfg.Generation.Backend = GenerationBackendNone
	}
	if cfg.Generation.Model == "" {
		switch cfg.Generation.Backend {
		case GenerationBackendGemini:
			cfg.Generation.Model = "gemini-2.5-flash"
		default:
			cfg.Generation.Model = "gpt-5-nano"
		}
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 30
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.MinConfidence == 0 {
		cfg.Search.MinConfidence = 0.3
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 30
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.CORS.AllowedOrigins == nil {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Sessions.DatabasePath == "" {
		cfg.Sessions.DatabasePath = "./data/sessions.db"
	}
}
