// Package chat orchestrates retrieval, factual extraction, and answer
// composition into one request/response cycle.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pepperumo/peppegpt/internal/compose"
	"github.com/pepperumo/peppegpt/internal/facts"
	"github.com/pepperumo/peppegpt/internal/keyword"
	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/internal/retrieval"
	"github.com/pepperumo/peppegpt/pkg/utils"
)

// WidenMinConfidence is the floor used for the single retry after an empty
// result set. Some context is better than none whenever anything is even
// weakly related.
const WidenMinConfidence = 0.1

const sessionIDPrefix = "session_"

// Recorder persists finished chat exchanges. Implementations must be safe
// for concurrent use. Recording failures are logged by the service and never
// fail the request.
type Recorder interface {
	RecordExchange(ctx context.Context, sessionID, question string, answer models.Answer) error
}

// Service sequences the pipeline for one chat request: search, widen-retry,
// factual extraction, then composition. It stays available in a degraded mode
// when the retrieval engine never initialized.
type Service struct {
	engine    *retrieval.Engine
	extractor *facts.Extractor
	composer  *compose.Composer
	fallback  *keyword.Index // optional keyword index for degraded mode
	recorder  Recorder       // optional session log
	subject   string
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the orchestrator. fallback and recorder may be nil.
func NewService(engine *retrieval.Engine, extractor *facts.Extractor, composer *compose.Composer, fallback *keyword.Index, recorder Recorder, subject string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:    engine,
		extractor: extractor,
		composer:  composer,
		fallback:  fallback,
		recorder:  recorder,
		subject:   subject,
		logger:    logger,
		now:       time.Now,
	}
}

// NewSessionID synthesizes a session id from the given time, UTC, with a
// fixed textual prefix.
func NewSessionID(t time.Time) string {
	return sessionIDPrefix + t.UTC().Format("20060102_150405")
}

// Chat answers one question. Validation failures are the only errors it
// returns; every other failure degrades to a well-formed lower-confidence
// answer.
func (s *Service) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID(s.now())
	}

	answer := s.answer(ctx, req)

	if s.recorder != nil {
		if err := s.recorder.RecordExchange(ctx, sessionID, req.Message, answer); err != nil {
			s.logger.Warn("failed to record chat exchange",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}

	return &models.ChatResponse{
		Response:     answer.Text,
		Confidence:   answer.Confidence,
		Sources:      answer.Sources,
		ResponseType: answer.Type,
		SessionID:    sessionID,
		Timestamp:    s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) answer(ctx context.Context, req *models.ChatRequest) models.Answer {
	if !s.engine.Initialized() {
		return s.degraded(req.Message)
	}

	chunks, err := s.engine.Search(ctx, req.Message, req.MaxContextChunks, req.MinConfidence)
	if err != nil {
		if errors.Is(err, retrieval.ErrNotInitialized) {
			return s.degraded(req.Message)
		}
		s.logger.Warn("search failed", zap.String("question", req.Message), zap.Error(err))
		chunks = nil
	}

	// One retry with a lower floor so weakly related content still reaches
	// the composer.
	if len(chunks) == 0 && req.MinConfidence > WidenMinConfidence {
		widened, werr := s.engine.Search(ctx, req.Message, req.MaxContextChunks, WidenMinConfidence)
		if werr != nil {
			s.logger.Warn("widened search failed", zap.Error(werr))
		} else {
			chunks = widened
		}
	}

	contextText := compose.BuildContext(chunks)
	if fact := s.extractor.Extract(req.Message, contextText, chunks); fact != nil {
		return *fact
	}
	return s.composer.Compose(ctx, req.Message, chunks, req.History)
}

// degraded serves a reduced-quality answer while the embedding index is down:
// a keyword match when the fallback index has content, otherwise a fixed
// out-of-scope reply.
func (s *Service) degraded(question string) models.Answer {
	if s.fallback != nil && s.fallback.Size() > 0 {
		results, err := s.fallback.Search(question, 3)
		if err != nil {
			s.logger.Warn("keyword fallback failed", zap.Error(err))
		} else if len(results) > 0 {
			sources := make([]string, 0, len(results))
			for _, r := range results {
				sources = append(sources, r.Section)
			}
			return models.Answer{
				Text:       fmt.Sprintf("Based on %s's CV: %s", s.subject, utils.Truncate(results[0].Content, 200)),
				Confidence: 0.4,
				Sources:    sources,
				Type:       models.ResponseSemanticSearchOnly,
			}
		}
	}
	return models.Answer{
		Text: fmt.Sprintf("I can only answer questions about %s's professional background right now. "+
			"Please try again later or ask about his experience, skills, or projects.", s.subject),
		Confidence: 0.2,
		Sources:    []string{},
		Type:       models.ResponseOutOfScope,
	}
}

// Search runs raw retrieval for the search endpoint. When the engine never
// initialized it falls back to the keyword index rather than failing.
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		results []models.SearchResult
		err     error
	)
	if s.engine.Initialized() {
		results, err = s.engine.Search(ctx, req.Query, req.MaxResults, req.MinConfidence)
	} else if s.fallback != nil {
		results, err = s.fallback.Search(req.Query, req.MaxResults)
	} else {
		err = retrieval.ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}

	return &models.SearchResponse{
		Query:        req.Query,
		Results:      results,
		TotalResults: len(results),
		Timestamp:    s.now().UTC().Format(time.RFC3339),
	}, nil
}

// Initialized reports whether the semantic retrieval path is available.
func (s *Service) Initialized() bool {
	return s.engine.Initialized()
}
