package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/phrazzld/cardsort-api/internal/config"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the subset of genai.Models used by the namer.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Namer asks a Gemini model to name clusters of card labels.
type Namer struct {
	models     contentGenerator
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewNamer creates a Namer backed by the Gemini API.
func NewNamer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Namer, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	logger.InfoContext(ctx, "Initialized Gemini namer", "model", cfg.ModelName)
	return newNamer(client.Models, logger, cfg), nil
}

func newNamer(models contentGenerator, logger *slog.Logger, cfg config.LLMConfig) *Namer {
	return &Namer{
		models:     models,
		model:      cfg.ModelName,
		timeout:    cfg.Timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		retryDelay: cfg.RetryDelay,
		logger:     logger.With(slog.String("component", "gemini_namer")),
		sleep:      sleepContext,
	}
}

// NameCategories returns one name per cluster, in cluster order.
func (n *Namer) NameCategories(ctx context.Context, clusters [][]string) ([]string, error) {
	if len(clusters) == 0 {
		return []string{}, nil
	}

	prompt, err := buildPrompt(clusters)
	if err != nil {
		return nil, err
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	names, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(names) != len(clusters) {
		return nil, fmt.Errorf("%w: got %d names for %d clusters",
			ErrInvalidResponse, len(names), len(clusters))
	}
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
		if names[i] == "" {
			return nil, fmt.Errorf("%w: empty name for cluster %d", ErrInvalidResponse, i)
		}
	}
	return names, nil
}

// callWithRetry retries failed API calls with exponential backoff and jitter.
// Blocked or unparsable answers are returned without retrying.
func (n *Namer) callWithRetry(ctx context.Context, prompt string) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, n.logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		names, err := n.call(ctx, prompt)
		if err == nil {
			log.DebugContext(ctx, "Gemini call succeeded", "attempt", attempt+1)
			return names, nil
		}

		if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrContentBlocked) {
			log.WarnContext(ctx, "Permanent error occurred, not retrying", "error", err)
			return nil, err
		}
		if attempt >= n.maxRetries {
			log.WarnContext(ctx, "Maximum retry attempts reached",
				"attempts", attempt+1, "error", err)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, n.maxRetries, err)
		}

		backoff := float64(n.retryDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))
		log.InfoContext(ctx, "Retrying Gemini call",
			"attempt", attempt+1, "delay", delay, "error", err)

		if err := n.sleep(ctx, delay); err != nil {
			log.WarnContext(ctx, "Gemini call cancelled during retry delay", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
		}
	}
}

func (n *Namer) call(ctx context.Context, prompt string) ([]string, error) {
	resp, err := n.models.GenerateContent(ctx, n.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed namesResponse
	if err := json.Unmarshal([]byte(stripFence(text.String())), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return parsed.Names, nil
}

// stripFence removes a Markdown code fence around a JSON answer.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
