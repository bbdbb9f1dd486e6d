// Package generator produces learning pathways and plans with an LLM.
package generator

import (
	"context"
	"errors"

	"github.com/rcliao/learnpath/internal/chat"
	"github.com/rcliao/learnpath/internal/config"
	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/search"
)

var (
	// ErrService wraps every failure reported by a generation backend.
	ErrService = errors.New("generation service failed")
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("gemini API key is missing: set GEMINI_API_KEY or use --mock")
)

// Service generates and revises plans and answers questions about them.
type Service interface {
	GeneratePathways(ctx context.Context, profile model.UserProfile) ([]model.Pathway, error)
	GeneratePlan(ctx context.Context, profile model.UserProfile, pathwayTitles []string) (model.Plan, error)
	RevisePlan(ctx context.Context, plan model.Plan, profile model.UserProfile, feedback string) (model.Plan, error)
	Chat(ctx context.Context, history []chat.Message, message string, planContext *model.Plan) (string, error)
}

// NewFromConfig builds the service selected by cfg. When searcher is non-nil
// generated plans are enriched with search results.
func NewFromConfig(cfg *config.Config, searcher search.Searcher, log *logger.Logger) Service {
	if cfg.LLM.Provider == "mock" {
		log.Info("using mock generation service")
		return NewMockService(0)
	}
	if cfg.LLM.APIKey == "" {
		log.Warn("gemini api key missing, generation disabled")
		return unconfigured{}
	}
	client := NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model,
		WithBaseURL(cfg.LLM.BaseURL),
		WithTimeout(cfg.LLM.Timeout()),
		WithCustomSearch(searcher != nil),
		WithLogger(log),
	)
	if searcher == nil {
		return client
	}
	return NewEnricher(client, searcher, log)
}

type unconfigured struct{}

func (unconfigured) GeneratePathways(context.Context, model.UserProfile) ([]model.Pathway, error) {
	return nil, ErrNotConfigured
}

func (unconfigured) GeneratePlan(context.Context, model.UserProfile, []string) (model.Plan, error) {
	return model.Plan{}, ErrNotConfigured
}

func (unconfigured) RevisePlan(context.Context, model.Plan, model.UserProfile, string) (model.Plan, error) {
	return model.Plan{}, ErrNotConfigured
}

func (unconfigured) Chat(context.Context, []chat.Message, string, *model.Plan) (string, error) {
	return "", ErrNotConfigured
}
