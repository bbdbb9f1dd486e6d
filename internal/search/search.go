// Package search finds learning resources on the web.
package search

import (
	"context"
	"fmt"

	"github.com/rcliao/learnpath/internal/config"
	"github.com/rcliao/learnpath/internal/model"
)

// Result is a single search hit.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	DisplayLink string `json:"display_link,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// Options narrows a search.
type Options struct {
	Num          int    // results wanted, 1-10
	Start        int    // 1-based offset
	SiteSearch   string // restrict to one site
	DateRestrict string // e.g. "d7", "m3"
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// LearningQuery builds the query used to find a resource of the given step
// type.
func LearningQuery(topic string, stepType model.StepType) string {
	switch stepType {
	case model.StepVideo:
		return topic + " tutorial site:youtube.com"
	case model.StepArticle:
		return topic + " tutorial guide beginner"
	case model.StepProject:
		return topic + " project tutorial hands-on"
	case model.StepExercise:
		return topic + " practice exercises"
	case model.StepQuiz:
		return topic + " quiz questions practice"
	default:
		return fmt.Sprintf("%s learn %s", topic, stepType)
	}
}

// NewFromConfig returns a Google client when credentials are configured, or
// nil. A nil Searcher means no extra resources are available.
func NewFromConfig(cfg config.SearchConfig) Searcher {
	if !cfg.Configured() {
		return nil
	}
	return NewGoogleClient(cfg.APIKey, cfg.EngineID, cfg.BaseURL)
}
