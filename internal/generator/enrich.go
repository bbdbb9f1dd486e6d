package generator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/search"
)

const (
	enrichConcurrency = 4
	resultsPerStep    = 5
)

// Enricher wraps a Service and fills step URLs in generated and revised
// plans with web search results.
type Enricher struct {
	Service
	searcher search.Searcher
	log      *logger.Logger
}

// NewEnricher decorates svc.
func NewEnricher(svc Service, searcher search.Searcher, log *logger.Logger) *Enricher {
	return &Enricher{Service: svc, searcher: searcher, log: log}
}

func (e *Enricher) GeneratePlan(ctx context.Context, profile model.UserProfile, pathwayTitles []string) (model.Plan, error) {
	plan, err := e.Service.GeneratePlan(ctx, profile, pathwayTitles)
	if err != nil {
		return model.Plan{}, err
	}
	return e.Enrich(ctx, plan, profile.Topic), nil
}

func (e *Enricher) RevisePlan(ctx context.Context, plan model.Plan, profile model.UserProfile, feedback string) (model.Plan, error) {
	revised, err := e.Service.RevisePlan(ctx, plan, profile, feedback)
	if err != nil {
		return model.Plan{}, err
	}
	return e.Enrich(ctx, revised, profile.Topic), nil
}

type lookup struct {
	query    string
	stepType model.StepType
}

// Enrich returns a copy of plan where each step takes the first unused
// result of a search for its type and title. Steps sharing type and title
// share one search. Failed searches leave the step untouched.
func (e *Enricher) Enrich(ctx context.Context, plan model.Plan, topic string) model.Plan {
	out := plan.Clone()
	if e.searcher == nil {
		return out
	}

	lookups := map[string]lookup{}
	for _, d := range out.Days {
		for _, s := range d.Steps {
			key := string(s.Type) + "-" + s.Title
			if _, ok := lookups[key]; !ok {
				lookups[key] = lookup{query: topic + " " + s.Title, stepType: s.Type}
			}
		}
	}

	var (
		mu      sync.Mutex
		results = make(map[string][]search.Result, len(lookups))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for key, lk := range lookups {
		key, lk := key, lk
		g.Go(func() error {
			q := search.LearningQuery(lk.query, lk.stepType)
			res, err := e.searcher.Search(gctx, q, search.Options{Num: resultsPerStep})
			if err != nil {
				e.log.Warn("resource search failed", "query", q, "error", err)
				return nil
			}
			mu.Lock()
			results[key] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	enriched := 0
	for i := range out.Days {
		for j := range out.Days[i].Steps {
			s := &out.Days[i].Steps[j]
			key := string(s.Type) + "-" + s.Title
			res := results[key]
			if len(res) == 0 {
				continue
			}
			s.URL = res[0].URL
			s.ResourceTitle = res[0].Title
			results[key] = res[1:]
			enriched++
		}
	}
	e.log.Info("plan enriched with search results", "topic", topic, "steps", enriched, "searches", len(lookups))
	return out
}
