package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/learnpath/internal/chat"
	"github.com/rcliao/learnpath/internal/model"
)

// MockService returns canned content without network access. Output depends
// only on its inputs.
type MockService struct {
	delay time.Duration
}

// NewMockService returns a mock that waits delay before each answer.
func NewMockService(delay time.Duration) *MockService {
	return &MockService{delay: delay}
}

func (m *MockService) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MockService) GeneratePathways(ctx context.Context, profile model.UserProfile) ([]model.Pathway, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	topic := profile.Topic
	return []model.Pathway{
		{ID: "path-1", Title: topic + " Fundamentals", LearningGoal: "Build a solid understanding of the core ideas of " + topic + "."},
		{ID: "path-2", Title: "Practical " + topic, LearningGoal: "Apply " + topic + " to small real-world projects."},
		{ID: "path-3", Title: topic + " in Depth", LearningGoal: "Explore advanced " + topic + " techniques and trade-offs."},
	}, nil
}

func (m *MockService) GeneratePlan(ctx context.Context, profile model.UserProfile, pathwayTitles []string) (model.Plan, error) {
	if err := m.wait(ctx); err != nil {
		return model.Plan{}, err
	}
	return mockPlan(profile.Topic), nil
}

func mockPlan(topic string) model.Plan {
	return model.Plan{
		Topic: topic,
		Days: []model.Day{
			{ID: "day-1", Title: "Day 1: Foundations", Steps: []model.Step{
				{ID: "d1-s1", Title: "Introduction Video", Type: model.StepVideo, Duration: "15m", URL: "#"},
				{ID: "d1-s2", Title: "Core Concepts Article", Type: model.StepArticle, Duration: "10m", URL: "#"},
				{ID: "d1-s3", Title: "Quick Quiz", Type: model.StepQuiz, Duration: "5m"},
			}},
			{ID: "day-2", Title: "Day 2: Deep Dive", Steps: []model.Step{
				{ID: "d2-s1", Title: "Advanced Tutorial", Type: model.StepVideo, Duration: "20m", URL: "#"},
				{ID: "d2-s2", Title: "Practice Exercise", Type: model.StepExercise, Duration: "30m"},
			}},
			{ID: "day-3", Title: "Day 3: Application", Steps: []model.Step{
				{ID: "d3-s1", Title: "Build a mini-project", Type: model.StepProject, Duration: "1h"},
			}},
		},
	}
}

// RevisePlan appends a step on the last day that reflects the feedback.
func (m *MockService) RevisePlan(ctx context.Context, plan model.Plan, profile model.UserProfile, feedback string) (model.Plan, error) {
	if err := m.wait(ctx); err != nil {
		return model.Plan{}, err
	}
	out := plan.Clone()
	if len(out.Days) == 0 {
		out = mockPlan(profile.Topic)
	}
	last := &out.Days[len(out.Days)-1]
	total, _ := out.StepCount()
	last.Steps = append(last.Steps, model.Step{
		ID:          fmt.Sprintf("rev-s%d", total+1),
		Title:       "Apply feedback: " + truncate(strings.TrimSpace(feedback), 60),
		Type:        model.StepExercise,
		Duration:    "15m",
		Description: feedback,
	})
	return out, nil
}

func (m *MockService) Chat(ctx context.Context, history []chat.Message, message string, planContext *model.Plan) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if planContext == nil {
		return fmt.Sprintf("You asked: %q. Start a plan and I can help you with it.", message), nil
	}
	return fmt.Sprintf("You asked: %q. Your %s plan has %d days; keep going one step at a time.",
		message, planContext.Topic, len(planContext.Days)), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
