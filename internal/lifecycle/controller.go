// Package lifecycle drives a plan from onboarding through generation, review
// and revision to the dashboard where progress is tracked.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rcliao/learnpath/internal/chat"
	"github.com/rcliao/learnpath/internal/generator"
	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/progress"
	"github.com/rcliao/learnpath/internal/store"
)

// State names a controller state.
type State string

const (
	StateUninitialized      State = "uninitialized"
	StateHome               State = "home"
	StateOnboarding         State = "onboarding"
	StateGeneratingPathways State = "generating-pathways"
	StatePathways           State = "pathways"
	StateGeneratingPlan     State = "generating-plan"
	StateReview             State = "review"
	StateRevising           State = "revising"
	StateRevisingLoading    State = "revising-loading"
	StateDashboard          State = "dashboard"
)

// Loading reports whether the state waits on the generation service.
func (s State) Loading() bool {
	return s == StateGeneratingPathways || s == StateGeneratingPlan || s == StateRevisingLoading
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrEmptySelection    = errors.New("select at least one pathway")
	ErrUnknownPathway    = errors.New("unknown pathway")
	ErrRevisionUsed      = errors.New("plan has already been revised")
	ErrEmptyFeedback     = errors.New("feedback is required")
)

// User-facing notices.
const (
	NoticePathwaysFailed = "Something went wrong generating learning pathways. Please check your API key."
	NoticePlanFailed     = "Something went wrong generating the plan. Please check your API key."
	NoticeReviseFailed   = "Something went wrong revising the plan. Please try again."
	NoticeNotDurable     = "Your progress could not be saved. Changes will be lost when you quit."
)

// SessionFactory creates the chat session for a dashboard visit.
type SessionFactory func(respond chat.Responder) *chat.Session

// Controller is the plan lifecycle state machine. It is safe for concurrent
// use; the lock is never held while the generation service runs.
type Controller struct {
	store      store.Store
	svc        generator.Service
	log        *logger.Logger
	newSession SessionFactory

	mu         sync.Mutex
	state      State
	profile    model.UserProfile
	pathways   []model.Pathway
	selected   []string
	plan       model.Plan
	activeID   string
	hasRevised bool
	notice     string
	session    *chat.Session
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSessionFactory overrides how chat sessions are created.
func WithSessionFactory(f SessionFactory) Option {
	return func(c *Controller) {
		if f != nil {
			c.newSession = f
		}
	}
}

// New creates a controller in the uninitialized state.
func New(st store.Store, svc generator.Service, opts ...Option) *Controller {
	c := &Controller{
		store:      st,
		svc:        svc,
		log:        logger.Nop(),
		newSession: chat.NewSession,
		state:      StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, c.state)
}

func (c *Controller) setState(s State) {
	if c.state != s {
		c.log.Debug("state transition", "from", c.state, "to", s)
	}
	c.state = s
}

// Start leaves the uninitialized state for home when plans exist, otherwise
// for onboarding.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUninitialized {
		return c.invalid("start")
	}
	if c.store.HasPlans(ctx) {
		c.setState(StateHome)
	} else {
		c.setState(StateOnboarding)
	}
	return nil
}

// Plans lists stored plans, most recently updated first.
func (c *Controller) Plans(ctx context.Context) []model.PlanRecord {
	return c.store.GetAllPlans(ctx)
}

// CreateNew starts onboarding for a new plan.
func (c *Controller) CreateNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateHome {
		return c.invalid("create new")
	}
	c.resetWorking()
	c.setState(StateOnboarding)
	return nil
}

func (c *Controller) resetWorking() {
	c.profile = model.UserProfile{}
	c.pathways = nil
	c.selected = nil
	c.plan = model.Plan{}
	c.hasRevised = false
	c.session = nil
}

// SelectPlan opens a stored plan on the dashboard and makes it active.
func (c *Controller) SelectPlan(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateHome {
		return c.invalid("select plan")
	}
	rec, ok := c.store.GetPlan(ctx, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	c.store.SetActivePlan(ctx, id)
	c.checkDurable()
	c.enterDashboard(rec)
	return nil
}

func (c *Controller) enterDashboard(rec model.PlanRecord) {
	c.activeID = rec.ID
	c.profile = rec.UserProfile
	c.plan = rec.Plan.Clone()
	c.session = c.newSession(c.respond)
	c.setState(StateDashboard)
}

// respond answers chat messages against the current working plan.
func (c *Controller) respond(ctx context.Context, history []chat.Message, message string) (string, error) {
	plan := c.Plan()
	return c.svc.Chat(ctx, history, message, &plan)
}

// SubmitProfile records the profile and asks the service for pathways. On
// failure the controller returns to onboarding with a notice.
func (c *Controller) SubmitProfile(ctx context.Context, profile model.UserProfile) error {
	c.mu.Lock()
	if c.state != StateOnboarding {
		err := c.invalid("submit profile")
		c.mu.Unlock()
		return err
	}
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.profile = profile
	c.pathways, c.selected = nil, nil
	c.setState(StateGeneratingPathways)
	c.mu.Unlock()

	pathways, err := c.svc.GeneratePathways(ctx, profile)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		err = model.ValidatePathways(pathways)
	}
	if err != nil {
		c.log.Error("generate pathways failed", "topic", profile.Topic, "error", err)
		c.notice = NoticePathwaysFailed
		c.setState(StateOnboarding)
		return fmt.Errorf("generate pathways: %w", err)
	}
	c.pathways = append([]model.Pathway(nil), pathways...)
	c.setState(StatePathways)
	return nil
}

// SelectPathways generates a plan focused on the chosen pathways. On failure
// the controller returns to pathway selection with a notice.
func (c *Controller) SelectPathways(ctx context.Context, ids []string) error {
	c.mu.Lock()
	if c.state != StatePathways {
		err := c.invalid("select pathways")
		c.mu.Unlock()
		return err
	}
	if len(ids) == 0 {
		c.mu.Unlock()
		return ErrEmptySelection
	}
	byID := make(map[string]model.Pathway, len(c.pathways))
	for _, p := range c.pathways {
		byID[p.ID] = p
	}
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownPathway, id)
		}
		titles = append(titles, p.Title)
	}
	c.selected = append([]string(nil), ids...)
	profile := c.profile
	c.setState(StateGeneratingPlan)
	c.mu.Unlock()

	plan, err := c.svc.GeneratePlan(ctx, profile, titles)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		err = plan.Validate()
	}
	if err != nil {
		c.log.Error("generate plan failed", "topic", profile.Topic, "pathways", titles, "error", err)
		c.notice = NoticePlanFailed
		c.setState(StatePathways)
		return fmt.Errorf("generate plan: %w", err)
	}
	c.plan = plan.Clone()
	c.setState(StateReview)
	return nil
}

// Confirm persists the reviewed plan and opens it on the dashboard.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReview {
		return c.invalid("confirm")
	}
	profile, plan := c.profile, c.plan.Clone()
	id := c.store.SavePlan(ctx, profile, plan)
	c.hasRevised = false
	c.profile, c.plan, c.pathways, c.selected = model.UserProfile{}, model.Plan{}, nil, nil

	rec, ok := c.store.GetPlan(ctx, id)
	if !ok {
		// The write did not land; keep working from memory for this session.
		rec = model.PlanRecord{ID: id, UserProfile: profile, Plan: plan}
	}
	c.checkDurable()
	c.log.Info("plan confirmed", "plan_id", rec.ID, "topic", rec.Plan.Topic)
	c.enterDashboard(rec)
	return nil
}

// RequestRevision moves from review to feedback collection. Only one
// revision is allowed per review cycle.
func (c *Controller) RequestRevision() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReview {
		return c.invalid("request revision")
	}
	if c.hasRevised {
		return ErrRevisionUsed
	}
	c.setState(StateRevising)
	return nil
}

// SubmitFeedback asks the service to revise the plan. On failure the
// controller returns to feedback collection with a notice.
func (c *Controller) SubmitFeedback(ctx context.Context, feedback string) error {
	feedback = strings.TrimSpace(feedback)
	c.mu.Lock()
	if c.state != StateRevising {
		err := c.invalid("submit feedback")
		c.mu.Unlock()
		return err
	}
	if feedback == "" {
		c.mu.Unlock()
		return ErrEmptyFeedback
	}
	plan, profile := c.plan.Clone(), c.profile
	c.setState(StateRevisingLoading)
	c.mu.Unlock()

	revised, err := c.svc.RevisePlan(ctx, plan, profile, feedback)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		err = revised.Validate()
	}
	if err != nil {
		c.log.Error("revise plan failed", "topic", profile.Topic, "error", err)
		c.notice = NoticeReviseFailed
		c.setState(StateRevising)
		return fmt.Errorf("revise plan: %w", err)
	}
	c.plan = revised.Clone()
	c.hasRevised = true
	c.setState(StateReview)
	return nil
}

// ToggleStep flips a step on the working plan and writes it through to the
// store. Unknown steps are ignored.
func (c *Controller) ToggleStep(ctx context.Context, dayID, stepID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDashboard {
		return c.invalid("toggle step")
	}
	if a, ok := progress.Find(c.plan, stepID); !ok || a.DayID != dayID {
		c.log.Debug("toggle of unknown step ignored", "day_id", dayID, "step_id", stepID)
		return nil
	}
	c.plan = progress.ToggleStep(c.plan, dayID, stepID)
	if c.activeID != "" {
		c.store.UpdatePlan(ctx, c.activeID, c.plan)
		c.checkDurable()
	}
	return nil
}

// BackToHome writes the working plan back and returns to the plan list.
func (c *Controller) BackToHome(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDashboard {
		return c.invalid("back to home")
	}
	if c.activeID != "" {
		c.store.UpdatePlan(ctx, c.activeID, c.plan)
		c.checkDurable()
	}
	c.profile, c.plan, c.session = model.UserProfile{}, model.Plan{}, nil
	c.setState(StateHome)
	return nil
}

// Chat sends message to the companion for the plan on the dashboard.
func (c *Controller) Chat(ctx context.Context, message string) (chat.Message, error) {
	c.mu.Lock()
	if c.state != StateDashboard || c.session == nil {
		err := c.invalid("chat")
		c.mu.Unlock()
		return chat.Message{}, err
	}
	session := c.session
	c.mu.Unlock()

	msg, err := session.Send(ctx, message)
	if err != nil && !errors.Is(err, chat.ErrEmptyMessage) {
		c.log.Warn("chat failed", "error", err)
	}
	return msg, err
}

// ChatMessages returns the current dashboard conversation.
func (c *Controller) ChatMessages() []chat.Message {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}
	return session.Messages()
}

// checkDurable turns a store write failure into a notice.
func (c *Controller) checkDurable() {
	if err := c.store.WriteErr(); err != nil {
		c.log.Warn("changes are not durable", "error", err)
		c.notice = NoticeNotDurable
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Profile() model.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Controller) Pathways() []model.Pathway {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Pathway(nil), c.pathways...)
}

// Selected returns the pathway ids of the last selection.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.selected...)
}

// Plan returns a copy of the working plan.
func (c *Controller) Plan() model.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan.Clone()
}

func (c *Controller) ActivePlanID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *Controller) HasRevised() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasRevised
}

// CanRevise reports whether the revise action is offered.
func (c *Controller) CanRevise() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReview && !c.hasRevised
}

// Notice returns the pending user-facing notice, if any.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

func (c *Controller) ClearNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = ""
}
