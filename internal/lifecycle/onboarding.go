package lifecycle

import (
	"errors"
	"strings"

	"github.com/rcliao/learnpath/internal/model"
)

// Field is one onboarding question.
type Field int

const (
	FieldTopic Field = iota
	FieldTimeCommitment
	FieldLevel
	FieldMotivation
	fieldCount
)

// ErrTopicRequired is returned when the topic answer is blank.
var ErrTopicRequired = errors.New("topic is required")

var fieldPrompts = [...]string{
	FieldTopic:          "What do you want to learn?",
	FieldTimeCommitment: "How much time do you have daily?",
	FieldLevel:          "What is your current level?",
	FieldMotivation:     "Why are you learning this? (Optional)",
}

var fieldPlaceholders = [...]string{
	FieldTopic:          "e.g. Python, Pottery, History of Rome...",
	FieldTimeCommitment: "15min, 30min, 1hr, 2hr+",
	FieldLevel:          "beginner, intermediate, advanced",
	FieldMotivation:     "To get a job, just for fun, etc...",
}

// Onboarding collects a UserProfile one field at a time.
type Onboarding struct {
	field   Field
	profile model.UserProfile
}

// NewOnboarding starts at the topic question with defaults for the optional
// fields.
func NewOnboarding() *Onboarding {
	return &Onboarding{profile: model.UserProfile{
		TimeCommitment: model.DefaultTimeCommitment,
		Level:          model.DefaultLevel,
	}}
}

// Field returns the current question.
func (o *Onboarding) Field() Field { return o.field }

// Step returns the 1-based question number and the total.
func (o *Onboarding) Step() (int, int) {
	n := int(o.field) + 1
	if n > int(fieldCount) {
		n = int(fieldCount)
	}
	return n, int(fieldCount)
}

// Prompt returns the question text for the current field.
func (o *Onboarding) Prompt() string {
	if o.Done() {
		return ""
	}
	return fieldPrompts[o.field]
}

// Placeholder returns example input for the current field.
func (o *Onboarding) Placeholder() string {
	if o.Done() {
		return ""
	}
	return fieldPlaceholders[o.field]
}

// Answer records value for the current field and advances. Blank optional
// answers keep the default.
func (o *Onboarding) Answer(value string) error {
	value = strings.TrimSpace(value)
	switch o.field {
	case FieldTopic:
		if value == "" {
			return ErrTopicRequired
		}
		o.profile.Topic = value
	case FieldTimeCommitment:
		tc, err := model.ParseTimeCommitment(value)
		if err != nil {
			return err
		}
		if value != "" {
			o.profile.TimeCommitment = tc
		}
	case FieldLevel:
		l, err := model.ParseLevel(value)
		if err != nil {
			return err
		}
		if value != "" {
			o.profile.Level = l
		}
	case FieldMotivation:
		o.profile.Motivation = value
	default:
		return nil
	}
	o.field++
	return nil
}

// Back returns to the previous question. It is a no-op on the first.
func (o *Onboarding) Back() {
	if o.field > FieldTopic {
		o.field--
	}
}

// Done reports whether all questions are answered.
func (o *Onboarding) Done() bool { return o.field >= fieldCount }

// Profile returns the profile collected so far.
func (o *Onboarding) Profile() model.UserProfile { return o.profile }
