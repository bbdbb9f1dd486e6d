package model

import (
	"fmt"
	"strings"
)

// TimeCommitment is the daily time a learner can spend.
type TimeCommitment string

const (
	Time15Min TimeCommitment = "15min"
	Time30Min TimeCommitment = "30min"
	Time1Hr   TimeCommitment = "1hr"
	Time2HrUp TimeCommitment = "2hr+"
)

// TimeCommitments lists the allowed commitments in display order.
var TimeCommitments = []TimeCommitment{Time15Min, Time30Min, Time1Hr, Time2HrUp}

// Level is the learner's self-assessed experience.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists the allowed levels in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

const (
	DefaultTimeCommitment = Time30Min
	DefaultLevel          = LevelBeginner
)

// UserProfile captures what the learner wants. A new profile is created for
// every plan.
type UserProfile struct {
	Topic          string         `json:"topic"`
	TimeCommitment TimeCommitment `json:"timeCommitment"`
	Level          Level          `json:"level"`
	Motivation     string         `json:"motivation"`
}

// Normalize trims fields and fills in defaults for blank optional fields.
func (p UserProfile) Normalize() UserProfile {
	p.Topic = strings.TrimSpace(p.Topic)
	p.Motivation = strings.TrimSpace(p.Motivation)
	p.TimeCommitment = TimeCommitment(strings.ToLower(strings.TrimSpace(string(p.TimeCommitment))))
	p.Level = Level(strings.ToLower(strings.TrimSpace(string(p.Level))))
	if p.TimeCommitment == "" {
		p.TimeCommitment = DefaultTimeCommitment
	}
	if p.Level == "" {
		p.Level = DefaultLevel
	}
	return p
}

// Validate requires a topic and known enum values.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if _, err := ParseTimeCommitment(string(p.TimeCommitment)); err != nil {
		return err
	}
	if _, err := ParseLevel(string(p.Level)); err != nil {
		return err
	}
	return nil
}

// ParseTimeCommitment accepts a known commitment; blank yields the default.
func ParseTimeCommitment(s string) (TimeCommitment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTimeCommitment, nil
	}
	for _, tc := range TimeCommitments {
		if string(tc) == s {
			return tc, nil
		}
	}
	return "", fmt.Errorf("unknown time commitment %q (use 15min, 30min, 1hr, 2hr+)", s)
}

// ParseLevel accepts a known level; blank yields the default.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLevel, nil
	}
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q (use beginner, intermediate, advanced)", s)
}
