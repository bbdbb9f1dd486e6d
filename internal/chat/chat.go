// Package chat keeps a companion conversation bound to a learning plan.
package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// Greeting opens every session.
	Greeting = "Hi! I'm your learning companion. I can help answer questions about your plan or explain concepts. What are we working on?"
	// Apology replaces the assistant reply when the responder fails.
	Apology = "I'm having trouble connecting to my brain right now. Please check your API key."
)

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("empty message")

// Message is one turn of the conversation.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Responder produces the assistant reply for message given the prior history.
type Responder func(ctx context.Context, history []Message, message string) (string, error)

// Session is an in-memory conversation. It is not persisted.
type Session struct {
	respond Responder
	now     func() time.Time

	mu       sync.Mutex
	entropy  *rand.Rand
	messages []Message
}

// NewSession starts a conversation with the greeting.
func NewSession(respond Responder) *Session {
	s := &Session{
		respond: respond,
		now:     time.Now,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.messages = []Message{s.newMessage(RoleAssistant, Greeting)}
	return s
}

func (s *Session) newMessage(role Role, content string) Message {
	at := s.now()
	return Message{
		ID:      ulid.MustNew(ulid.Timestamp(at), s.entropy).String(),
		Role:    role,
		Content: content,
		At:      at,
	}
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Send appends the user message, asks the responder and appends its reply.
// On failure the apology is appended and the error returned.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	history := SinceFirstUser(s.messages)
	s.messages = append(s.messages, s.newMessage(RoleUser, text))
	s.mu.Unlock()

	var (
		reply string
		err   error
	)
	if s.respond == nil {
		err = errors.New("no responder configured")
	} else {
		reply, err = s.respond(ctx, history, text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		msg := s.newMessage(RoleAssistant, Apology)
		s.messages = append(s.messages, msg)
		return msg, err
	}
	msg := s.newMessage(RoleAssistant, reply)
	s.messages = append(s.messages, msg)
	return msg, nil
}

// SinceFirstUser drops the messages before the first user message. The
// result is a fresh slice.
func SinceFirstUser(msgs []Message) []Message {
	for i, m := range msgs {
		if m.Role == RoleUser {
			return append([]Message(nil), msgs[i:]...)
		}
	}
	return []Message{}
}
