package chat

import (
	"context"
	"errors"
	"testing"
)

func TestNewSessionGreets(t *testing.T) {
	s := NewSession(nil)
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != RoleAssistant || msgs[0].Content != Greeting {
		t.Fatalf("unexpected opening messages: %+v", msgs)
	}
	if len(msgs[0].ID) != 26 {
		t.Errorf("expected ULID id, got %q", msgs[0].ID)
	}
}

func TestSendPassesHistoryFromFirstUserMessage(t *testing.T) {
	var calls [][]Message
	s := NewSession(func(ctx context.Context, history []Message, message string) (string, error) {
		calls = append(calls, history)
		return "reply to " + message, nil
	})
	ctx := context.Background()

	reply, err := s.Send(ctx, "what is a goroutine?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Content != "reply to what is a goroutine?" || reply.Role != RoleAssistant {
		t.Errorf("unexpected reply %+v", reply)
	}
	if len(calls[0]) != 0 {
		t.Errorf("first call should send no history, got %d messages", len(calls[0]))
	}

	if _, err := s.Send(ctx, "and channels?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	h := calls[1]
	if len(h) != 2 || h[0].Role != RoleUser || h[0].Content != "what is a goroutine?" {
		t.Errorf("second call history = %+v", h)
	}
	if n := len(s.Messages()); n != 5 {
		t.Errorf("expected 5 messages, got %d", n)
	}
}

func TestSendFailureAppendsApology(t *testing.T) {
	boom := errors.New("boom")
	s := NewSession(func(context.Context, []Message, string) (string, error) {
		return "", boom
	})

	msg, err := s.Send(context.Background(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if msg.Content != Apology {
		t.Errorf("expected apology, got %q", msg.Content)
	}
	msgs := s.Messages()
	if msgs[len(msgs)-1].Content != Apology || msgs[len(msgs)-2].Content != "hello" {
		t.Errorf("unexpected transcript %+v", msgs)
	}
}

func TestSendRejectsBlank(t *testing.T) {
	s := NewSession(nil)
	if _, err := s.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if len(s.Messages()) != 1 {
		t.Error("blank message should not be recorded")
	}
}

func TestSinceFirstUser(t *testing.T) {
	msgs := []Message{
		{Role: RoleAssistant, Content: "hi"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	}
	got := SinceFirstUser(msgs)
	if len(got) != 2 || got[0].Content != "q" {
		t.Errorf("SinceFirstUser = %+v", got)
	}
	got[0].Content = "changed"
	if msgs[1].Content != "q" {
		t.Error("result shares storage with input")
	}
	if len(SinceFirstUser(msgs[:1])) != 0 {
		t.Error("expected empty history without user messages")
	}
}
