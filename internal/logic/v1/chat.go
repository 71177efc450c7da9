package v1

import (
	"fmt"
	"sync"
	"time"

	"github.com/talalink/webapp/internal/core/domain"
)

// ChatService backs the mock chat UI. Threads live in memory only; there is
// no messaging backend in this design.
type ChatService struct {
	mu      sync.Mutex
	threads []domain.ChatThread
}

// NewChatService creates the service with the demo conversations.
func NewChatService() *ChatService {
	return &ChatService{
		threads: []domain.ChatThread{
			{
				ID: 1, Name: "John Doe", LastMsg: "Is the inverter ready?", Online: true, Time: "10:30 AM",
				Messages: []domain.ChatMessage{
					{From: "John Doe", Body: "Hi, I dropped off the solar inverter on Monday.", Time: "10:12 AM"},
					{From: "John Doe", Body: "Is the inverter ready?", Time: "10:30 AM"},
				},
			},
			{
				ID: 2, Name: "TechFix Thika", LastMsg: "Need parts for the pump.", Online: false, Time: "Yesterday",
				Messages: []domain.ChatMessage{
					{From: "TechFix Thika", Body: "Need parts for the pump.", Time: "Yesterday"},
				},
			},
		},
	}
}

// Threads returns all conversations, most recent first as seeded.
func (s *ChatService) Threads() []domain.ChatThread {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatThread, len(s.threads))
	copy(out, s.threads)
	return out
}

// Thread returns one conversation with its messages.
func (s *ChatService) Thread(id int) (*domain.ChatThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.threads {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("thread %d: %w", id, ErrUnknownThread)
}

// Send appends a message from the current user to a thread.
func (s *ChatService) Send(id int, body string) error {
	if body == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.threads {
		if s.threads[i].ID != id {
			continue
		}
		now := time.Now().Format("3:04 PM")
		s.threads[i].Messages = append(s.threads[i].Messages, domain.ChatMessage{
			From: "You", Body: body, Time: now, Mine: true,
		})
		s.threads[i].LastMsg = body
		s.threads[i].Time = now
		return nil
	}
	return fmt.Errorf("thread %d: %w", id, ErrUnknownThread)
}
