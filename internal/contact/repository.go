package contact

import (
	"context"
	"sync"
)

// Repository persists contact messages and newsletter subscribers.
type Repository interface {
	SaveMessage(ctx context.Context, msg *Message) error
	// AddSubscriber returns ErrAlreadySubscribed when the email is known.
	AddSubscriber(ctx context.Context, sub *Subscriber) error
}

// MemoryRepository is used when no MongoDB URI is configured.
type MemoryRepository struct {
	mu          sync.Mutex
	messages    []Message
	subscribers map[string]Subscriber
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{subscribers: make(map[string]Subscriber)}
}

func (m *MemoryRepository) SaveMessage(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *MemoryRepository) AddSubscriber(_ context.Context, sub *Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscribers[sub.Email]; ok {
		return ErrAlreadySubscribed
	}
	m.subscribers[sub.Email] = *sub
	return nil
}

func (m *MemoryRepository) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}
