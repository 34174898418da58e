package infrastructure

import (
	"context"
	"sync"
)

// InMemoryMessagePublisher records bus messages for tests and local tooling
type InMemoryMessagePublisher struct {
	mu       sync.Mutex
	Messages []PublishedMessage
	Err      error
}

// PublishedMessage is a single recorded bus message
type PublishedMessage struct {
	Subject string
	Data    []byte
}

// Publish records the message or returns the configured error
func (p *InMemoryMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, PublishedMessage{Subject: subject, Data: data})
	return nil
}

// Subjects returns the recorded subjects in publish order
func (p *InMemoryMessagePublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	subjects := make([]string, len(p.Messages))
	for i, m := range p.Messages {
		subjects[i] = m.Subject
	}
	return subjects
}
