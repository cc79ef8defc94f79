package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/mailer"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if msg.To == "" {
		return mailer.ErrNoRecipient
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type fakeGateway struct {
	requests []gateway.LinkRequest
	err      error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreatePaymentLink(_ context.Context, req gateway.LinkRequest) (*gateway.Link, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	n := len(g.requests)
	return &gateway.Link{
		ID:     fmt.Sprintf("plink_%d", n),
		URL:    fmt.Sprintf("https://rzp.io/i/link%d", n),
		Status: "created",
	}, nil
}

type fakeLock struct {
	held     map[string]bool
	released []string
	err      error
}

func (l *fakeLock) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, key string) error {
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}
