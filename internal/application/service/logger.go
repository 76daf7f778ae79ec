package service

import (
	"context"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// EventPublisher hands events to subscribers without waiting for them
type EventPublisher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}

type nopPublisher struct{}

func (nopPublisher) DispatchAsync(context.Context, *event.Event) {}
