package dispatcher

import (
	"context"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

type subscription struct {
	name    string
	handler Handler
}
