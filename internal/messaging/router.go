package messaging

import (
	"context"

	"github.com/sirupsen/logrus"
)

// HandlerFunc processes one inbound message body. A returned error means the
// delivery should be redelivered; business failures must be absorbed by the
// handler (converted to outcome events) and reported as nil.
type HandlerFunc func(ctx context.Context, body []byte) error

// Router maps a topic string to its handler. It replaces the annotation-based
// message dispatch of framework runtimes with a plain lookup table.
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

func (r *Router) Handle(topic string, handler HandlerFunc) {
	r.handlers[topic] = handler
}

// Dispatch routes the message to the registered handler. Unknown topics are
// logged and dropped so a stray binding cannot poison the queue.
func (r *Router) Dispatch(ctx context.Context, topic string, body []byte) error {
	handler, ok := r.handlers[topic]
	if !ok {
		logrus.Warnf("No handler registered for topic %q, dropping message", topic)
		return nil
	}
	return handler(ctx, body)
}
