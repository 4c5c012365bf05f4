// Package mediator dispatches application commands and queries to their
// registered handlers, decoupling the CLI and trigger layers from the
// use-case implementations.
package mediator

import (
	"context"
	"fmt"
	"reflect"
)

// Request is a command or query payload.
type Request interface{}

// Response is the result of handling a request.
type Response interface{}

// Handler handles one request type.
type Handler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Middleware wraps request handling, e.g. for metrics or logging.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Mediator routes requests by concrete type.
type Mediator struct {
	handlers    map[reflect.Type]Handler
	middlewares []Middleware
}

// New creates an empty mediator.
func New() *Mediator {
	return &Mediator{handlers: make(map[reflect.Type]Handler)}
}

// Use appends a middleware. Middlewares run in registration order around
// every Send.
func (m *Mediator) Use(mw Middleware) {
	m.middlewares = append(m.middlewares, mw)
}

// Register binds a handler to a request type. Double registration is a
// wiring bug and fails loudly.
func (m *Mediator) Register(requestType reflect.Type, handler Handler) error {
	if requestType == nil {
		return fmt.Errorf("request type cannot be nil")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if _, exists := m.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for %s", requestType)
	}
	m.handlers[requestType] = handler
	return nil
}

// Send dispatches the request to its handler.
func (m *Mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	handler, ok := m.handlers[reflect.TypeOf(request)]
	if !ok {
		return nil, fmt.Errorf("no handler registered for %T", request)
	}

	next := handler.Handle
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		mw := m.middlewares[i]
		inner := next
		next = func(ctx context.Context, request Request) (Response, error) {
			return mw(ctx, request, inner)
		}
	}
	return next(ctx, request)
}

// RegisterHandler registers a handler with type inference.
func RegisterHandler[T Request](m *Mediator, handler Handler) error {
	var zero T
	return m.Register(reflect.TypeOf(zero), handler)
}
