// Package tracing records nested spans in a context and logs the finished
// tree through slog. It has no exporter; a disabled Tracer still hands out
// spans so call sites need no branching.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
)

type contextKey string

const spanKey contextKey = "trace_span"

// Span represents a timed operation within a trace.
type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	Duration  time.Duration
	Children  []*Span
	Attrs     map[string]any
	mu        sync.Mutex
}

// Tracer starts root spans and logs them when they finish.
type Tracer struct {
	enabled bool
	logger  *slog.Logger
}

// NewTracer returns a Tracer. When enabled is false, Finish is a no-op.
func NewTracer(enabled bool) *Tracer {
	return &Tracer{
		enabled: enabled,
		logger:  logger.WithComponent("tracing"),
	}
}

// Enabled reports whether finished spans are logged.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// Start creates a root span keyed by traceID and stores it in ctx.
func (t *Tracer) Start(ctx context.Context, name, traceID string) (context.Context, *Span) {
	span := newSpan(name)
	span.TraceID = traceID
	return context.WithValue(ctx, spanKey, span), span
}

// Finish ends the root span and logs its tree at debug level.
func (t *Tracer) Finish(span *Span) {
	span.End()
	if !t.Enabled() {
		return
	}
	span.log(t.logger, 0)
}

// StartChild creates a span under the one in ctx. Without a parent the
// child is detached and never logged.
func StartChild(ctx context.Context, name string) (context.Context, *Span) {
	child := newSpan(name)
	if parent := FromContext(ctx); parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.Children = append(parent.Children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, spanKey, child), child
}

// FromContext returns the current span in ctx, or nil.
func FromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

func newSpan(name string) *Span {
	return &Span{
		Name:      name,
		StartTime: time.Now(),
		Attrs:     make(map[string]any),
	}
}

// End records the span duration. Calling End twice keeps the first value.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Duration == 0 {
		s.Duration = time.Since(s.StartTime)
	}
}

// SetAttr attaches a key-value attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

func (s *Span) log(l *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_us", s.Duration.Microseconds(),
		"depth", depth,
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	l.Debug("span", attrs...)
	for _, child := range children {
		child.log(l, depth+1)
	}
}
