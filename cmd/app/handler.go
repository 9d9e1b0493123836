package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"lukechampine.com/frand"
)

// failureOdds is the size of the draw range [0, failureOdds).
const failureOdds = 26

// InjectedFailureError is returned when the draw selects the event for the
// dead letter queue.
type InjectedFailureError struct {
	Draw int
}

func (e *InjectedFailureError) Error() string {
	return "Test dead letter queue error"
}

type Handler struct {
	out    io.Writer
	logger *slog.Logger
	draw   func() int
}

type Option func(*Handler)

func WithOutput(w io.Writer) Option {
	return func(h *Handler) { h.out = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithDraw replaces the random draw. The function must return a value in
// [0, 25].
func WithDraw(draw func() int) Option {
	return func(h *Handler) { h.draw = draw }
}

func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		out:    os.Stdout,
		logger: slog.Default(),
		draw:   func() int { return frand.Intn(failureOdds) },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(ctx context.Context, event json.RawMessage) error {
	fmt.Fprintln(h.out, "Received event: "+renderEvent(event))

	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(slog.String("requestId", lc.AwsRequestID))
	}

	n := h.draw()
	logger.Debug("Draw", slog.Int("value", n))
	if n == 0 {
		err := &InjectedFailureError{Draw: n}
		logger.Warn("Injecting failure", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// renderEvent indents the event by two spaces and keeps the payload's key
// order. Payloads that are not valid JSON are returned as is.
func renderEvent(event json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, event, "", "  "); err != nil {
		return string(event)
	}
	return buf.String()
}
