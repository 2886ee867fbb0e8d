// Package worker runs the image color pipeline (quantize, then cluster)
// behind a message boundary.
//
// Only JSON-encoded messages cross the boundary. A Worker owns one goroutine
// that handles requests strictly one at a time; callers block in Analyze
// until their own response arrives. Every failure, including a panic inside
// the pipeline, comes back as an analyze-result message with an error field.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ironsheep/pigment-mcp/internal/cluster"
	"github.com/ironsheep/pigment-mcp/internal/quantize"
)

// ErrClosed is returned by Analyze after Run has stopped.
var ErrClosed = errors.New("worker stopped")

// Pipeline turns analyze messages into analyze-result messages.
//
// A Pipeline is not safe for concurrent use when Quantize.Rand is shared;
// Worker serializes access.
type Pipeline struct {
	Quantize quantize.Options
	Cluster  cluster.Options
}

// HandleMessage decodes one request, runs it and encodes the response.
func (p *Pipeline) HandleMessage(data []byte) []byte {
	var req Request
	var resp Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = errorResponse("", fmt.Sprintf("decode request: %v", err))
	} else {
		resp = p.Handle(req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		out, _ = json.Marshal(errorResponse(resp.ID, fmt.Sprintf("encode response: %v", err)))
	}
	return out
}

// Handle runs req through the pipeline. It never panics.
func (p *Pipeline) Handle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = errorResponse(req.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if req.Type != TypeAnalyze {
		return errorResponse(req.ID, fmt.Sprintf("unsupported message type %q", req.Type))
	}

	copts := p.Cluster
	if req.SelectionMethod != "" {
		m, err := cluster.ParseMethod(req.SelectionMethod)
		if err != nil {
			return errorResponse(req.ID, err.Error())
		}
		copts.Method = m
	}
	if t := req.SimilarityThreshold; t != nil {
		if *t <= 0 {
			return errorResponse(req.ID, fmt.Sprintf("similarityThreshold must be positive, got %v", *t))
		}
		copts.SimilarityThreshold = *t
	}
	if t := req.AchromaticThreshold; t != nil {
		if *t < 0 {
			return errorResponse(req.ID, fmt.Sprintf("achromaticThreshold must not be negative, got %v", *t))
		}
		copts.AchromaticThreshold = *t
	}

	q, err := quantize.Quantize(req.Pixels, req.ColorCount, p.Quantize)
	if err != nil {
		return errorResponse(req.ID, err.Error())
	}

	colors := cluster.Hexes(cluster.Process(q.Swatches, copts))
	if colors == nil {
		colors = []string{}
	}
	return Response{ID: req.ID, Type: TypeAnalyzeResult, Colors: colors}
}

type job struct {
	payload []byte
	reply   chan []byte
}

// Worker owns a Pipeline and feeds it one serialized request at a time.
type Worker struct {
	pipeline *Pipeline
	logger   *slog.Logger
	jobs     chan job
	done     chan struct{}
}

// New creates a Worker. Call Run to start processing.
func New(p *Pipeline, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		pipeline: p,
		logger:   logger,
		jobs:     make(chan job),
		done:     make(chan struct{}),
	}
}

// Run processes requests until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-w.jobs:
			out := w.pipeline.HandleMessage(j.payload)
			// reply is buffered, so a caller that gave up does not block us.
			j.reply <- out
		}
	}
}

// Analyze sends req to the worker and waits for the matching response.
//
// A response whose id does not match the request is discarded as stale and
// reported as an error. Pipeline failures are returned inside the Response,
// not as an error.
func (w *Worker) Analyze(ctx context.Context, req Request) (Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Type == "" {
		req.Type = TypeAnalyze
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	j := job{payload: payload, reply: make(chan []byte, 1)}
	select {
	case w.jobs <- j:
	case <-w.done:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	var out []byte
	select {
	case out = <-j.reply:
	case <-ctx.Done():
		w.logger.Debug("analyze abandoned", "id", req.ID)
		return Response{}, ctx.Err()
	}

	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.ID != req.ID {
		w.logger.Warn("discarding stale analyze result", "want", req.ID, "got", resp.ID)
		return Response{}, fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}
	w.logger.Debug("analyze finished", "id", req.ID, "colors", len(resp.Colors), "error", resp.Error)
	return resp, nil
}
