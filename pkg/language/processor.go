package language

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/observability"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var processorTracer = otel.Tracer("langmgr/language/processor")

const defaultMaxWorkers = 4

// Output is the outcome of processing one language
type Output struct {
	Language  string       `json:"language"`
	RequestID string       `json:"request_id"`
	Engine    string       `json:"engine,omitempty"`
	Results   []g2p.Result `json:"results,omitempty"`
	Skipped   bool         `json:"skipped,omitempty"`   // Language disabled
	Discarded bool         `json:"discarded,omitempty"` // Converted, result dropped
	Error     string       `json:"error,omitempty"`

	Err error `json:"-"`
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the processor logger
func WithProcessorLogger(log *logrus.Logger) ProcessorOption {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithProcessorMetrics records conversion counts and durations
func WithProcessorMetrics(metrics *observability.Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = metrics }
}

// WithMaxWorkers bounds ProcessAll concurrency
func WithMaxWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.maxWorkers = n
		}
	}
}

// Processor converts text for languages, resolving each descriptor's
// selected engine at call time
type Processor struct {
	lookup     Lookup
	log        *logrus.Logger
	metrics    *observability.Metrics
	maxWorkers int
}

// NewProcessor creates a processor resolving engines through lookup
func NewProcessor(lookup Lookup, opts ...ProcessorOption) *Processor {
	p := &Processor{
		lookup:     lookup,
		log:        logrus.New(),
		maxWorkers: defaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process converts input for d. Disabled languages are skipped without
// resolving an engine. A missing engine returns ErrNoConverter.
func (p *Processor) Process(ctx context.Context, d *Descriptor, input []string) (*Output, error) {
	out := &Output{
		Language:  d.ID(),
		RequestID: uuid.New().String(),
		Engine:    d.SelectedG2P(),
	}
	log := p.log.WithFields(logrus.Fields{
		"request_id": out.RequestID,
		"language":   out.Language,
	})

	ctx, span := processorTracer.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.String("language", out.Language),
			attribute.String("engine", out.Engine),
			attribute.Int("tokens", len(input)),
		))
	defer span.End()

	if !d.Enabled() {
		out.Skipped = true
		span.SetStatus(codes.Ok, "language disabled")
		log.Debug("Language disabled, skipping")
		return out, nil
	}

	start := time.Now()

	factory, err := Resolve(p.lookup, d)
	if err != nil {
		p.fail(out, span, err)
		p.metrics.RecordConversion(out.Language, "no_converter", time.Since(start))
		log.Warnf("No converter: %v", err)
		return out, err
	}

	results, err := factory.Convert(ctx, input, d.G2PConfig())
	if err != nil {
		err = fmt.Errorf("engine %s failed: %w", factory.ID(), err)
		p.fail(out, span, err)
		p.metrics.RecordConversion(out.Language, "error", time.Since(start))
		log.Errorf("Conversion failed: %v", err)
		return out, err
	}

	if d.DiscardResult() {
		out.Discarded = true
		log.Debugf("Converted %d tokens, result discarded", len(results))
	} else {
		out.Results = results
	}

	p.metrics.RecordConversion(out.Language, "ok", time.Since(start))
	span.SetStatus(codes.Ok, fmt.Sprintf("converted %d tokens", len(results)))
	return out, nil
}

func (p *Processor) fail(out *Output, span trace.Span, err error) {
	out.Err = err
	out.Error = err.Error()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// IsNoConverter reports whether err means the language has no usable engine
func IsNoConverter(err error) bool {
	return errors.Is(err, ErrNoConverter)
}
