// Package extraction turns a task description into a validated record by
// asking the model for JSON, checking it against the schema registry, and
// retrying malformed answers a bounded number of times.
package extraction

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/prompts"
	"github.com/jonathan/ats-assistant/internal/schemas"
	"github.com/jonathan/ats-assistant/internal/types"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 45 * time.Second

var defaultRegistry = sync.OnceValue(schemas.MustNewRegistry)

// Extractor runs structured extractions against one model client.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	client   llm.Client
	registry *schemas.Registry
	policy   RetryPolicy
	tier     llm.ModelTier
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry sets the schema registry.
func WithRegistry(r *schemas.Registry) Option {
	return func(e *Extractor) { e.registry = r }
}

// WithPolicy sets the retry policy.
func WithPolicy(p RetryPolicy) Option {
	return func(e *Extractor) { e.policy = p }
}

// WithTier sets the model tier used for every call.
func WithTier(t llm.ModelTier) Option {
	return func(e *Extractor) { e.tier = t }
}

// WithTimeout sets the per-attempt deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an Extractor. A nil client is accepted; every extraction then
// fails with *llm.UnavailableError without calling anything.
func New(client llm.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:  client,
		policy:  DefaultRetryPolicy(),
		tier:    llm.TierStandard,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = defaultRegistry()
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	e.logger = logging.OrNop(e.logger)
	return e
}

// Registry returns the schema registry in use.
func (e *Extractor) Registry() *schemas.Registry {
	return e.registry
}

// BuildInstruction combines the fixed preamble, the schema document for id
// and the task text.
func (e *Extractor) BuildInstruction(id types.SchemaID, task string) (string, error) {
	doc, err := e.registry.Describe(id)
	if err != nil {
		return "", err
	}
	preamble, err := prompts.Get(prompts.RecruitingFile, prompts.KeySystemPreamble)
	if err != nil {
		return "", err
	}
	return prompts.Format(preamble, map[string]string{
		"Schema": doc,
		"Task":   task,
	}), nil
}

// Extract asks the model to perform task and return a record matching id.
// Retryable failures are repeated up to the policy's attempt limit, after
// which an *Error carrying the last failure is returned. Non-retryable
// failures are returned as they are.
func (e *Extractor) Extract(ctx context.Context, task string, id types.SchemaID) (types.Record, error) {
	if e.client == nil {
		return nil, &llm.UnavailableError{Message: "no model client configured"}
	}

	instruction, err := e.BuildInstruction(id, task)
	if err != nil {
		return nil, err
	}

	maxAttempts := e.policy.attempts()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, e.policy.delay(attempt-1)); err != nil {
				return nil, errors.Wrapf(err, "extract %s", id)
			}
		}

		start := time.Now()
		rec, err := e.attempt(ctx, instruction, id)
		if err == nil {
			e.logger.Debugw("Extraction succeeded",
				logging.FieldSchema, id,
				logging.FieldAttempt, attempt,
				logging.FieldModel, e.client.GetModel(e.tier),
				logging.FieldDurationMS, time.Since(start).Milliseconds())
			return rec, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "extract %s", id)
		}
		if !e.policy.retryable(err) {
			return nil, err
		}

		e.logger.Warnw("Extraction attempt failed",
			logging.FieldSchema, id,
			logging.FieldAttempt, attempt,
			logging.FieldMaxAttempts, maxAttempts,
			logging.FieldError, err)
	}

	return nil, &Error{Schema: id, Attempts: maxAttempts, Cause: lastErr}
}

func (e *Extractor) attempt(ctx context.Context, instruction string, id types.SchemaID) (types.Record, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.client.GenerateJSON(attemptCtx, instruction, e.tier)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Timeout: e.timeout, Cause: err}
		}
		return nil, err
	}

	return e.registry.Validate(id, []byte(llm.CleanJSONBlock(raw)))
}

// ExtractAs runs Extract and narrows the record to T, e.g. *types.JobParse.
func ExtractAs[T types.Record](ctx context.Context, e *Extractor, task string, id types.SchemaID) (T, error) {
	var zero T
	rec, err := e.Extract(ctx, task, id)
	if err != nil {
		return zero, err
	}
	t, ok := schemas.As[T](rec)
	if !ok {
		return zero, errors.Newf("extract %s: got %T", id, rec)
	}
	return t, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
