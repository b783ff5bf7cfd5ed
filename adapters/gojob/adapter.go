package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

// Parameter keys carrying execution hints alongside task arguments. The
// budget travels with the message so the consuming runner can bound the
// handler. Not-before only appears when the queue cannot schedule delayed
// delivery itself; the runner then holds the message with retry nacks
// until it is due.
const (
	ParamBudgetSeconds = "budget_seconds"
	ParamNotBefore     = "not_before"
)

// Dispatcher submits deferred work onto a go-job queue.
type Dispatcher struct {
	enqueuer queue.Enqueuer
	clock    func() time.Time
}

func NewDispatcher(enqueuer queue.Enqueuer) *Dispatcher {
	return &Dispatcher{
		enqueuer: enqueuer,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit enqueues the request. Delayed requests go through the queue's
// scheduled enqueue when the backend supports it, otherwise the message
// carries a not-before timestamp for the runner to honor.
func (d *Dispatcher) Submit(ctx context.Context, req core.JobRequest) error {
	if d == nil || d.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	task := strings.TrimSpace(req.Task)
	if task == "" {
		return fmt.Errorf("gojob: task is required")
	}
	msg := ToExecutionMessage(req)
	if req.Delay > 0 {
		if scheduled, ok := d.enqueuer.(queue.ScheduledEnqueuer); ok {
			_, err := scheduled.EnqueueAfter(ctx, msg, req.Delay)
			return err
		}
		msg.Parameters[ParamNotBefore] = d.clock().Add(req.Delay).UTC().Format(time.RFC3339Nano)
	}
	_, err := d.enqueuer.Enqueue(ctx, msg)
	return err
}

// ToExecutionMessage maps a dispatch request onto the go-job wire shape.
func ToExecutionMessage(req core.JobRequest) *job.ExecutionMessage {
	params := copyAnyMap(req.Args)
	if req.Budget > 0 {
		params[ParamBudgetSeconds] = int64(req.Budget / time.Second)
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(req.Task),
		Parameters:     params,
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
	}
}

// FromExecutionMessage rebuilds the dispatch request from a queued message.
// Scheduling hints are stripped from the argument map.
func FromExecutionMessage(msg *job.ExecutionMessage) core.JobRequest {
	if msg == nil {
		return core.JobRequest{}
	}
	args := copyAnyMap(msg.Parameters)
	req := core.JobRequest{
		Task:           strings.TrimSpace(msg.JobID),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
	}
	req.Budget = durationFromParameters(args, ParamBudgetSeconds)
	delete(args, ParamBudgetSeconds)
	delete(args, ParamNotBefore)
	req.Args = args
	return req
}

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.Disposition == "" {
		out.Disposition = queue.NackDispositionRetry
	}
	if out.Disposition == queue.NackDispositionRetry && p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		if p.DeadLetterOnMax {
			out.Disposition = queue.NackDispositionDeadLetter
		} else {
			out.Disposition = queue.NackDispositionFailed
		}
	}
	return out
}

// TaskHandler executes one dequeued task with its decoded arguments.
type TaskHandler func(ctx context.Context, args map[string]any) error

// Runner consumes deliveries and routes each task to its registered handler.
// The budget carried by the message bounds the handler via context deadline.
type Runner struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
	handlers map[string]TaskHandler
	clock    func() time.Time
}

func NewRunner(dequeuer queue.Dequeuer, policy RetryPolicy) *Runner {
	return &Runner{
		dequeuer: dequeuer,
		policy:   policy,
		handlers: map[string]TaskHandler{},
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Runner) Handle(task string, handler TaskHandler) error {
	if r == nil || r.handlers == nil {
		return fmt.Errorf("gojob: runner is not configured")
	}
	trimmed := strings.TrimSpace(task)
	if trimmed == "" {
		return fmt.Errorf("gojob: task is required")
	}
	if handler == nil {
		return fmt.Errorf("gojob: handler is required for task %q", trimmed)
	}
	if _, exists := r.handlers[trimmed]; exists {
		return fmt.Errorf("gojob: task %q already has a handler", trimmed)
	}
	r.handlers[trimmed] = handler
	return nil
}

// RunOnce dequeues a single delivery, executes it, and settles it. Callers
// loop over it; the dequeue blocks per the queue's own semantics.
func (r *Runner) RunOnce(ctx context.Context) error {
	if r == nil || r.dequeuer == nil {
		return fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := r.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	return r.process(ctx, delivery)
}

func (r *Runner) process(ctx context.Context, delivery queue.Delivery) error {
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is nil")
	}
	msg := delivery.Message()
	if hold := r.remainingHold(msg); hold > 0 {
		return delivery.Nack(ctx, r.policy.NormalizeAttempt(queue.NackOptions{
			Disposition: queue.NackDispositionRetry,
			Delay:       hold,
			Reason:      "delivery is not yet due",
		}, 0))
	}
	req := FromExecutionMessage(msg)
	handler, ok := r.handlers[req.Task]
	if !ok {
		return delivery.Nack(ctx, r.policy.NormalizeAttempt(queue.NackOptions{
			Disposition: queue.NackDispositionDeadLetter,
			Reason:      fmt.Sprintf("no handler for task %q", req.Task),
		}, 0))
	}

	runCtx := ctx
	if req.Budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(ctx, r.clock().Add(req.Budget))
		defer cancel()
	}

	if err := handler(runCtx, req.Args); err != nil {
		return delivery.Nack(ctx, r.policy.NormalizeAttempt(queue.NackOptions{
			Disposition: queue.NackDispositionRetry,
			Reason:      err.Error(),
		}, 0))
	}
	return delivery.Ack(ctx)
}

// remainingHold reports how long a not-before message must still wait.
func (r *Runner) remainingHold(msg *job.ExecutionMessage) time.Duration {
	if msg == nil {
		return 0
	}
	raw, ok := msg.Parameters[ParamNotBefore]
	if !ok {
		return 0
	}
	text, ok := raw.(string)
	if !ok {
		return 0
	}
	at, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return 0
	}
	return at.Sub(r.clock())
}

// LoggingHook reports worker lifecycle transitions through the shared
// observability surface.
type LoggingHook struct {
	observer core.Observer
}

func NewLoggingHook(observer core.Observer) *LoggingHook {
	return &LoggingHook{observer: observer}
}

func (h *LoggingHook) OnStart(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	h.observer.LogInfo(ctx, "task started", hookFields(event))
}

func (h *LoggingHook) OnSuccess(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	fields := hookFields(event)
	fields["duration_ms"] = event.Duration.Milliseconds()
	h.observer.LogInfo(ctx, "task succeeded", fields)
}

func (h *LoggingHook) OnFailure(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	fields := hookFields(event)
	if event.Err != nil {
		fields["error"] = event.Err.Error()
	}
	h.observer.LogError(ctx, "task failed", fields)
}

func (h *LoggingHook) OnRetry(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	fields := hookFields(event)
	fields["retry_delay_ms"] = event.Delay.Milliseconds()
	h.observer.LogInfo(ctx, "task retrying", fields)
}

func hookFields(event worker.Event) map[string]any {
	fields := map[string]any{
		"attempt": event.Attempt,
	}
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	if message != nil {
		fields["task"] = message.JobID
		if key := strings.TrimSpace(message.IdempotencyKey); key != "" {
			fields["idempotency_key"] = key
		}
	}
	return fields
}

func durationFromParameters(params map[string]any, key string) time.Duration {
	raw, ok := params[key]
	if !ok {
		return 0
	}
	switch typed := raw.(type) {
	case int64:
		return time.Duration(typed) * time.Second
	case int:
		return time.Duration(typed) * time.Second
	case float64:
		return time.Duration(typed * float64(time.Second))
	default:
		return 0
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobDispatcher = (*Dispatcher)(nil)
	_ worker.Hook        = (*LoggingHook)(nil)
)
