package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/logger"
)

// Submitter performs the network call of one submission.
type Submitter interface {
	Submit(ctx context.Context, doc *analysis.Document, jobDescription string) (*analysis.RawResponse, error)
}

// Session holds the input bundle and the single submission state of one
// analyzer session.
type Session struct {
	mu      sync.Mutex
	state   State
	input   Input
	current *Task

	submitter Submitter
	notifier  Notifier
	logger    *zap.Logger
}

func New(submitter Submitter, notifier Notifier, log *zap.Logger) *Session {
	if notifier == nil {
		notifier = NotifierFunc(nil)
	}

	return &Session{
		submitter: submitter,
		notifier:  notifier,
		logger:    logger.WithFields(log),
	}
}

// SelectFile replaces the selected résumé. A nil doc clears the selection.
func (s *Session) SelectFile(doc *analysis.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.Resume = doc
}

// SetJobDescription replaces the job description text.
func (s *Session) SetJobDescription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.JobDescription = text
}

func (s *Session) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CanAnalyze reports whether the analyze trigger should be enabled.
func (s *Session) CanAnalyze() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.Busy() && s.input.Ready()
}

// Analyze handles the analyze trigger. It returns the task running the
// submission, or nil when the trigger was inert or the input was rejected.
func (s *Session) Analyze(ctx context.Context) *Task {
	s.mu.Lock()
	effects := s.dispatch(Requested{})
	if s.state.Phase == Validating {
		effects = append(effects, s.dispatch(Validated{Input: s.input})...)
	}
	task := s.run(ctx, effects)
	s.mu.Unlock()

	s.notify(effects)
	return task
}

// Close abandons the in-flight submission, if any. Its outcome is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	task := s.current
	s.current = nil
	s.dispatch(Abandoned{})
	s.mu.Unlock()

	if task != nil {
		task.cancel()
	}
}

// dispatch must be called with s.mu held.
func (s *Session) dispatch(ev Event) []Effect {
	prev := s.state
	next, effects := Reduce(prev, ev)
	s.state = next

	if prev.Phase != next.Phase {
		s.logger.Debug("state transition",
			zap.Stringer("from", prev.Phase),
			zap.Stringer("to", next.Phase),
			zap.Uint64("attempt", next.Attempt),
		)
	}

	return effects
}

// run starts a task for the Submit effect, if any. It must be called with s.mu held.
func (s *Session) run(ctx context.Context, effects []Effect) *Task {
	for _, eff := range effects {
		submit, ok := eff.(Submit)
		if !ok {
			continue
		}

		task := newTask(ctx, submit.Attempt)
		s.current = task
		go s.execute(task, submit.Input)

		return task
	}

	return nil
}

func (s *Session) execute(task *Task, in Input) {
	s.logger.Info("submitting resume for analysis",
		zap.Uint64("attempt", task.attempt),
		zap.String("resume", in.Resume.Name),
	)

	response, err := s.submitter.Submit(task.ctx, in.Resume, in.JobDescription)
	s.resolve(task, outcome{response: response, err: err})
}

func (s *Session) resolve(task *Task, out outcome) {
	s.mu.Lock()
	effects := s.dispatch(Resolved{Attempt: task.attempt, Response: out.response, Err: out.err})
	if s.current == task {
		s.current = nil
	}
	final := s.state
	s.mu.Unlock()

	task.cancel()

	if out.err != nil {
		s.logger.Warn("analysis attempt failed",
			zap.Uint64("attempt", task.attempt),
			zap.Stringer("kind", analysis.KindOf(out.err)),
			zap.Error(out.err),
		)
	}

	s.notify(effects)
	task.finish(final)
}

func (s *Session) notify(effects []Effect) {
	for _, eff := range effects {
		if n, ok := eff.(Notify); ok {
			s.notifier.Notify(n.Notice)
		}
	}
}

type outcome struct {
	response *analysis.RawResponse
	err      error
}

// Task is one running submission.
type Task struct {
	attempt uint64
	ctx     context.Context
	cancel  context.CancelFunc

	done  chan struct{}
	final State
}

func newTask(parent context.Context, attempt uint64) *Task {
	ctx, cancel := context.WithCancel(parent)

	return &Task{
		attempt: attempt,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (t *Task) Attempt() uint64 {
	return t.attempt
}

// Cancel aborts the submission. The session returns to Idle once the
// submitter gives up.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the outcome has been applied to the session.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the outcome has been applied and returns the session
// state right after it.
func (t *Task) Wait(ctx context.Context) (State, error) {
	select {
	case <-t.done:
		return t.final, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func (t *Task) finish(final State) {
	t.final = final
	close(t.done)
}
