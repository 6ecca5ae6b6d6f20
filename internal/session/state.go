// Package session drives one analyzer session: it gates the analyze trigger
// on valid input, runs a single submission at a time and turns outcomes into
// notices.
//
// Every state change goes through Reduce, so the transition table below is the
// only place that decides what an event does.
package session

import (
	"context"
	"errors"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/result"
)

type Phase int

const (
	Idle Phase = iota
	Validating
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the submission state of a session. Response is set only when
// Succeeded and Err only when Failed. Attempt counts submissions that reached
// the network.
type State struct {
	Phase    Phase
	Attempt  uint64
	Response *analysis.RawResponse
	Err      error
}

// Busy reports whether the analyze trigger is currently inert.
func (s State) Busy() bool {
	return s.Phase == Validating || s.Phase == InFlight
}

// Result parses the stored response. It reports false unless the state is
// Succeeded.
func (s State) Result() (result.AnalysisResult, bool) {
	if s.Phase != Succeeded || s.Response == nil {
		return result.AnalysisResult{}, false
	}

	return result.Parse(s.Response.Result), true
}

// Input is what a submission consumes. It survives submissions so a failed
// attempt can be retried as is.
type Input struct {
	Resume         *analysis.Document
	JobDescription string
}

// Ready reports whether both parts of the input are present.
func (in Input) Ready() bool {
	return in.Resume != nil && !normalize.IsBlank(in.JobDescription)
}

type Event interface {
	event()
}

// Requested is the user's analyze trigger.
type Requested struct{}

// Validated carries the input captured while Validating.
type Validated struct {
	Input Input
}

// Resolved is the outcome of submission Attempt.
type Resolved struct {
	Attempt  uint64
	Response *analysis.RawResponse
	Err      error
}

// Abandoned drops any in-flight submission, e.g. when the session is closed.
type Abandoned struct{}

func (Requested) event() {}
func (Validated) event() {}
func (Resolved) event()  {}
func (Abandoned) event() {}

type Effect interface {
	effect()
}

// Submit asks the session to send Input exactly once as submission Attempt.
type Submit struct {
	Attempt uint64
	Input   Input
}

// Notify asks the session to surface Notice.
type Notify struct {
	Notice Notice
}

func (Submit) effect() {}
func (Notify) effect() {}

var errEmptyResponse = errors.New("empty response")

// Reduce applies ev to s. Events that do not apply to the current phase leave
// the state untouched and produce no effects.
func Reduce(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Requested:
		if s.Busy() {
			return s, nil
		}
		return State{Phase: Validating, Attempt: s.Attempt}, nil

	case Validated:
		if s.Phase != Validating {
			return s, nil
		}
		idle := State{Phase: Idle, Attempt: s.Attempt}
		if e.Input.Resume == nil {
			return idle, []Effect{Notify{Notice: missingResumeNotice()}}
		}
		if normalize.IsBlank(e.Input.JobDescription) {
			return idle, []Effect{Notify{Notice: missingJobDescriptionNotice()}}
		}
		next := State{Phase: InFlight, Attempt: s.Attempt + 1}
		return next, []Effect{Submit{Attempt: next.Attempt, Input: e.Input}}

	case Resolved:
		if s.Phase != InFlight || e.Attempt != s.Attempt {
			return s, nil
		}
		switch {
		case errors.Is(e.Err, context.Canceled):
			return State{Phase: Idle, Attempt: s.Attempt}, []Effect{Notify{Notice: cancelledNotice()}}
		case e.Err != nil:
			return State{Phase: Failed, Attempt: s.Attempt, Err: e.Err}, []Effect{Notify{Notice: failureNotice(e.Err)}}
		case e.Response == nil:
			err := &analysis.Error{Kind: analysis.KindMalformedResponse, Err: errEmptyResponse}
			return State{Phase: Failed, Attempt: s.Attempt, Err: err}, []Effect{Notify{Notice: failureNotice(err)}}
		}
		return State{Phase: Succeeded, Attempt: s.Attempt, Response: e.Response}, []Effect{Notify{Notice: successNotice()}}

	case Abandoned:
		if s.Phase != InFlight && s.Phase != Validating {
			return s, nil
		}
		return State{Phase: Idle, Attempt: s.Attempt}, nil
	}

	return s, nil
}
