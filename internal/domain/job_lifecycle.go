package domain

import "errors"

// ErrIllegalTransition is returned when a transition is not permitted from
// the current state.
var ErrIllegalTransition = errors.New("illegal state transition")

// JobTransition is one of JobApprove, JobReject, JobClose or
// JobPaymentConfirmed. Requests are expressed as these variants rather than
// free-form status patches.
type JobTransition interface {
	jobTransition()
	Name() string
}

type JobApprove struct{}

type JobReject struct{}

type JobClose struct{}

type JobPaymentConfirmed struct {
	Featured bool
}

func (JobApprove) jobTransition()          {}
func (JobReject) jobTransition()           {}
func (JobClose) jobTransition()            {}
func (JobPaymentConfirmed) jobTransition() {}

func (JobApprove) Name() string          { return "approve" }
func (JobReject) Name() string           { return "reject" }
func (JobClose) Name() string            { return "close" }
func (JobPaymentConfirmed) Name() string { return "payment_confirmed" }

type jobEdge struct {
	from []JobStatus
	to   JobStatus
}

// jobTransitions is the job state machine. Closed has no outgoing edges.
var jobTransitions = map[string]jobEdge{
	"approve":           {from: []JobStatus{JobStatusPending}, to: JobStatusActive},
	"reject":            {from: []JobStatus{JobStatusPending}, to: JobStatusClosed},
	"close":             {from: []JobStatus{JobStatusPending, JobStatusActive}, to: JobStatusClosed},
	"payment_confirmed": {from: []JobStatus{JobStatusPending, JobStatusActive}, to: JobStatusActive},
}

// JobTransitionSources returns the statuses t may be applied from; used as the
// precondition of the conditional update.
func JobTransitionSources(t JobTransition) []JobStatus {
	return jobTransitions[t.Name()].from
}

// JobTransitionTarget returns the status t leads to.
func JobTransitionTarget(t JobTransition) JobStatus {
	return jobTransitions[t.Name()].to
}

// NextJobStatus evaluates the transition table.
func NextJobStatus(current JobStatus, t JobTransition) (JobStatus, error) {
	edge, ok := jobTransitions[t.Name()]
	if !ok {
		return current, ErrIllegalTransition
	}
	for _, s := range edge.from {
		if s == current {
			return edge.to, nil
		}
	}
	return current, ErrIllegalTransition
}

// ParseJobAction maps an API action name onto a transition. Payment
// confirmation is not reachable from the API.
func ParseJobAction(action string) (JobTransition, bool) {
	switch action {
	case "approve":
		return JobApprove{}, true
	case "reject":
		return JobReject{}, true
	case "close":
		return JobClose{}, true
	}
	return nil, false
}
