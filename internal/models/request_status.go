package models

import "fmt"

// RequestStatus is the lifecycle state of a blood request
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusAccepted   RequestStatus = "ACCEPTED"
	StatusRejected   RequestStatus = "REJECTED"
	StatusProcessing RequestStatus = "PROCESSING"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusFulfilled  RequestStatus = "FULFILLED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

// RequestStatuses lists every status
var RequestStatuses = []RequestStatus{
	StatusPending, StatusAccepted, StatusRejected, StatusProcessing,
	StatusCompleted, StatusFulfilled, StatusCancelled,
}

// OpenStatuses are the states in which a request still needs action
var OpenStatuses = []RequestStatus{StatusPending, StatusAccepted, StatusProcessing}

// IsValid reports whether s is a known status
func (s RequestStatus) IsValid() bool {
	for _, known := range RequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further action is allowed from s
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusFulfilled, StatusCompleted:
		return true
	}
	return false
}

// RequestAction is an operation that moves (or guards) a request's status
type RequestAction string

const (
	ActionAccept          RequestAction = "accept"
	ActionReject          RequestAction = "reject"
	ActionApprove         RequestAction = "approve"
	ActionAssign          RequestAction = "assign"
	ActionStartProcessing RequestAction = "start_processing"
	ActionComplete        RequestAction = "complete"
	ActionFulfill         RequestAction = "fulfill"
	ActionCancel          RequestAction = "cancel"
)

// Transition is one row of the lifecycle table. Approve and assign keep the status unchanged.
type Transition struct {
	From []RequestStatus
	To   RequestStatus
}

var requestTransitions = map[RequestAction]Transition{
	ActionAccept:          {From: []RequestStatus{StatusPending}, To: StatusAccepted},
	ActionReject:          {From: []RequestStatus{StatusPending}, To: StatusRejected},
	ActionApprove:         {From: []RequestStatus{StatusPending}, To: StatusPending},
	ActionAssign:          {From: []RequestStatus{StatusPending}, To: StatusPending},
	ActionStartProcessing: {From: []RequestStatus{StatusAccepted}, To: StatusProcessing},
	ActionComplete:        {From: []RequestStatus{StatusAccepted}, To: StatusCompleted},
	ActionFulfill:         {From: []RequestStatus{StatusProcessing}, To: StatusFulfilled},
	ActionCancel:          {From: []RequestStatus{StatusPending, StatusAccepted, StatusProcessing}, To: StatusCancelled},
}

// TransitionFor returns the table row for an action
func TransitionFor(action RequestAction) (Transition, bool) {
	t, ok := requestTransitions[action]
	return t, ok
}

// Allows reports whether the transition may start from s
func (t Transition) Allows(s RequestStatus) bool {
	for _, from := range t.From {
		if s == from {
			return true
		}
	}
	return false
}

// TransitionError describes an action attempted from a state that does not allow it
type TransitionError struct {
	Action  RequestAction
	Current RequestStatus
	Allowed []RequestStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s request in %s status (allowed from: %v)", e.Action, e.Current, e.Allowed)
}

// NextStatus resolves the status reached by applying action to current
func NextStatus(current RequestStatus, action RequestAction) (RequestStatus, error) {
	t, ok := requestTransitions[action]
	if !ok {
		return current, fmt.Errorf("unknown request action %q", action)
	}
	if !t.Allows(current) {
		return current, &TransitionError{Action: action, Current: current, Allowed: t.From}
	}
	return t.To, nil
}
