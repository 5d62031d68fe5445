package domain

import "fmt"

// Action is an operator-driven lifecycle action.
type Action string

const (
	ActionApproveForPayment Action = "approve_for_payment"
	ActionReject            Action = "reject"
	ActionFinalApprove      Action = "final_approve"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApproveForPayment, ActionReject, ActionFinalApprove:
		return a, nil
	}
	return "", &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", s)}
}

// Rule is the outcome of a legal operator transition.
type Rule struct {
	Next          Status
	CapacityDelta int
}

type step struct {
	from   Status
	action Action
}

// transitions lists every legal operator move. Anything absent is illegal.
var transitions = map[step]Rule{
	{StatusPending, ActionApproveForPayment}:      {Next: StatusApprovedForPayment},
	{StatusPending, ActionReject}:                 {Next: StatusRejected},
	{StatusApprovedForPayment, ActionReject}:      {Next: StatusRejected},
	{StatusPaidAwaitingFinal, ActionReject}:       {Next: StatusRejected},
	{StatusPaidAwaitingFinal, ActionFinalApprove}: {Next: StatusApproved, CapacityDelta: +1},
}

// NextStatus looks up the operator transition from the given status.
func NextStatus(from Status, action Action) (Rule, error) {
	rule, ok := transitions[step{from, action}]
	if !ok {
		return Rule{}, &TransitionError{From: from, Action: string(action)}
	}
	return rule, nil
}

// CapacityDelta is the slot change needed to move a reservation between two
// statuses outside the normal flow: entering approved takes a slot, leaving
// approved frees one, anything else leaves the counter alone.
func CapacityDelta(from, to Status) int {
	switch {
	case from != StatusApproved && to == StatusApproved:
		return +1
	case from == StatusApproved && to != StatusApproved:
		return -1
	default:
		return 0
	}
}
