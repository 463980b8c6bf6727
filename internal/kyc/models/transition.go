package models

import dErrors "paam/pkg/domain-errors"

// TransitionPolicy decides whether a profile may move from one status to another.
// It returns a validation error when the move is refused.
type TransitionPolicy func(from, to Status) error

// PermissiveTransitions allows every move between valid statuses. Reviewers may
// override any decision; the audit trail is the authoritative history.
func PermissiveTransitions(from, to Status) error {
	if !to.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid status: %s", to)
	}
	return nil
}

var reviewGraph = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusPending, StatusApproved, StatusRejected},
	StatusApproved:    {StatusUnderReview, StatusRevoked},
	StatusRejected:    {StatusUnderReview},
	StatusRevoked:     {StatusUnderReview},
}

// ReviewGraphTransitions only allows moves along the review workflow. Decided
// profiles must go back through UNDER_REVIEW before they can change outcome.
func ReviewGraphTransitions(from, to Status) error {
	if err := PermissiveTransitions(from, to); err != nil {
		return err
	}
	for _, allowed := range reviewGraph[from] {
		if allowed == to {
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeValidation, "transition from %s to %s is not allowed", from, to)
}

// PolicyByName maps a configuration value to a policy. Unknown names fall back
// to PermissiveTransitions.
func PolicyByName(name string) TransitionPolicy {
	if name == "review_graph" {
		return ReviewGraphTransitions
	}
	return PermissiveTransitions
}
