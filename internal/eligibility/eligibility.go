// Package eligibility implements the single decision point for what a student
// may do about a job: apply directly, file an interest request, or nothing.
package eligibility

import (
	"time"

	"CampusReady-backend/internal/match"
	"CampusReady-backend/internal/model"
)

// Action is the allowed next step for the student on this job
type Action string

const (
	// ActionAlreadyApplied means an active application exists; terminal for this job
	ActionAlreadyApplied Action = "already_applied"
	// ActionClosed means the job deadline has passed
	ActionClosed Action = "closed"
	// ActionProfileApprovalRequired means the student profile is not approved yet
	ActionProfileApprovalRequired Action = "profile_approval_required"
	// ActionInterestPending means an interest request awaits a POC decision
	ActionInterestPending Action = "interest_pending"
	// ActionInterestDenied means a POC rejected the interest request
	ActionInterestDenied Action = "interest_denied"
	// ActionApply means the student may submit a full application
	ActionApply Action = "apply"
	// ActionInterestRequired means the student falls short and may only file an interest request
	ActionInterestRequired Action = "interest_required"
)

// MinInterestReasonLen is the minimum length of an interest request justification
const MinInterestReasonLen = 50

// InProgressThreshold is the readiness percentage a job with the in_progress
// readiness requirement demands for direct application.
const InProgressThreshold = 30

// Input bundles everything the gate looks at for one (student, job) pair
type Input struct {
	ProfileApprovalStatus string
	ReadinessRequirement  string
	ReadinessPercentage   int
	Match                 match.Result
	Application           *model.Application
	Interest              *model.InterestRequest
	Deadline              *time.Time
	Now                   time.Time
}

// Decision is the gate outcome plus the flags the application form needs
type Decision struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`

	// MeetsReadiness reports whether the job's readiness policy is satisfied
	MeetsReadiness bool `json:"meets_readiness"`
	// ConfirmationsPending is set on the apply path when custom requirements
	// still need acknowledgement at submission time.
	ConfirmationsPending bool `json:"confirmations_pending"`
}

// Decide runs the ordered gate. First match wins; the order is part of the
// contract so clients can surface a single unambiguous state.
func Decide(in Input) Decision {
	if in.Application != nil && in.Application.Active() {
		return Decision{Action: ActionAlreadyApplied, Reason: "you already applied to this job"}
	}

	if in.Deadline != nil && in.Now.After(*in.Deadline) {
		return Decision{Action: ActionClosed, Reason: "the application deadline has passed"}
	}

	if in.ProfileApprovalStatus != model.ProfileStatusApproved {
		return Decision{
			Action: ActionProfileApprovalRequired,
			Reason: "your profile must be approved by a POC before applying",
		}
	}

	if in.Interest != nil {
		switch in.Interest.Status {
		case model.InterestStatusPending:
			return Decision{Action: ActionInterestPending, Reason: "your interest request is awaiting a POC decision"}
		case model.InterestStatusRejected:
			return Decision{Action: ActionInterestDenied, Reason: "your interest request for this job was denied"}
		case model.InterestStatusApproved:
			// POC cleared the student for this specific job.
			return Decision{
				Action:               ActionApply,
				Reason:               "a POC approved your interest request for this job",
				MeetsReadiness:       true,
				ConfirmationsPending: in.Match.Requirements.Percentage < 100,
			}
		}
	}

	meetsReadiness := meetsReadiness(in.ReadinessRequirement, in.ReadinessPercentage)

	// A profile at 100% on skills and eligibility may apply even when custom
	// requirements are unconfirmed; those are collected at submission time.
	canApply := in.Match.CanApply ||
		(meetsReadiness &&
			in.Match.Skills.Percentage == 100 &&
			in.Match.Eligibility.Percentage == 100)

	if canApply {
		return Decision{
			Action:               ActionApply,
			Reason:               "your profile matches this job",
			MeetsReadiness:       meetsReadiness,
			ConfirmationsPending: in.Match.Requirements.Percentage < 100,
		}
	}

	return Decision{
		Action:         ActionInterestRequired,
		Reason:         "your profile does not fully match; you may submit an interest request instead",
		MeetsReadiness: meetsReadiness,
	}
}

func meetsReadiness(requirement string, percentage int) bool {
	switch requirement {
	case model.ReadinessRequired:
		return percentage == 100
	case model.ReadinessInProgress:
		return percentage >= InProgressThreshold
	default:
		return true
	}
}
