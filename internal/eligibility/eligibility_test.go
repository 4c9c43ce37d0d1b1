package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"CampusReady-backend/internal/match"
	"CampusReady-backend/internal/model"
)

func fullMatch() match.Result {
	return match.Result{
		OverallPercentage: 100,
		CanApply:          true,
		Skills:            match.SkillsBreakdown{Percentage: 100},
		Eligibility:       match.EligibilityBreakdown{Percentage: 100},
		Requirements:      match.RequirementsBreakdown{Percentage: 100},
	}
}

func baseInput() Input {
	return Input{
		ProfileApprovalStatus: model.ProfileStatusApproved,
		ReadinessRequirement:  model.ReadinessNotRequired,
		ReadinessPercentage:   0,
		Match:                 fullMatch(),
		Now:                   time.Now(),
	}
}

func TestDecideApplyOnFullMatch(t *testing.T) {
	d := Decide(baseInput())

	assert.Equal(t, ActionApply, d.Action)
	assert.True(t, d.MeetsReadiness)
	assert.False(t, d.ConfirmationsPending)
}

func TestDecideActiveApplicationWinsOverEverything(t *testing.T) {
	in := baseInput()
	past := time.Now().Add(-24 * time.Hour)
	in.Deadline = &past
	in.ProfileApprovalStatus = model.ProfileStatusDraft
	active := true
	in.Application = &model.Application{Status: model.ApplicationStatusApplied, ActiveFlag: &active}

	d := Decide(in)
	assert.Equal(t, ActionAlreadyApplied, d.Action, "active application outranks deadline and profile checks")
}

func TestDecideWithdrawnApplicationDoesNotBlock(t *testing.T) {
	in := baseInput()
	in.Application = &model.Application{Status: model.ApplicationStatusWithdrawn}

	d := Decide(in)
	assert.Equal(t, ActionApply, d.Action)
}

func TestDecideClosedDeadline(t *testing.T) {
	in := baseInput()
	past := time.Now().Add(-time.Hour)
	in.Deadline = &past

	d := Decide(in)
	assert.Equal(t, ActionClosed, d.Action)
}

func TestDecideUnapprovedProfileNeverApplies(t *testing.T) {
	for _, status := range []string{model.ProfileStatusDraft, model.ProfileStatusPending, model.ProfileStatusNeedsRevision} {
		in := baseInput()
		in.ProfileApprovalStatus = status

		d := Decide(in)
		assert.Equal(t, ActionProfileApprovalRequired, d.Action, "profile in %s must be blocked", status)
	}
}

func TestDecideInterestStates(t *testing.T) {
	in := baseInput()
	in.Match = match.Result{} // nothing matches

	in.Interest = &model.InterestRequest{Status: model.InterestStatusPending}
	assert.Equal(t, ActionInterestPending, Decide(in).Action)

	in.Interest = &model.InterestRequest{Status: model.InterestStatusRejected}
	assert.Equal(t, ActionInterestDenied, Decide(in).Action)
}

func TestDecideApprovedInterestBypassesMatch(t *testing.T) {
	in := baseInput()
	in.ReadinessRequirement = model.ReadinessRequired
	in.ReadinessPercentage = 10
	in.Match = match.Result{
		Skills:       match.SkillsBreakdown{Percentage: 0},
		Eligibility:  match.EligibilityBreakdown{Percentage: 50},
		Requirements: match.RequirementsBreakdown{Percentage: 0},
	}
	in.Interest = &model.InterestRequest{Status: model.InterestStatusApproved}

	d := Decide(in)
	assert.Equal(t, ActionApply, d.Action, "an approved interest request clears the student for this job")
	assert.True(t, d.MeetsReadiness)
	assert.True(t, d.ConfirmationsPending)
}

func TestDecideReadinessThresholds(t *testing.T) {
	cases := []struct {
		requirement string
		percentage  int
		want        Action
	}{
		{model.ReadinessRequired, 100, ActionApply},
		{model.ReadinessRequired, 99, ActionInterestRequired},
		{model.ReadinessInProgress, 35, ActionApply},
		{model.ReadinessInProgress, 30, ActionApply},
		{model.ReadinessInProgress, 29, ActionInterestRequired},
		{model.ReadinessNotRequired, 0, ActionApply},
	}

	for _, tc := range cases {
		in := baseInput()
		in.ReadinessRequirement = tc.requirement
		in.ReadinessPercentage = tc.percentage
		// Skills and eligibility are full; readiness is the only variable.
		in.Match.CanApply = false
		in.Match.Requirements.Percentage = 0

		d := Decide(in)
		assert.Equal(t, tc.want, d.Action, "requirement=%s percentage=%d", tc.requirement, tc.percentage)
	}
}

func TestDecidePendingConfirmationsStillApply(t *testing.T) {
	// Full skills and eligibility but unacknowledged requirements: the student
	// may proceed to the application form where confirmations are collected.
	in := baseInput()
	in.Match.CanApply = false
	in.Match.Requirements.Percentage = 0

	d := Decide(in)
	assert.Equal(t, ActionApply, d.Action)
	assert.True(t, d.ConfirmationsPending)
}

func TestDecidePartialMatchRequiresInterest(t *testing.T) {
	in := baseInput()
	in.Match = match.Result{
		Skills:      match.SkillsBreakdown{Percentage: 50},
		Eligibility: match.EligibilityBreakdown{Percentage: 100},
	}

	d := Decide(in)
	assert.Equal(t, ActionInterestRequired, d.Action)
	assert.True(t, d.MeetsReadiness, "readiness was fine, only the match fell short")
}
