// Package readiness implements the criterion state machine and the aggregate
// readiness computation behind the job-ready certification workflow.
//
// Per-criterion states: not_started → in_progress → completed → verified,
// with POC rejection sending a completed criterion back to in_progress.
package readiness

import (
	"os"
	"strconv"
	"time"

	"CampusReady-backend/internal/apperror"
	"CampusReady-backend/internal/model"
)

// VerifyDecision is the POC verdict on a completed criterion
type VerifyDecision string

const (
	// DecisionVerified accepts the submission; terminal absent an administrative override
	DecisionVerified VerifyDecision = "verified"
	// DecisionRejected sends the criterion back to in_progress for resubmission
	DecisionRejected VerifyDecision = "rejected"
)

// EmptyCatalogFull controls the zero-criteria edge case: when true, a school
// with no defined criteria counts as 100% ready instead of 0%.
func EmptyCatalogFull() bool {
	v, err := strconv.ParseBool(os.Getenv("READINESS_EMPTY_CATALOG_FULL"))
	return err == nil && v
}

// Report records a student submission on a criterion status entry.
// Allowed while the criterion is not_started or in_progress; a verified
// criterion rejects resubmission with a state conflict. The previous
// self-reported value and proof survive a POC rejection so the student can
// revise rather than start over.
func Report(cs *model.CriterionStatus, value string, proofURL, notes *string, now time.Time) error {
	switch cs.Status {
	case model.CriterionStatusNotStarted, model.CriterionStatusInProgress:
		// fine
	case model.CriterionStatusCompleted:
		return apperror.Newf(apperror.KindStateConflict,
			"criterion %q already submitted and awaiting verification", cs.CriteriaID)
	case model.CriterionStatusVerified:
		return apperror.Newf(apperror.KindStateConflict,
			"criterion %q is already verified", cs.CriteriaID)
	default:
		return apperror.Newf(apperror.KindStateConflict,
			"criterion %q is in unknown state %q", cs.CriteriaID, cs.Status)
	}

	if value == "" {
		return apperror.New(apperror.KindValidation, "submission value must not be empty")
	}

	cs.Status = model.CriterionStatusCompleted
	cs.SelfReportedValue = &value
	if proofURL != nil {
		cs.ProofURL = proofURL
	}
	if notes != nil {
		cs.Notes = notes
	}
	cs.UpdatedAt = now
	return nil
}

// Verify applies a POC decision to a completed criterion. Rejection reverts
// the status to in_progress and keeps the verification notes for the student;
// the submission itself is preserved for resubmission context.
func Verify(cs *model.CriterionStatus, def model.CriterionDefinition, decision VerifyDecision, verificationNotes, pocComment *string, pocRating *int, now time.Time) error {
	if cs.Status != model.CriterionStatusCompleted {
		return apperror.Newf(apperror.KindStateConflict,
			"criterion %q is %q, only completed criteria can be verified", cs.CriteriaID, cs.Status)
	}

	switch decision {
	case DecisionVerified:
		if def.POCCommentRequired && (pocComment == nil || *pocComment == "") {
			return apperror.Newf(apperror.KindValidation,
				"criterion %q requires a POC comment", cs.CriteriaID)
		}
		if def.POCRatingRequired {
			if pocRating == nil {
				return apperror.Newf(apperror.KindValidation,
					"criterion %q requires a POC rating", cs.CriteriaID)
			}
			if *pocRating < 1 || *pocRating > def.POCRatingScale {
				return apperror.Newf(apperror.KindValidation,
					"POC rating for %q must be between 1 and %d", cs.CriteriaID, def.POCRatingScale)
			}
		}
		cs.Status = model.CriterionStatusVerified
		cs.POCComment = pocComment
		cs.POCRating = pocRating
	case DecisionRejected:
		cs.Status = model.CriterionStatusInProgress
	default:
		return apperror.Newf(apperror.KindValidation, "unknown verification decision %q", decision)
	}

	if verificationNotes != nil {
		cs.VerificationNotes = verificationNotes
	}
	cs.UpdatedAt = now
	return nil
}

// Unverify is the administrative override that reopens a verified criterion,
// putting it back to completed so a POC can re-decide.
func Unverify(cs *model.CriterionStatus, now time.Time) error {
	if cs.Status != model.CriterionStatusVerified {
		return apperror.Newf(apperror.KindStateConflict,
			"criterion %q is %q, only verified criteria can be unverified", cs.CriteriaID, cs.Status)
	}
	cs.Status = model.CriterionStatusCompleted
	cs.UpdatedAt = now
	return nil
}

// VerifiedCount counts record entries currently in verified state
func VerifiedCount(record *model.StudentReadinessRecord) int {
	n := 0
	for _, cs := range record.CriteriaStatus {
		if cs.Status == model.CriterionStatusVerified {
			n++
		}
	}
	return n
}

// Percentage computes verified/total*100 rounded down. A school with zero
// defined criteria yields 0 unless emptyCatalogFull is set.
func Percentage(verified, total int, emptyCatalogFull bool) int {
	if total == 0 {
		if emptyCatalogFull {
			return 100
		}
		return 0
	}
	return verified * 100 / total
}

// RecordPercentage computes the readiness percentage of a record against the
// school's full criterion catalog. Criteria the student never touched count
// toward the denominator.
func RecordPercentage(record *model.StudentReadinessRecord, catalog []model.CriterionDefinition) int {
	return Percentage(VerifiedCount(record), len(catalog), EmptyCatalogFull())
}

// ApproveJobReady certifies a student as job-ready. Requires every catalog
// criterion verified, a non-empty catalog, and no prior certification.
func ApproveJobReady(record *model.StudentReadinessRecord, catalog []model.CriterionDefinition, notes *string) error {
	if record.IsJobReady {
		return apperror.New(apperror.KindStateConflict, "student is already certified job-ready")
	}
	if len(catalog) == 0 {
		return apperror.New(apperror.KindStateConflict,
			"school has no readiness criteria defined, nothing to certify")
	}
	if verified := VerifiedCount(record); verified != len(catalog) {
		return apperror.Newf(apperror.KindStateConflict,
			"only %d of %d criteria verified", verified, len(catalog))
	}
	record.IsJobReady = true
	if notes != nil {
		record.JobReadyNotes = notes
	}
	return nil
}
