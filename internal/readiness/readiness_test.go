package readiness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"CampusReady-backend/internal/apperror"
	"CampusReady-backend/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newStatus(status string) *model.CriterionStatus {
	return &model.CriterionStatus{
		CriteriaID: "resume",
		Status:     status,
	}
}

func TestReportTransitionsToCompleted(t *testing.T) {
	now := time.Now()

	for _, from := range []string{model.CriterionStatusNotStarted, model.CriterionStatusInProgress} {
		cs := newStatus(from)
		err := Report(cs, "https://drive.example.com/resume.pdf", strPtr("https://proof"), strPtr("v2 after feedback"), now)

		assert.NoError(t, err, "reporting from %s should succeed", from)
		assert.Equal(t, model.CriterionStatusCompleted, cs.Status)
		assert.Equal(t, "https://drive.example.com/resume.pdf", *cs.SelfReportedValue)
		assert.Equal(t, "https://proof", *cs.ProofURL)
	}
}

func TestReportRejectsEmptyValue(t *testing.T) {
	cs := newStatus(model.CriterionStatusNotStarted)
	err := Report(cs, "", nil, nil, time.Now())

	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, model.CriterionStatusNotStarted, cs.Status, "failed report must not change state")
}

func TestReportConflictsOnCompletedAndVerified(t *testing.T) {
	for _, from := range []string{model.CriterionStatusCompleted, model.CriterionStatusVerified} {
		cs := newStatus(from)
		err := Report(cs, "anything", nil, nil, time.Now())

		assert.True(t, apperror.IsKind(err, apperror.KindStateConflict), "reporting from %s must conflict", from)
		assert.Equal(t, from, cs.Status)
	}
}

func TestVerifyAcceptsCompleted(t *testing.T) {
	cs := newStatus(model.CriterionStatusCompleted)
	def := model.CriterionDefinition{CriteriaID: "resume"}

	err := Verify(cs, def, DecisionVerified, strPtr("looks good"), nil, nil, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, model.CriterionStatusVerified, cs.Status)
	assert.Equal(t, "looks good", *cs.VerificationNotes)
}

func TestVerifyRequiresCompletedState(t *testing.T) {
	for _, from := range []string{model.CriterionStatusNotStarted, model.CriterionStatusInProgress, model.CriterionStatusVerified} {
		cs := newStatus(from)
		err := Verify(cs, model.CriterionDefinition{}, DecisionVerified, nil, nil, nil, time.Now())

		assert.True(t, apperror.IsKind(err, apperror.KindStateConflict), "verifying from %s must conflict", from)
	}
}

func TestVerifyEnforcesPOCCommentAndRating(t *testing.T) {
	def := model.CriterionDefinition{
		CriteriaID:         "mock_interview",
		POCCommentRequired: true,
		POCRatingRequired:  true,
		POCRatingScale:     5,
	}

	cs := newStatus(model.CriterionStatusCompleted)
	err := Verify(cs, def, DecisionVerified, nil, nil, intPtr(4), time.Now())
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "missing comment must fail")

	cs = newStatus(model.CriterionStatusCompleted)
	err = Verify(cs, def, DecisionVerified, nil, strPtr("solid answers"), nil, time.Now())
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "missing rating must fail")

	cs = newStatus(model.CriterionStatusCompleted)
	err = Verify(cs, def, DecisionVerified, nil, strPtr("solid answers"), intPtr(6), time.Now())
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "rating above scale must fail")

	cs = newStatus(model.CriterionStatusCompleted)
	err = Verify(cs, def, DecisionVerified, nil, strPtr("solid answers"), intPtr(4), time.Now())
	assert.NoError(t, err)
	assert.Equal(t, model.CriterionStatusVerified, cs.Status)
	assert.Equal(t, 4, *cs.POCRating)
}

func TestRejectionPreservesSubmission(t *testing.T) {
	cs := newStatus(model.CriterionStatusCompleted)
	cs.SelfReportedValue = strPtr("42 wpm")
	cs.ProofURL = strPtr("https://typing.example.com/result")

	err := Verify(cs, model.CriterionDefinition{}, DecisionRejected, strPtr("retake with fewer errors"), nil, nil, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, model.CriterionStatusInProgress, cs.Status)
	assert.Equal(t, "42 wpm", *cs.SelfReportedValue, "rejection must keep the submission")
	assert.Equal(t, "retake with fewer errors", *cs.VerificationNotes)

	// The student can revise and resubmit from in_progress.
	err = Report(cs, "55 wpm", nil, nil, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, model.CriterionStatusCompleted, cs.Status)
}

func TestUnverifyReopensVerifiedOnly(t *testing.T) {
	cs := newStatus(model.CriterionStatusVerified)
	assert.NoError(t, Unverify(cs, time.Now()))
	assert.Equal(t, model.CriterionStatusCompleted, cs.Status)

	err := Unverify(newStatus(model.CriterionStatusCompleted), time.Now())
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))
}

func TestPercentageFloorsDivision(t *testing.T) {
	assert.Equal(t, 50, Percentage(2, 4, false))
	assert.Equal(t, 33, Percentage(1, 3, false))
	assert.Equal(t, 66, Percentage(2, 3, false))
	assert.Equal(t, 100, Percentage(4, 4, false))
	assert.Equal(t, 0, Percentage(0, 4, false))
}

func TestPercentageEmptyCatalog(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0, false))
	assert.Equal(t, 100, Percentage(0, 0, true))
}

func TestRecordPercentageCountsUntouchedCriteria(t *testing.T) {
	catalog := []model.CriterionDefinition{
		{CriteriaID: "resume"}, {CriteriaID: "typing_speed"},
		{CriteriaID: "mock_interview"}, {CriteriaID: "english_basics"},
	}
	record := &model.StudentReadinessRecord{
		CriteriaStatus: []model.CriterionStatus{
			{CriteriaID: "resume", Status: model.CriterionStatusVerified},
			{CriteriaID: "typing_speed", Status: model.CriterionStatusVerified},
			{CriteriaID: "mock_interview", Status: model.CriterionStatusCompleted},
		},
	}

	assert.Equal(t, 50, RecordPercentage(record, catalog), "2 verified of 4 defined")
}

func TestApproveJobReadyGuards(t *testing.T) {
	catalog := []model.CriterionDefinition{{CriteriaID: "resume"}, {CriteriaID: "typing_speed"}}

	record := &model.StudentReadinessRecord{
		CriteriaStatus: []model.CriterionStatus{
			{CriteriaID: "resume", Status: model.CriterionStatusVerified},
		},
	}
	err := ApproveJobReady(record, catalog, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))
	assert.Contains(t, err.Error(), "only 1 of 2")
	assert.False(t, record.IsJobReady)

	err = ApproveJobReady(record, nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict), "empty catalog must not certify")

	record.CriteriaStatus = append(record.CriteriaStatus,
		model.CriterionStatus{CriteriaID: "typing_speed", Status: model.CriterionStatusVerified})
	assert.NoError(t, ApproveJobReady(record, catalog, strPtr("good to go")))
	assert.True(t, record.IsJobReady)
	assert.Equal(t, "good to go", *record.JobReadyNotes)

	err = ApproveJobReady(record, catalog, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict), "double certification must conflict")
}
