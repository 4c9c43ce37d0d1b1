// Package match implements the pure scoring function between a student
// profile and a job definition. Compute has no side effects and never touches
// the database; results are projections, safe to throw away and recompute.
package match

import (
	"fmt"

	"CampusReady-backend/internal/model"
)

// SkillDetail is the per-skill line in the match breakdown
type SkillDetail struct {
	SkillName     string `json:"skill_name"`
	RequiredLevel int    `json:"required_level"`
	StudentLevel  int    `json:"student_level"`
	Required      bool   `json:"required"`
	Meets         bool   `json:"meets"`
}

// SkillsBreakdown summarizes the skills dimension. Required counts only
// RequiredSkill entries with Required=true; optional skills appear in Details
// but never in the denominator.
type SkillsBreakdown struct {
	Matched    int           `json:"matched"`
	Required   int           `json:"required"`
	Percentage int           `json:"percentage"`
	Details    []SkillDetail `json:"details"`
}

// RuleDetail is the per-rule line for the eligibility dimension
type RuleDetail struct {
	Rule     string `json:"rule"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// EligibilityBreakdown summarizes the hard-filter dimension. Unset rules are
// vacuously satisfied and excluded from Total.
type EligibilityBreakdown struct {
	Passed     int          `json:"passed"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Details    []RuleDetail `json:"details"`
}

// RequirementDetail is the per-requirement line for custom requirements
type RequirementDetail struct {
	RequirementID uint   `json:"requirement_id"`
	Requirement   string `json:"requirement"`
	IsMandatory   bool   `json:"is_mandatory"`
	Meets         bool   `json:"meets"`
}

// RequirementsBreakdown summarizes custom-requirement acknowledgements.
// It never lowers the overall percentage but can block canApply on its own.
type RequirementsBreakdown struct {
	Percentage int                 `json:"percentage"`
	Details    []RequirementDetail `json:"details"`
}

// Result is the full match computation output. Ephemeral; profile or job
// edits invalidate it, so it is never persisted as source of truth.
type Result struct {
	OverallPercentage int      `json:"overall_percentage"`
	CanApply          bool     `json:"can_apply"`
	Summary           []string `json:"summary"`

	Skills       SkillsBreakdown       `json:"skills"`
	Eligibility  EligibilityBreakdown  `json:"eligibility"`
	Requirements RequirementsBreakdown `json:"requirements"`
}

// Compute scores profile+skills against job. acknowledged maps
// CustomRequirement IDs to the student's confirmation; pass nil at preview
// time, which leaves mandatory requirements unmet by default.
func Compute(profile model.StudentProfile, skills []model.SkillEntry, job model.Job, acknowledged map[uint]bool) Result {
	res := Result{
		Skills:       computeSkills(skills, job.RequiredSkills),
		Eligibility:  computeEligibility(profile, job.Eligibility),
		Requirements: computeRequirements(job.CustomRequirements, acknowledged),
	}

	// Skills and eligibility weigh equally, rounded half up; custom
	// requirements are tracked separately and only gate canApply.
	res.OverallPercentage = (res.Skills.Percentage + res.Eligibility.Percentage + 1) / 2

	res.CanApply = res.Skills.Percentage == 100 &&
		res.Eligibility.Percentage == 100 &&
		res.Requirements.Percentage == 100

	res.Summary = buildSummary(res)
	return res
}

func computeSkills(skills []model.SkillEntry, required []model.RequiredSkill) SkillsBreakdown {
	byName := make(map[string]model.SkillEntry, len(skills))
	for _, s := range skills {
		if s.Counted() {
			byName[s.SkillName] = s
		}
	}

	out := SkillsBreakdown{Details: make([]SkillDetail, 0, len(required))}
	for _, rs := range required {
		level := 0
		if entry, ok := byName[rs.SkillName]; ok {
			level = entry.SelfRating
		}
		meets := level >= rs.ProficiencyLevel
		out.Details = append(out.Details, SkillDetail{
			SkillName:     rs.SkillName,
			RequiredLevel: rs.ProficiencyLevel,
			StudentLevel:  level,
			Required:      rs.Required,
			Meets:         meets,
		})
		if rs.Required {
			out.Required++
			if meets {
				out.Matched++
			}
		}
	}

	if out.Required == 0 {
		// No skills demanded means trivially satisfied.
		out.Percentage = 100
	} else {
		out.Percentage = out.Matched * 100 / out.Required
	}
	return out
}

func computeEligibility(p model.StudentProfile, rules model.JobEligibilityRules) EligibilityBreakdown {
	out := EligibilityBreakdown{Details: []RuleDetail{}}

	add := func(rule, expected, actual string, passed bool) {
		out.Total++
		if passed {
			out.Passed++
		}
		out.Details = append(out.Details, RuleDetail{Rule: rule, Expected: expected, Actual: actual, Passed: passed})
	}

	if rules.MinCGPA != nil {
		actual := 0.0
		if p.CGPA != nil {
			actual = *p.CGPA
		}
		add("min_cgpa", fmt.Sprintf(">= %.2f", *rules.MinCGPA), fmt.Sprintf("%.2f", actual), actual >= *rules.MinCGPA)
	}
	if len(rules.Schools) > 0 {
		add("schools", fmt.Sprintf("one of %v", []string(rules.Schools)), p.School, containsString(rules.Schools, p.School))
	}
	if len(rules.Campuses) > 0 {
		add("campuses", fmt.Sprintf("one of %v", []string(rules.Campuses)), p.Campus, containsString(rules.Campuses, p.Campus))
	}
	if rules.MinModule != nil {
		actual := 0
		if p.Module != nil {
			actual = *p.Module
		}
		add("min_module", fmt.Sprintf(">= %d", *rules.MinModule), fmt.Sprintf("%d", actual), actual >= *rules.MinModule)
	}
	if rules.FemaleOnly != nil && *rules.FemaleOnly {
		actual := ""
		if p.Gender != nil {
			actual = *p.Gender
		}
		add("female_only", "female", actual, actual == "female")
	}
	if len(rules.Houses) > 0 {
		actual := ""
		if p.House != nil {
			actual = *p.House
		}
		add("houses", fmt.Sprintf("one of %v", []string(rules.Houses)), actual, containsString(rules.Houses, actual))
	}
	if rules.MinAttendance != nil {
		actual := 0.0
		if p.Attendance != nil {
			actual = *p.Attendance
		}
		add("min_attendance", fmt.Sprintf(">= %.1f%%", *rules.MinAttendance), fmt.Sprintf("%.1f%%", actual), actual >= *rules.MinAttendance)
	}
	if rules.MinMonthsAtOrg != nil {
		actual := 0
		if p.MonthsAtOrg != nil {
			actual = *p.MonthsAtOrg
		}
		add("min_months_at_org", fmt.Sprintf(">= %d", *rules.MinMonthsAtOrg), fmt.Sprintf("%d", actual), actual >= *rules.MinMonthsAtOrg)
	}

	if out.Total == 0 {
		out.Percentage = 100
	} else {
		out.Percentage = out.Passed * 100 / out.Total
	}
	return out
}

func computeRequirements(reqs []model.CustomRequirement, acknowledged map[uint]bool) RequirementsBreakdown {
	out := RequirementsBreakdown{Details: make([]RequirementDetail, 0, len(reqs))}
	met := 0
	for _, r := range reqs {
		meets := acknowledged[r.ID]
		if meets {
			met++
		}
		out.Details = append(out.Details, RequirementDetail{
			RequirementID: r.ID,
			Requirement:   r.Requirement,
			IsMandatory:   r.IsMandatory,
			Meets:         meets,
		})
	}
	if len(reqs) == 0 {
		out.Percentage = 100
	} else {
		out.Percentage = met * 100 / len(reqs)
	}
	return out
}

func buildSummary(r Result) []string {
	summary := []string{}
	if r.Skills.Required > 0 {
		summary = append(summary, fmt.Sprintf("Skills: %d of %d required skills met", r.Skills.Matched, r.Skills.Required))
	}
	if r.Eligibility.Total > 0 {
		summary = append(summary, fmt.Sprintf("Eligibility: %d of %d rules passed", r.Eligibility.Passed, r.Eligibility.Total))
	}
	if n := len(r.Requirements.Details); n > 0 {
		unmet := 0
		for _, d := range r.Requirements.Details {
			if !d.Meets {
				unmet++
			}
		}
		if unmet > 0 {
			summary = append(summary, fmt.Sprintf("Requirements: %d of %d still need confirmation", unmet, n))
		}
	}
	if r.CanApply {
		summary = append(summary, "Profile fully matches this job")
	}
	return summary
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
