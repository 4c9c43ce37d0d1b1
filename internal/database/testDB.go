package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "CampusReady-backend/internal/model"
	"CampusReady-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & seeded records
var (
	TestStudentUser1    m.User
	TestStudentUser2    m.User
	TestPOCUser         m.User
	TestCoordinatorUser m.User

	TestStudent1 m.StudentProfile
	TestStudent2 m.StudentProfile

	// Shared plain password for every seeded user
	TestSeedPassword = "SeedPass123!"

	// TestSchool is the school every seeded criterion and student belongs to
	TestSchool = "School of Programming"

	// Seeded criterion catalog (4 mandatory criteria)
	TestCriteria []m.CriterionDefinition

	// Seeded jobs: TestJob1 fully matches student 1, TestJob2 demands an
	// unmet skill, TestJob3 requires full readiness plus an acknowledgement.
	TestJob1 m.Job
	TestJob2 m.Job
	TestJob3 m.Job
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample students, reviewers, criteria, and jobs if empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return loadTestData(db)
	}

	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return err
	}

	userSpecs := []struct {
		username string
		email    string
		role     string
	}{
		{"student_1", "student1@example.com", m.RoleStudent},
		{"student_2", "student2@example.com", m.RoleStudent},
		{"poc_user", "poc@example.com", m.RoleCampusPOC},
		{"coordinator_user", "coordinator@example.com", m.RoleCoordinator},
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		email := s.email
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Password: hashedPwd,
			Role:     s.role,
			EditableUserInfo: m.EditableUserInfo{
				ContactInfo: m.ContactInfo{Email: &email},
				DisplayName: s.username,
			},
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "student_1":
			TestStudentUser1 = u
		case "student_2":
			TestStudentUser2 = u
		case "poc_user":
			TestPOCUser = u
		case "coordinator_user":
			TestCoordinatorUser = u
		}
	}

	female := "female"
	houseBlue := "blue"
	cgpa1, cgpa2 := 8.2, 6.5
	module1, module2 := 5, 2
	attendance1, attendance2 := 92.0, 71.0
	months1, months2 := 18, 6

	profiles := []m.StudentProfile{
		{
			UserID: TestStudentUser1.ID,
			School: TestSchool,
			Campus: "Pune",
			EditableStudentInfo: m.EditableStudentInfo{
				FirstName:   "Asha",
				LastName:    "Verma",
				Gender:      &female,
				House:       &houseBlue,
				CGPA:        &cgpa1,
				Module:      &module1,
				Attendance:  &attendance1,
				MonthsAtOrg: &months1,
			},
			ApprovalStatus: m.ProfileStatusApproved,
			ProfileVersion: 1,
		},
		{
			UserID: TestStudentUser2.ID,
			School: TestSchool,
			Campus: "Bangalore",
			EditableStudentInfo: m.EditableStudentInfo{
				FirstName:   "Ravi",
				LastName:    "Kumar",
				CGPA:        &cgpa2,
				Module:      &module2,
				Attendance:  &attendance2,
				MonthsAtOrg: &months2,
			},
			ApprovalStatus: m.ProfileStatusDraft,
			ProfileVersion: 1,
		},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}
	TestStudent1 = profiles[0]
	TestStudent2 = profiles[1]

	skills := []m.SkillEntry{
		{StudentID: TestStudentUser1.ID, SkillName: "javascript", Source: m.SkillSourceCatalog, Category: m.SkillCategoryTechnical, SelfRating: 3, ApprovalStatus: m.SkillApprovalApproved},
		{StudentID: TestStudentUser1.ID, SkillName: "communication", Source: m.SkillSourceSelfReported, Category: m.SkillCategorySoft, SelfRating: 3},
		{StudentID: TestStudentUser2.ID, SkillName: "javascript", Source: m.SkillSourceCatalog, Category: m.SkillCategoryTechnical, SelfRating: 2, ApprovalStatus: m.SkillApprovalPending},
	}
	if err := db.Create(&skills).Error; err != nil {
		return err
	}

	TestCriteria = []m.CriterionDefinition{
		{CriteriaID: "resume", School: TestSchool, Name: "Resume ready", InputType: m.CriterionInputLink, Category: "documents", IsMandatory: true, POCRatingScale: 5},
		{CriteriaID: "typing_speed", School: TestSchool, Name: "Typing 30wpm", InputType: m.CriterionInputAnswer, Category: "basics", IsMandatory: true, POCRatingScale: 5},
		{CriteriaID: "mock_interview", School: TestSchool, Name: "Mock interview", InputType: m.CriterionInputComment, Category: "interview", IsMandatory: true, POCCommentRequired: true, POCRatingRequired: true, POCRatingScale: 5},
		{CriteriaID: "english_basics", School: TestSchool, Name: "English basics", InputType: m.CriterionInputYesNo, Category: "basics", IsMandatory: true, POCRatingScale: 5},
	}
	if err := db.Create(&TestCriteria).Error; err != nil {
		return err
	}

	deadline := time.Now().AddDate(0, 1, 0)
	minCGPA := 7.0
	jobs := []m.Job{
		{
			PostedBy: TestCoordinatorUser.ID,
			EditableJobInfo: m.EditableJobInfo{
				Title:    "Junior Web Developer",
				Company:  "TechNova",
				Location: "Pune",
				Deadline: &deadline,
			},
			ReadinessRequirement: m.ReadinessNotRequired,
			RequiredSkills: []m.RequiredSkill{
				{SkillName: "javascript", ProficiencyLevel: 2, Required: true},
			},
			Version: 1,
		},
		{
			PostedBy: TestCoordinatorUser.ID,
			EditableJobInfo: m.EditableJobInfo{
				Title:    "Frontend Engineer",
				Company:  "DataForge",
				Location: "Remote",
				Deadline: &deadline,
			},
			ReadinessRequirement: m.ReadinessInProgress,
			Eligibility:          m.JobEligibilityRules{MinCGPA: &minCGPA},
			RequiredSkills: []m.RequiredSkill{
				{SkillName: "react", ProficiencyLevel: 3, Required: true},
			},
			Version: 1,
		},
		{
			PostedBy: TestCoordinatorUser.ID,
			EditableJobInfo: m.EditableJobInfo{
				Title:    "Support Engineer",
				Company:  "CloudWorks",
				Location: "Bangalore",
				Deadline: &deadline,
			},
			ReadinessRequirement: m.ReadinessRequired,
			CustomRequirements: []m.CustomRequirement{
				{Requirement: "Willing to relocate to Bangalore", IsMandatory: true},
			},
			Version: 1,
		},
	}
	if err := db.Create(&jobs).Error; err != nil {
		return err
	}
	TestJob1 = jobs[0]
	TestJob2 = jobs[1]
	TestJob3 = jobs[2]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"student_1", "student_2", "poc_user", "coordinator_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "student_1":
			TestStudentUser1 = u
		case "student_2":
			TestStudentUser2 = u
		case "poc_user":
			TestPOCUser = u
		case "coordinator_user":
			TestCoordinatorUser = u
		}
	}

	_ = db.Preload("Skills").First(&TestStudent1, "user_id = ?", TestStudentUser1.ID).Error
	_ = db.Preload("Skills").First(&TestStudent2, "user_id = ?", TestStudentUser2.ID).Error

	if err := db.Where("school = ?", TestSchool).Order("id ASC").Find(&TestCriteria).Error; err != nil {
		return err
	}

	var jobs []m.Job
	if err := db.Preload("RequiredSkills").Preload("CustomRequirements").Order("id ASC").Limit(3).Find(&jobs).Error; err == nil {
		if len(jobs) > 0 {
			TestJob1 = jobs[0]
		}
		if len(jobs) > 1 {
			TestJob2 = jobs[1]
		}
		if len(jobs) > 2 {
			TestJob3 = jobs[2]
		}
	}

	return nil
}
