package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"CampusReady-backend/internal/model"
)

var testDB *DBinstanceStruct

func TestMain(m *testing.M) {
	var err error
	var dbTeardown func(context.Context, ...testcontainers.TerminateOption) error
	dbTeardown, testDB, err = GetTestDB()
	if err != nil {
		panic(err)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if dbTeardown != nil {
		_ = dbTeardown(ctx)
	}
}

func TestHealth(t *testing.T) {
	stats := testDB.Health()

	assert.Equal(t, "up", stats["status"])
	assert.NotContains(t, stats, "error")
	assert.Equal(t, "It's healthy", stats["message"])
}

func TestSeededCatalog(t *testing.T) {
	var criteria []model.CriterionDefinition
	err := testDB.Where("school = ?", TestSchool).Find(&criteria).Error
	assert.NoError(t, err)
	assert.Len(t, criteria, 4)
	for _, c := range criteria {
		assert.True(t, c.IsMandatory)
	}
}

func TestSeededJobsHaveVersions(t *testing.T) {
	var jobs []model.Job
	err := testDB.Preload("RequiredSkills").Preload("CustomRequirements").Find(&jobs).Error
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(jobs), 3)
	for _, j := range jobs {
		assert.GreaterOrEqual(t, j.Version, 1)
	}
}

func TestActiveApplicationUniqueness(t *testing.T) {
	active := true
	first := model.Application{
		StudentID:  TestStudentUser2.ID,
		JobID:      TestJob1.ID,
		Status:     model.ApplicationStatusApplied,
		Mode:       model.ApplicationModeDirect,
		ActiveFlag: &active,
	}
	assert.NoError(t, testDB.Create(&first).Error)
	t.Cleanup(func() {
		testDB.Unscoped().Delete(&model.Application{}, first.ID)
	})

	dup := model.Application{
		StudentID:  TestStudentUser2.ID,
		JobID:      TestJob1.ID,
		Status:     model.ApplicationStatusApplied,
		Mode:       model.ApplicationModeDirect,
		ActiveFlag: &active,
	}
	assert.Error(t, testDB.Create(&dup).Error, "second active application for the same job must violate the unique index")
}
