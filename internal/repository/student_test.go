// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/esalama/gatecheck/internal/models"
	"github.com/esalama/gatecheck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStudent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	assert.NotZero(t, student.ID)
}

func TestGetStudentByStudentID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	student, err := repo.GetStudentByStudentID(ctx, "STU-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, student.ID)
	assert.Equal(t, "Amina Hassan", student.FullName)
}

func TestGetStudentByStudentID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetStudentByStudentID(context.Background(), "STU-404")

	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateStudent_WithGuardians(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	parent := testutil.NewTestRecipient(t, repo, "parent@example.com", "parent")
	teacher := testutil.NewTestRecipient(t, repo, "teacher@example.com", "teacher")

	student := &models.Student{
		StudentID: "STU-002",
		FullName:  "Joseph Mwangi",
		ClassName: "Grade 5A",
		ParentID:  &parent.ID,
		TeacherID: &teacher.ID,
		Active:    true,
	}
	require.NoError(t, repo.CreateStudent(ctx, student))

	stored, err := repo.GetStudentByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ParentID)
	require.NotNil(t, stored.TeacherID)
	assert.Equal(t, parent.ID, *stored.ParentID)
	assert.Equal(t, teacher.ID, *stored.TeacherID)
}
