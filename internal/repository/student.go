// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/esalama/gatecheck/internal/models"
)

// CreateStudent registers a new student.
func (r *Repository) CreateStudent(ctx context.Context, student *models.Student) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (student_id, full_name, class_name, parent_id, teacher_id, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		student.StudentID, student.FullName, student.ClassName,
		student.ParentID, student.TeacherID, student.Active)
	if err != nil {
		return err
	}
	student.ID, err = res.LastInsertId()
	return err
}

// GetStudentByID retrieves a student by database ID.
func (r *Repository) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetStudentByStudentID retrieves a student by the school-assigned identifier.
func (r *Repository) GetStudentByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	var student models.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE student_id = ?`, studentID)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// CreateRecipient registers a parent or teacher account.
func (r *Repository) CreateRecipient(ctx context.Context, recipient *models.Recipient) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recipients (email, full_name, role) VALUES (?, ?, ?)`,
		recipient.Email, recipient.FullName, recipient.Role)
	if err != nil {
		return err
	}
	recipient.ID, err = res.LastInsertId()
	return err
}

// GetRecipientByID retrieves a recipient by ID.
func (r *Repository) GetRecipientByID(ctx context.Context, id int64) (*models.Recipient, error) {
	var recipient models.Recipient
	err := r.db.GetContext(ctx, &recipient, `SELECT * FROM recipients WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}
