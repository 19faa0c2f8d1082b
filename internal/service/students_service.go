package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// defaultExamName is used when a grade is recorded without naming the exam.
const defaultExamName = "Final Exam"

// StudentsService coordinates students, courses, enrollments and grades.
type StudentsService struct {
	students    repository.StudentRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	grades      repository.GradeRepository
}

// StudentsDependencies bundles repositories for students service.
type StudentsDependencies struct {
	StudentRepo    repository.StudentRepository
	CourseRepo     repository.CourseRepository
	EnrollmentRepo repository.EnrollmentRepository
	GradeRepo      repository.GradeRepository
}

// NewStudentsService creates the service.
func NewStudentsService(deps StudentsDependencies) *StudentsService {
	return &StudentsService{
		students:    deps.StudentRepo,
		courses:     deps.CourseRepo,
		enrollments: deps.EnrollmentRepo,
		grades:      deps.GradeRepo,
	}
}

// StudentCreateInput describes student creation payload.
type StudentCreateInput struct {
	FirstName       string
	LastName        string
	StudentIDNumber string
	Email           string
}

// CourseCreateInput describes course creation payload.
type CourseCreateInput struct {
	Name        string
	Description string
	Instructor  string
}

// GradeCreateInput describes grade recording payload.
type GradeCreateInput struct {
	Score    int
	ExamName string
}

// CreateStudent registers a student record.
func (s *StudentsService) CreateStudent(ctx context.Context, input StudentCreateInput) (*domain.Student, error) {
	student := &domain.Student{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		StudentIDNumber: input.StudentIDNumber,
		Email:           input.Email,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// ListStudents returns all students.
func (s *StudentsService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return s.students.List(ctx)
}

// CreateCourse adds a course.
func (s *StudentsService) CreateCourse(ctx context.Context, input CourseCreateInput) (*domain.Course, error) {
	course := &domain.Course{
		Name:        input.Name,
		Description: input.Description,
		Instructor:  input.Instructor,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// ListCourses returns all courses.
func (s *StudentsService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courses.List(ctx)
}

// DeleteCourse removes a course.
func (s *StudentsService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("course", nil)
		}
		return err
	}
	return nil
}

// Enroll links a student to a course. A student already enrolled in the
// course cannot be enrolled twice.
func (s *StudentsService) Enroll(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("student", nil)
		}
		return nil, err
	}
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", nil)
		}
		return nil, err
	}

	if _, err := s.enrollments.GetByPair(ctx, studentID, courseID); err == nil {
		return nil, apperrors.NewConflict("student is already enrolled in this course", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// the unique (student, course) constraint catches the race between the
	// check above and this insert; its violation also maps to a conflict
	enrollment := &domain.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// AddGrade records a score against an existing enrollment, attributed to the
// grading caller. An unnamed exam defaults to "Final Exam".
func (s *StudentsService) AddGrade(ctx context.Context, graderID, studentID, courseID string, input GradeCreateInput) (*domain.Grade, error) {
	if input.Score < 0 || input.Score > 100 {
		return nil, apperrors.NewValidationError("score must be between 0 and 100", nil)
	}

	enrollment, err := s.enrollments.GetByPair(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("enrollment", nil)
		}
		return nil, err
	}

	examName := input.ExamName
	if examName == "" {
		examName = defaultExamName
	}

	grade := &domain.Grade{
		EnrollmentID: enrollment.ID,
		Score:        input.Score,
		ExamName:     examName,
		GradedByID:   &graderID,
	}
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, err
	}
	return grade, nil
}

// StudentCourseAverage returns the mean score of one student's grades in one
// course; 0.0 when no grades are recorded yet.
func (s *StudentsService) StudentCourseAverage(ctx context.Context, studentID, courseID string) (float64, error) {
	enrollment, err := s.enrollments.GetByPair(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("enrollment", nil)
		}
		return 0, err
	}
	return s.grades.AverageForEnrollment(ctx, enrollment.ID)
}

// CourseAverage returns the mean score across every grade in the course; 0.0
// when none are recorded.
func (s *StudentsService) CourseAverage(ctx context.Context, courseID string) (float64, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("course", nil)
		}
		return 0, err
	}
	return s.grades.AverageForCourse(ctx, courseID)
}
