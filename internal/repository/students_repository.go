package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// StudentRepository persists student records.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Delete(ctx context.Context, id string) error
}

// EnrollmentRepository persists (student, course) enrollments, unique per pair.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	GetByPair(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error)
}

// GradeRepository persists grades and computes score averages.
type GradeRepository interface {
	Create(ctx context.Context, grade *domain.Grade) error
	// AverageForEnrollment returns 0 when the enrollment has no grades.
	AverageForEnrollment(ctx context.Context, enrollmentID string) (float64, error)
	// AverageForCourse averages every grade recorded across the course's
	// enrollments; 0 when there are none.
	AverageForCourse(ctx context.Context, courseID string) (float64, error)
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository instantiates repository.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	const query = `
        INSERT INTO students (first_name, last_name, student_id_number, email)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		student.FirstName, student.LastName, student.StudentIDNumber, student.Email,
	).Scan(&student.ID)
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	const query = `
        SELECT id, first_name, last_name, student_id_number, email
        FROM students WHERE id=$1`
	var s domain.Student
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.StudentIDNumber, &s.Email,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepository) List(ctx context.Context) ([]domain.Student, error) {
	const query = `
        SELECT id, first_name, last_name, student_id_number, email
        FROM students ORDER BY last_name, first_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.StudentIDNumber, &s.Email); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (name, description, instructor)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query, course.Name, course.Description, course.Instructor).
		Scan(&course.ID)
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	const query = `SELECT id, name, description, instructor FROM courses WHERE id=$1`
	var c domain.Course
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Instructor); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepository) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, instructor FROM courses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Instructor); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository instantiates repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        INSERT INTO enrollments (student_id, course_id)
        VALUES ($1,$2)
        RETURNING id, enrolled_at`
	return r.pool.QueryRow(ctx, query, enrollment.StudentID, enrollment.CourseID).
		Scan(&enrollment.ID, &enrollment.EnrolledAt)
}

func (r *enrollmentRepository) GetByPair(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	const query = `
        SELECT id, student_id, course_id, enrolled_at
        FROM enrollments WHERE student_id=$1 AND course_id=$2`
	var e domain.Enrollment
	if err := r.pool.QueryRow(ctx, query, studentID, courseID).Scan(
		&e.ID, &e.StudentID, &e.CourseID, &e.EnrolledAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

type gradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository instantiates repository.
func NewGradeRepository(pool *pgxpool.Pool) GradeRepository {
	return &gradeRepository{pool: pool}
}

func (r *gradeRepository) Create(ctx context.Context, grade *domain.Grade) error {
	const query = `
        INSERT INTO grades (enrollment_id, score, exam_name, graded_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, recorded_at`
	return r.pool.QueryRow(ctx, query,
		grade.EnrollmentID, grade.Score, grade.ExamName, grade.GradedByID,
	).Scan(&grade.ID, &grade.RecordedAt)
}

func (r *gradeRepository) AverageForEnrollment(ctx context.Context, enrollmentID string) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(score), 0)::float8
        FROM grades WHERE enrollment_id=$1`
	var avg float64
	err := r.pool.QueryRow(ctx, query, enrollmentID).Scan(&avg)
	return avg, err
}

func (r *gradeRepository) AverageForCourse(ctx context.Context, courseID string) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(g.score), 0)::float8
        FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        WHERE e.course_id=$1`
	var avg float64
	err := r.pool.QueryRow(ctx, query, courseID).Scan(&avg)
	return avg, err
}
