package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

type stubStudentRepo struct {
	students map[string]*domain.Student
}

func (r *stubStudentRepo) Create(_ context.Context, s *domain.Student) error {
	s.ID = "student-" + s.StudentIDNumber
	clone := *s
	r.students[s.ID] = &clone
	return nil
}

func (r *stubStudentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (r *stubStudentRepo) List(_ context.Context) ([]domain.Student, error) {
	var out []domain.Student
	for _, s := range r.students {
		out = append(out, *s)
	}
	return out, nil
}

type stubCourseRepo struct {
	courses map[string]*domain.Course
}

func (r *stubCourseRepo) Create(_ context.Context, c *domain.Course) error {
	c.ID = "course-" + c.Name
	clone := *c
	r.courses[c.ID] = &clone
	return nil
}

func (r *stubCourseRepo) GetByID(_ context.Context, id string) (*domain.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (r *stubCourseRepo) List(_ context.Context) ([]domain.Course, error) { return nil, nil }

func (r *stubCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.courses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.courses, id)
	return nil
}

type stubEnrollmentRepo struct {
	byPair map[string]*domain.Enrollment
}

func pairKey(studentID, courseID string) string { return studentID + "/" + courseID }

func (r *stubEnrollmentRepo) Create(_ context.Context, e *domain.Enrollment) error {
	e.ID = "enroll-" + pairKey(e.StudentID, e.CourseID)
	e.EnrolledAt = time.Now()
	clone := *e
	r.byPair[pairKey(e.StudentID, e.CourseID)] = &clone
	return nil
}

func (r *stubEnrollmentRepo) GetByPair(_ context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	e, ok := r.byPair[pairKey(studentID, courseID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

type stubGradeRepo struct {
	grades []domain.Grade
}

func (r *stubGradeRepo) Create(_ context.Context, g *domain.Grade) error {
	g.ID = "grade-1"
	g.RecordedAt = time.Now()
	r.grades = append(r.grades, *g)
	return nil
}

func (r *stubGradeRepo) AverageForEnrollment(_ context.Context, enrollmentID string) (float64, error) {
	var sum, n float64
	for _, g := range r.grades {
		if g.EnrollmentID == enrollmentID {
			sum += float64(g.Score)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

func (r *stubGradeRepo) AverageForCourse(_ context.Context, courseID string) (float64, error) {
	var sum, n float64
	for _, g := range r.grades {
		if strings.HasSuffix(g.EnrollmentID, "/"+courseID) {
			sum += float64(g.Score)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

func newStudentsFixture() (*StudentsService, *stubStudentRepo, *stubCourseRepo, *stubGradeRepo) {
	students := &stubStudentRepo{students: map[string]*domain.Student{}}
	courses := &stubCourseRepo{courses: map[string]*domain.Course{}}
	grades := &stubGradeRepo{}
	svc := NewStudentsService(StudentsDependencies{
		StudentRepo:    students,
		CourseRepo:     courses,
		EnrollmentRepo: &stubEnrollmentRepo{byPair: map[string]*domain.Enrollment{}},
		GradeRepo:      grades,
	})
	return svc, students, courses, grades
}

func seedStudentAndCourse(t *testing.T, svc *StudentsService) (string, string) {
	t.Helper()
	student, err := svc.CreateStudent(context.Background(), StudentCreateInput{
		FirstName: "Ada", LastName: "Lovelace", StudentIDNumber: "S-1", Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	course, err := svc.CreateCourse(context.Background(), CourseCreateInput{Name: "Math"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return student.ID, course.ID
}

func TestEnrollOnce(t *testing.T) {
	svc, _, _, _ := newStudentsFixture()
	studentID, courseID := seedStudentAndCourse(t, svc)

	if _, err := svc.Enroll(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	_, err := svc.Enroll(context.Background(), studentID, courseID)
	expectCode(t, err, "CONFLICT")
}

func TestEnrollUnknownStudent(t *testing.T) {
	svc, _, _, _ := newStudentsFixture()
	_, courseID := seedStudentAndCourse(t, svc)

	_, err := svc.Enroll(context.Background(), "missing", courseID)
	expectCode(t, err, "NOT_FOUND")
}

func TestAddGradeDefaultsExamName(t *testing.T) {
	svc, _, _, grades := newStudentsFixture()
	studentID, courseID := seedStudentAndCourse(t, svc)
	if _, err := svc.Enroll(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	grade, err := svc.AddGrade(context.Background(), "grader-1", studentID, courseID, GradeCreateInput{Score: 88})
	if err != nil {
		t.Fatalf("add grade failed: %v", err)
	}
	if grade.ExamName != "Final Exam" {
		t.Fatalf("exam name = %q, want Final Exam", grade.ExamName)
	}
	if grade.GradedByID == nil || *grade.GradedByID != "grader-1" {
		t.Fatal("grade must record the grader")
	}
	if len(grades.grades) != 1 {
		t.Fatalf("stored grades = %d, want 1", len(grades.grades))
	}
}

func TestAddGradeRequiresEnrollment(t *testing.T) {
	svc, _, _, _ := newStudentsFixture()
	studentID, courseID := seedStudentAndCourse(t, svc)

	_, err := svc.AddGrade(context.Background(), "grader-1", studentID, courseID, GradeCreateInput{Score: 50})
	expectCode(t, err, "NOT_FOUND")
}

func TestAddGradeRejectsOutOfRangeScore(t *testing.T) {
	svc, _, _, _ := newStudentsFixture()
	studentID, courseID := seedStudentAndCourse(t, svc)

	_, err := svc.AddGrade(context.Background(), "grader-1", studentID, courseID, GradeCreateInput{Score: 101})
	expectCode(t, err, "VALIDATION_FAILED")
}

func TestAverageDefaultsToZero(t *testing.T) {
	svc, _, _, _ := newStudentsFixture()
	studentID, courseID := seedStudentAndCourse(t, svc)
	if _, err := svc.Enroll(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	avg, err := svc.StudentCourseAverage(context.Background(), studentID, courseID)
	if err != nil {
		t.Fatalf("average failed: %v", err)
	}
	if avg != 0.0 {
		t.Fatalf("average = %f, want 0.0", avg)
	}
}

func TestAverageOfRecordedGrades(t *testing.T) {
	svc, _, _, _ := newStudentsFixture()
	studentID, courseID := seedStudentAndCourse(t, svc)
	if _, err := svc.Enroll(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	for _, score := range []int{80, 90} {
		if _, err := svc.AddGrade(context.Background(), "grader-1", studentID, courseID, GradeCreateInput{Score: score}); err != nil {
			t.Fatalf("add grade failed: %v", err)
		}
	}

	avg, err := svc.StudentCourseAverage(context.Background(), studentID, courseID)
	if err != nil {
		t.Fatalf("average failed: %v", err)
	}
	if avg != 85.0 {
		t.Fatalf("average = %f, want 85.0", avg)
	}
}
