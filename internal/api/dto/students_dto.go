package dto

import "time"

// CreateStudentRequest payload.
type CreateStudentRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	StudentIDNumber string `json:"student_id_number" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
}

// StudentResponse representation.
type StudentResponse struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	StudentIDNumber string `json:"student_id_number"`
	Email           string `json:"email"`
}

// CreateCourseRequest payload.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Instructor  string `json:"instructor" validate:"max=255"`
}

// CourseResponse representation.
type CourseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
}

// EnrollRequest payload.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// EnrollmentResponse representation.
type EnrollmentResponse struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// GradeRequest payload; exam_name defaults to "Final Exam" when omitted.
type GradeRequest struct {
	Score    int    `json:"score" validate:"min=0,max=100"`
	ExamName string `json:"exam_name" validate:"max=255"`
}

// GradeResponse representation.
type GradeResponse struct {
	ID           string    `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	Score        int       `json:"score"`
	ExamName     string    `json:"exam_name"`
	GradedByID   *string   `json:"graded_by_id"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// AverageResponse carries a grade aggregation; 0.0 when nothing is recorded.
type AverageResponse struct {
	Average float64 `json:"average"`
}
