package domain

import "time"

// Course offered to students.
type Course struct {
	ID          string
	Name        string
	Description string
	Instructor  string
}

// Student record.
type Student struct {
	ID              string
	FirstName       string
	LastName        string
	StudentIDNumber string
	Email           string
}

// Enrollment links a student to a course, unique per pair.
type Enrollment struct {
	ID         string
	StudentID  string
	CourseID   string
	EnrolledAt time.Time
}

// Grade is one score recorded against an enrollment.
type Grade struct {
	ID           string
	EnrollmentID string
	Score        int
	ExamName     string
	GradedByID   *string
	RecordedAt   time.Time
}
