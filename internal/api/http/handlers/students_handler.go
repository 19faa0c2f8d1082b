package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/api/dto"
	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/service"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// StudentsHandler manages student, course, enrollment and grade endpoints.
type StudentsHandler struct {
	service *service.StudentsService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(studentsService *service.StudentsService) *StudentsHandler {
	return &StudentsHandler{service: studentsService}
}

// CreateStudent POST /students.
func (h *StudentsHandler) CreateStudent(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	student, err := h.service.CreateStudent(c.Context(), service.StudentCreateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		StudentIDNumber: req.StudentIDNumber,
		Email:           req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": studentResponse(student)})
}

// ListStudents GET /students.
func (h *StudentsHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, studentResponse(&students[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCourse POST /students/courses.
func (h *StudentsHandler) CreateCourse(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	course, err := h.service.CreateCourse(c.Context(), service.CourseCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Instructor:  req.Instructor,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": courseResponse(course)})
}

// ListCourses GET /students/courses.
func (h *StudentsHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.service.ListCourses(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, courseResponse(&courses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteCourse DELETE /students/courses/:id.
func (h *StudentsHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.service.DeleteCourse(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Enroll POST /students/enrollments.
func (h *StudentsHandler) Enroll(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	enrollment, err := h.service.Enroll(c.Context(), req.StudentID, req.CourseID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// AddGrade POST /students/:studentId/courses/:courseId/grades.
func (h *StudentsHandler) AddGrade(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	grade, err := h.service.AddGrade(c.Context(), user.ID,
		c.Params("studentId"), c.Params("courseId"),
		service.GradeCreateInput{Score: req.Score, ExamName: req.ExamName})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": gradeResponse(grade)})
}

// StudentCourseAverage GET /students/:studentId/courses/:courseId/average.
func (h *StudentsHandler) StudentCourseAverage(c *fiber.Ctx) error {
	avg, err := h.service.StudentCourseAverage(c.Context(),
		c.Params("studentId"), c.Params("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AverageResponse{Average: avg}})
}

// CourseAverage GET /students/courses/:id/average.
func (h *StudentsHandler) CourseAverage(c *fiber.Ctx) error {
	avg, err := h.service.CourseAverage(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AverageResponse{Average: avg}})
}

func studentResponse(s *domain.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:              s.ID,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		StudentIDNumber: s.StudentIDNumber,
		Email:           s.Email,
	}
}

func courseResponse(course *domain.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:          course.ID,
		Name:        course.Name,
		Description: course.Description,
		Instructor:  course.Instructor,
	}
}

func enrollmentResponse(e *domain.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:         e.ID,
		StudentID:  e.StudentID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
	}
}

func gradeResponse(g *domain.Grade) dto.GradeResponse {
	return dto.GradeResponse{
		ID:           g.ID,
		EnrollmentID: g.EnrollmentID,
		Score:        g.Score,
		ExamName:     g.ExamName,
		GradedByID:   g.GradedByID,
		RecordedAt:   g.RecordedAt,
	}
}
