package dto

import (
	"time"

	"github.com/opencampus/ccrm-api/internal/models"
)

// StudentView is the JSON projection of a Student entity.
type StudentView struct {
	ID             string    `json:"id"`
	RegNo          string    `json:"reg_no"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Department     string    `json:"department,omitempty"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	MaxCredits     int       `json:"max_credits"`
	CurrentCredits int       `json:"current_credits"`
	Active         bool      `json:"active"`
}

// NewStudentView projects a student for API responses.
func NewStudentView(s *models.Student) StudentView {
	return StudentView{
		ID:             s.ID,
		RegNo:          s.RegNo(),
		FullName:       s.FullName,
		Email:          s.Email,
		Department:     string(s.Department),
		EnrollmentDate: s.EnrollmentDate,
		MaxCredits:     s.MaxCredits(),
		CurrentCredits: s.CurrentCredits(),
		Active:         s.IsActive(),
	}
}

// CourseView is the JSON projection of a Course entity.
type CourseView struct {
	Code              string `json:"code"`
	Title             string `json:"title"`
	Credits           int    `json:"credits"`
	Description       string `json:"description,omitempty"`
	Department        string `json:"department,omitempty"`
	Semester          string `json:"semester,omitempty"`
	Instructor        string `json:"instructor,omitempty"`
	MaxCapacity       int    `json:"max_capacity"`
	CurrentEnrollment int    `json:"current_enrollment"`
	Active            bool   `json:"active"`
}

// NewCourseView projects a course for API responses.
func NewCourseView(c *models.Course) CourseView {
	view := CourseView{
		Code:              c.Code,
		Title:             c.Title,
		Credits:           c.Credits,
		Description:       c.Description,
		Department:        string(c.Department),
		Semester:          string(c.Semester),
		MaxCapacity:       c.MaxCapacity(),
		CurrentEnrollment: c.CurrentEnrollment(),
		Active:            c.IsActive(),
	}
	if instructor := c.Instructor(); instructor != nil {
		view.Instructor = instructor.FullName
	}
	return view
}

// EnrollmentView is the JSON projection of an Enrollment entity.
type EnrollmentView struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
	Credits     int       `json:"credits"`
	Semester    string    `json:"semester"`
	EnrolledAt  time.Time `json:"enrolled_at"`
	Grade       string    `json:"grade,omitempty"`
	GradePoints *float64  `json:"grade_points,omitempty"`
	Completed   bool      `json:"completed"`
	Active      bool      `json:"active"`
	Status      string    `json:"status"`
}

// NewEnrollmentView projects an enrollment for API responses.
func NewEnrollmentView(e *models.Enrollment) EnrollmentView {
	view := EnrollmentView{
		ID:          e.ID(),
		StudentID:   e.Student().ID,
		StudentName: e.Student().FullName,
		CourseCode:  e.Course().Code,
		CourseTitle: e.Course().Title,
		Credits:     e.Course().Credits,
		Semester:    string(e.Semester()),
		EnrolledAt:  e.EnrolledAt(),
		Completed:   e.IsCompleted(),
		Active:      e.IsActive(),
		Status:      string(e.Status()),
	}
	if e.HasGrade() {
		view.Grade = string(e.Grade())
		points := e.GradePoints()
		view.GradePoints = &points
	}
	return view
}

// NewEnrollmentViews projects a slice of enrollments.
func NewEnrollmentViews(enrollments []*models.Enrollment) []EnrollmentView {
	views := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		views = append(views, NewEnrollmentView(e))
	}
	return views
}

// GPAView carries a student's computed grade point average.
type GPAView struct {
	StudentID string  `json:"student_id"`
	GPA       float64 `json:"gpa"`
}
