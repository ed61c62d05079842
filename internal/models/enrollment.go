package models

import (
	"fmt"
	"sync"
	"time"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// EnrollmentStatus is the observable lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "Active"
	EnrollmentStatusCompleted EnrollmentStatus = "Completed"
	EnrollmentStatusWithdrawn EnrollmentStatus = "Withdrawn"
)

// Enrollment binds one student to one course for one semester. It owns the
// grade state and lifecycle flags; the student and course references are
// immutable after creation and outlive the enrollment.
type Enrollment struct {
	id         string
	student    *Student
	course     *Course
	semester   Semester
	enrolledAt time.Time

	// mu guards the grade and lifecycle flags, which transcript and GPA
	// reads observe while grading and withdrawal mutate them.
	mu        sync.RWMutex
	grade     Grade
	completed bool
	active    bool
}

// NewEnrollment creates an active enrollment after validating both the
// student's credit limit and the course's seat availability. Both checks run
// before either entity is mutated, so a rejection leaves student and course
// untouched.
func NewEnrollment(id string, student *Student, course *Course, semester Semester, enrolledAt time.Time) (*Enrollment, error) {
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is required")
	}
	if course == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course is required")
	}
	if !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}

	if !student.CanEnroll(course) {
		return nil, appErrors.Newf(appErrors.ErrCreditLimitExceeded.Code, appErrors.ErrCreditLimitExceeded.Status,
			"credit limit exceeded: current %d, course %d, max %d",
			student.CurrentCredits(), course.Credits, student.MaxCredits())
	}
	if !course.HasSeat() {
		return nil, appErrors.Newf(appErrors.ErrCourseFull.Code, appErrors.ErrCourseFull.Status,
			"course %s is at full capacity (%d)", course.Code, course.MaxCapacity())
	}

	student.AddCourse(course)
	if err := course.TakeSeat(); err != nil {
		// Unreachable after the HasSeat check above; keep the bookkeeping
		// consistent regardless.
		student.RemoveCourse(course)
		return nil, err
	}

	return &Enrollment{
		id:         id,
		student:    student,
		course:     course,
		semester:   semester,
		enrolledAt: enrolledAt,
		active:     true,
	}, nil
}

// ID returns the enrollment's unique identifier.
func (e *Enrollment) ID() string { return e.id }

// Student returns the enrolled student.
func (e *Enrollment) Student() *Student { return e.student }

// Course returns the course enrolled into.
func (e *Enrollment) Course() *Course { return e.course }

// Semester returns the academic term.
func (e *Enrollment) Semester() Semester { return e.semester }

// EnrolledAt returns the enrollment date.
func (e *Enrollment) EnrolledAt() time.Time { return e.enrolledAt }

// Grade returns the recorded grade, zero when ungraded.
func (e *Enrollment) Grade() Grade {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grade
}

// HasGrade reports whether a grade has been recorded.
func (e *Enrollment) HasGrade() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grade != ""
}

// IsCompleted reports whether a grade has been recorded and not withdrawn.
func (e *Enrollment) IsCompleted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.completed
}

// IsActive reports whether the enrollment has not been withdrawn.
func (e *Enrollment) IsActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// RecordGrade sets the grade and marks the enrollment completed. Recording
// over an existing grade replaces it.
func (e *Enrollment) RecordGrade(grade Grade) error {
	if !grade.Valid() {
		return appErrors.Newf(appErrors.ErrInvalidGrade.Code, appErrors.ErrInvalidGrade.Status,
			"invalid grade %q", string(grade))
	}
	e.mu.Lock()
	e.grade = grade
	e.completed = true
	e.mu.Unlock()
	return nil
}

// Withdraw deactivates the enrollment and reverses the student and course
// bookkeeping. It is idempotent: repeated calls do not release extra seats.
// A previously recorded grade is left in place, so a withdrawn enrollment
// can still carry a grade.
func (e *Enrollment) Withdraw() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	e.completed = false
	e.mu.Unlock()
	e.student.RemoveCourse(e.course)
	e.course.ReleaseSeat()
}

// GradePoints returns the point value of the recorded grade, 0 when
// ungraded.
func (e *Enrollment) GradePoints() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gradePointsLocked()
}

func (e *Enrollment) gradePointsLocked() float64 {
	if e.grade == "" {
		return 0
	}
	return e.grade.Points()
}

// QualityPoints returns grade points weighted by the course's credits.
func (e *Enrollment) QualityPoints() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gradePointsLocked() * float64(e.course.Credits)
}

// Status resolves the observable lifecycle state.
func (e *Enrollment) Status() EnrollmentStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statusLocked()
}

func (e *Enrollment) statusLocked() EnrollmentStatus {
	if !e.active {
		return EnrollmentStatusWithdrawn
	}
	if e.completed {
		return EnrollmentStatusCompleted
	}
	return EnrollmentStatusActive
}

func (e *Enrollment) String() string {
	e.mu.RLock()
	grade := "Not Graded"
	if e.grade != "" {
		grade = e.grade.String()
	}
	status := e.statusLocked()
	e.mu.RUnlock()
	return fmt.Sprintf("Enrollment[%s] %s in %s - Grade: %s, Status: %s",
		e.id, e.student.FullName, e.course.Code, grade, status)
}
