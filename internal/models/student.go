package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// Credit bounds for a student's per-semester limit.
const (
	DefaultMaxCreditsPerSemester = 18
	MinCreditsPerSemester        = 1
	MaxCreditsPerSemester        = 24
)

// Student is a learner who can be enrolled in courses. The enrolled course
// set is mutated only through the enrollment protocol, never directly by
// callers.
type Student struct {
	Person
	Department     Department
	EnrollmentDate time.Time

	// mu guards the credit limit and the enrolled course set. Handlers
	// project students while the enrollment protocol mutates them, so
	// every access below goes through it.
	mu                    sync.RWMutex
	maxCreditsPerSemester int
	enrolledCourses       map[string]*Course
}

// NewStudent builds a student with the default credit limit. The email must
// contain "@".
func NewStudent(id, regNo, fullName, email string) (*Student, error) {
	now := time.Now().UTC()
	person, err := newPerson(id, regNo, fullName, email, now)
	if err != nil {
		return nil, err
	}
	return &Student{
		Person:                person,
		EnrollmentDate:        now,
		maxCreditsPerSemester: DefaultMaxCreditsPerSemester,
		enrolledCourses:       make(map[string]*Course),
	}, nil
}

// Role identifies the person variant.
func (s *Student) Role() Role {
	return RoleStudent
}

// RegNo returns the student's registration number.
func (s *Student) RegNo() string {
	return s.RegistrationNumber
}

// MaxCredits returns the per-semester credit limit.
func (s *Student) MaxCredits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxCreditsPerSemester
}

// SetMaxCredits adjusts the per-semester credit limit within [1, 24].
func (s *Student) SetMaxCredits(max int) error {
	if max < MinCreditsPerSemester || max > MaxCreditsPerSemester {
		return appErrors.Newf(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			"max credits must be between %d and %d", MinCreditsPerSemester, MaxCreditsPerSemester)
	}
	s.mu.Lock()
	s.maxCreditsPerSemester = max
	s.mu.Unlock()
	return nil
}

// CurrentCredits sums the credits of all currently enrolled courses.
func (s *Student) CurrentCredits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentCreditsLocked()
}

func (s *Student) currentCreditsLocked() int {
	total := 0
	for _, c := range s.enrolledCourses {
		total += c.Credits
	}
	return total
}

// CanEnroll reports whether adding the course stays within the credit limit.
func (s *Student) CanEnroll(course *Course) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentCreditsLocked()+course.Credits <= s.maxCreditsPerSemester
}

// AddCourse records the course on the student's enrolled set. Adding a
// course that is already present is a no-op. Only the enrollment protocol
// may call this; it performs no credit-limit validation itself.
func (s *Student) AddCourse(course *Course) {
	if course == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrolledCourses == nil {
		s.enrolledCourses = make(map[string]*Course)
	}
	s.enrolledCourses[course.Code] = course
}

// RemoveCourse drops the course from the student's enrolled set. Removing
// an absent course is a no-op.
func (s *Student) RemoveCourse(course *Course) {
	if course == nil {
		return
	}
	s.mu.Lock()
	delete(s.enrolledCourses, course.Code)
	s.mu.Unlock()
}

// EnrolledCourses returns a copy of the enrolled set, ordered by course code.
func (s *Student) EnrolledCourses() []*Course {
	s.mu.RLock()
	courses := make([]*Course, 0, len(s.enrolledCourses))
	for _, c := range s.enrolledCourses {
		courses = append(courses, c)
	}
	s.mu.RUnlock()
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses
}

// TranscriptHeader renders the identity block at the top of a transcript.
func (s *Student) TranscriptHeader() string {
	department := "Undeclared"
	if s.Department != "" {
		department = s.Department.FullName()
		if department == "" {
			department = string(s.Department)
		}
	}
	return fmt.Sprintf("TRANSCRIPT FOR: %s (%s)\nID: %s | Department: %s\nEnrollment Date: %s\n%s",
		s.FullName, s.RegNo(), s.ID, department,
		s.EnrollmentDate.Format("2006-01-02"), strings.Repeat("=", 50))
}

func (s *Student) String() string {
	return fmt.Sprintf("Student{id=%q, regNo=%q, name=%q, department=%q}",
		s.ID, s.RegNo(), s.FullName, string(s.Department))
}
