package models

import (
	"fmt"
	"strings"
	"sync"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// Course construction bounds.
const (
	MinCourseCredits   = 1
	MaxCourseCredits   = 6
	DefaultMaxCapacity = 30
)

// Course is an offering students enroll into. Code, title and credits are
// immutable once built; the seat counter moves only through the enrollment
// protocol.
type Course struct {
	Code        string
	Title       string
	Credits     int
	Description string
	Department  Department
	Semester    Semester

	// mu guards the mutable fields below; the exported identity fields
	// never change after construction.
	mu                sync.RWMutex
	instructor        *Instructor
	maxCapacity       int
	currentEnrollment int
	active            bool
}

// CourseConfig names the optional fields for course construction. Zero
// values fall back to defaults (capacity 30, active true, no instructor).
type CourseConfig struct {
	Code              string
	Title             string
	Credits           int
	Description       string
	Department        Department
	Semester          Semester
	Instructor        *Instructor
	MaxCapacity       int
	CurrentEnrollment int
	Inactive          bool
}

// NewCourse validates the configuration and builds an immutable course.
// It rejects credits outside [1, 6], non-positive capacity and an initial
// enrollment exceeding capacity.
func NewCourse(cfg CourseConfig) (*Course, error) {
	if strings.TrimSpace(cfg.Code) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	if strings.TrimSpace(cfg.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course title is required")
	}
	if cfg.Credits < MinCourseCredits || cfg.Credits > MaxCourseCredits {
		return nil, appErrors.Newf(appErrors.ErrInvalidCredits.Code, appErrors.ErrInvalidCredits.Status,
			"credits must be between %d and %d, got %d", MinCourseCredits, MaxCourseCredits, cfg.Credits)
	}
	capacity := cfg.MaxCapacity
	if capacity == 0 {
		capacity = DefaultMaxCapacity
	}
	if capacity < 1 {
		return nil, appErrors.Newf(appErrors.ErrInvalidCapacity.Code, appErrors.ErrInvalidCapacity.Status,
			"max capacity must be positive, got %d", capacity)
	}
	if cfg.CurrentEnrollment < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "current enrollment cannot be negative")
	}
	if cfg.CurrentEnrollment > capacity {
		return nil, appErrors.Newf(appErrors.ErrInconsistentState.Code, appErrors.ErrInconsistentState.Status,
			"current enrollment %d exceeds max capacity %d", cfg.CurrentEnrollment, capacity)
	}
	return &Course{
		Code:              cfg.Code,
		Title:             cfg.Title,
		Credits:           cfg.Credits,
		Description:       cfg.Description,
		Department:        cfg.Department,
		Semester:          cfg.Semester,
		instructor:        cfg.Instructor,
		maxCapacity:       capacity,
		currentEnrollment: cfg.CurrentEnrollment,
		active:            !cfg.Inactive,
	}, nil
}

// MaxCapacity returns the seat capacity.
func (c *Course) MaxCapacity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxCapacity
}

// CurrentEnrollment returns the number of seats taken.
func (c *Course) CurrentEnrollment() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentEnrollment
}

// HasSeat reports whether a seat is available.
func (c *Course) HasSeat() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasSeatLocked()
}

func (c *Course) hasSeatLocked() bool {
	return c.currentEnrollment < c.maxCapacity
}

// TakeSeat claims one seat, failing when the course is full. Only the
// enrollment protocol may call this.
func (c *Course) TakeSeat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasSeatLocked() {
		return appErrors.Newf(appErrors.ErrCourseFull.Code, appErrors.ErrCourseFull.Status,
			"course %s is at full capacity (%d)", c.Code, c.maxCapacity)
	}
	c.currentEnrollment++
	return nil
}

// ReleaseSeat returns one seat, flooring at zero. Releasing a seat on an
// already-empty course is a no-op so idempotent withdrawal paths stay safe.
func (c *Course) ReleaseSeat() {
	c.mu.Lock()
	if c.currentEnrollment > 0 {
		c.currentEnrollment--
	}
	c.mu.Unlock()
}

// Instructor returns the assigned instructor, if any.
func (c *Course) Instructor() *Instructor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instructor
}

// AssignInstructor sets the course's instructor.
func (c *Course) AssignInstructor(instructor *Instructor) {
	c.mu.Lock()
	c.instructor = instructor
	c.mu.Unlock()
}

// IsActive reports whether the course is open.
func (c *Course) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SetActive toggles the course's active flag.
func (c *Course) SetActive(active bool) {
	c.mu.Lock()
	c.active = active
	c.mu.Unlock()
}

func (c *Course) String() string {
	instructor := "None"
	if i := c.Instructor(); i != nil {
		instructor = i.FullName
	}
	semester := "Not assigned"
	if c.Semester != "" {
		semester = c.Semester.DisplayName()
	}
	return fmt.Sprintf("Course{code=%q, title=%q, credits=%d, instructor=%s, semester=%s}",
		c.Code, c.Title, c.Credits, instructor, semester)
}
