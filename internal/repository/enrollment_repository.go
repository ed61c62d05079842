package repository

import (
	"sync"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// EnrollmentRepository holds the full enrollment collection in creation
// order. The EnrollmentService is its only writer.
type EnrollmentRepository struct {
	mu          sync.RWMutex
	enrollments []*models.Enrollment
	byID        map[string]*models.Enrollment
}

// NewEnrollmentRepository constructs an empty collection.
func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{byID: make(map[string]*models.Enrollment)}
}

// Append adds a new enrollment to the collection.
func (r *EnrollmentRepository) Append(enrollment *models.Enrollment) error {
	if enrollment == nil {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[enrollment.ID()]; exists {
		return appErrors.Newf(appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
			"enrollment %s already exists", enrollment.ID())
	}
	r.enrollments = append(r.enrollments, enrollment)
	r.byID[enrollment.ID()] = enrollment
	return nil
}

// FindByID looks an enrollment up by id.
func (r *EnrollmentRepository) FindByID(id string) (*models.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enrollment, ok := r.byID[id]
	if !ok {
		return nil, appErrors.Newf(appErrors.ErrEnrollmentNotFound.Code, appErrors.ErrEnrollmentNotFound.Status,
			"enrollment %s not found", id)
	}
	return enrollment, nil
}

// ExistsActive reports whether the student currently holds an active
// enrollment in the course. Withdrawn enrollments do not count, so a
// student can re-enroll in a course they withdrew from.
func (r *EnrollmentRepository) ExistsActive(studentID, courseCode string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.enrollments {
		if e.Student().ID == studentID && e.Course().Code == courseCode && e.IsActive() {
			return true
		}
	}
	return false
}

// ListByStudent returns the student's enrollments in creation order.
func (r *EnrollmentRepository) ListByStudent(studentID string) []*models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*models.Enrollment
	for _, e := range r.enrollments {
		if e.Student().ID == studentID {
			matched = append(matched, e)
		}
	}
	return matched
}

// ListByCourse returns the course's enrollments in creation order.
func (r *EnrollmentRepository) ListByCourse(courseCode string) []*models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*models.Enrollment
	for _, e := range r.enrollments {
		if e.Course().Code == courseCode {
			matched = append(matched, e)
		}
	}
	return matched
}

// List returns enrollments matching the filter, with the total count before
// pagination.
func (r *EnrollmentRepository) List(filter models.EnrollmentFilter) ([]*models.Enrollment, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*models.Enrollment, 0, len(r.enrollments))
	for _, e := range r.enrollments {
		if filter.StudentID != "" && e.Student().ID != filter.StudentID {
			continue
		}
		if filter.CourseCode != "" && e.Course().Code != filter.CourseCode {
			continue
		}
		if filter.Semester != "" && e.Semester() != filter.Semester {
			continue
		}
		if filter.ActiveOnly && !e.IsActive() {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	return paginate(matched, filter.Page, filter.PageSize), total
}

// All returns the whole collection in creation order.
func (r *EnrollmentRepository) All() []*models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Enrollment, len(r.enrollments))
	copy(out, r.enrollments)
	return out
}
