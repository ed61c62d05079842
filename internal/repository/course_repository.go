package repository

import (
	"sort"
	"strings"
	"sync"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// CourseRepository keeps the course catalog in memory, keyed by course code.
type CourseRepository struct {
	mu      sync.RWMutex
	courses map[string]*models.Course
	order   []string
}

// NewCourseRepository constructs an empty catalog.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[string]*models.Course)}
}

// Add registers a course, rejecting duplicate codes.
func (r *CourseRepository) Add(course *models.Course) error {
	if course == nil {
		return appErrors.Clone(appErrors.ErrValidation, "course is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.courses[course.Code]; exists {
		return appErrors.Newf(appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
			"course %s already exists", course.Code)
	}
	r.courses[course.Code] = course
	r.order = append(r.order, course.Code)
	return nil
}

// FindByCode looks a course up by its code.
func (r *CourseRepository) FindByCode(code string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[code]
	if !ok {
		return nil, appErrors.Newf(appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"course %s not found", code)
	}
	return course, nil
}

// List returns courses matching the filter in catalog order, with the total
// count before pagination.
func (r *CourseRepository) List(filter models.CourseFilter) ([]*models.Course, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Course, 0, len(r.order))
	needle := strings.ToLower(filter.Search)
	for _, code := range r.order {
		c := r.courses[code]
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if filter.ActiveOnly && !c.IsActive() {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Code), needle) &&
			!strings.Contains(strings.ToLower(c.Title), needle) {
			continue
		}
		matched = append(matched, c)
	}
	total := len(matched)
	return paginate(matched, filter.Page, filter.PageSize), total
}

// All returns every course ordered by code, for exports.
func (r *CourseRepository) All() []*models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	courses := make([]*models.Course, 0, len(r.courses))
	for _, c := range r.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses
}
