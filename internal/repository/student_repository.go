package repository

import (
	"sort"
	"strings"
	"sync"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// StudentRepository keeps the student registry in memory, indexed by id and
// registration number.
type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]*models.Student
	byRegNo  map[string]string
	order    []string
}

// NewStudentRepository constructs an empty registry.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{
		students: make(map[string]*models.Student),
		byRegNo:  make(map[string]string),
	}
}

// Add registers a student, rejecting duplicate ids or registration numbers.
func (r *StudentRepository) Add(student *models.Student) error {
	if student == nil {
		return appErrors.Clone(appErrors.ErrValidation, "student is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.students[student.ID]; exists {
		return appErrors.Newf(appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
			"student %s already exists", student.ID)
	}
	if regNo := student.RegNo(); regNo != "" {
		if _, exists := r.byRegNo[regNo]; exists {
			return appErrors.Newf(appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				"registration number %s already in use", regNo)
		}
		r.byRegNo[regNo] = student.ID
	}
	r.students[student.ID] = student
	r.order = append(r.order, student.ID)
	return nil
}

// FindByID looks a student up by id.
func (r *StudentRepository) FindByID(id string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[id]
	if !ok {
		return nil, appErrors.Newf(appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"student %s not found", id)
	}
	return student, nil
}

// FindByRegNo looks a student up by registration number.
func (r *StudentRepository) FindByRegNo(regNo string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRegNo[regNo]
	if !ok {
		return nil, appErrors.Newf(appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"student with registration number %s not found", regNo)
	}
	return r.students[id], nil
}

// List returns students matching the filter in registration order, with the
// total count before pagination.
func (r *StudentRepository) List(filter models.StudentFilter) ([]*models.Student, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Student, 0, len(r.order))
	needle := strings.ToLower(filter.Search)
	for _, id := range r.order {
		s := r.students[id]
		if filter.Department != "" && s.Department != filter.Department {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.FullName), needle) &&
			!strings.Contains(strings.ToLower(s.RegNo()), needle) {
			continue
		}
		matched = append(matched, s)
	}
	total := len(matched)
	return paginate(matched, filter.Page, filter.PageSize), total
}

// All returns every student ordered by id, for exports.
func (r *StudentRepository) All() []*models.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	students := make([]*models.Student, 0, len(r.students))
	for _, s := range r.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func paginate[T any](items []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
