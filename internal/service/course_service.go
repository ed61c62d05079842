package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

type courseStore interface {
	Add(course *models.Course) error
	FindByCode(code string) (*models.Course, error)
	List(filter models.CourseFilter) ([]*models.Course, int)
	All() []*models.Course
}

// CreateCourseRequest describes a course creation payload.
type CreateCourseRequest struct {
	Code        string `json:"code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Credits     int    `json:"credits" validate:"required,min=1,max=6"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Semester    string `json:"semester"`
	MaxCapacity int    `json:"max_capacity" validate:"omitempty,min=1"`
}

// AssignInstructorRequest attaches an instructor to a course.
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id"`
	EmployeeID   string `json:"employee_id"`
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,contains=@"`
	Department   string `json:"department"`
}

// CourseService manages the course catalog.
type CourseService struct {
	store     courseStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(store courseStore, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{store: store, validator: validate, logger: logger}
}

// Create validates the payload and adds a course to the catalog through the
// validating course factory.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	cfg := models.CourseConfig{
		Code:        req.Code,
		Title:       req.Title,
		Credits:     req.Credits,
		Description: req.Description,
		MaxCapacity: req.MaxCapacity,
	}
	if req.Department != "" {
		dept, err := models.ParseDepartment(req.Department)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department")
		}
		cfg.Department = dept
	}
	if req.Semester != "" {
		semester, err := models.ParseSemester(req.Semester)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester")
		}
		cfg.Semester = semester
	}
	course, err := models.NewCourse(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(course); err != nil {
		return nil, err
	}
	s.logger.Info("course created", zap.String("code", course.Code), zap.Int("credits", course.Credits))
	return course, nil
}

// FindByCode looks up a course by its code.
func (s *CourseService) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	return s.store.FindByCode(code)
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, *models.Pagination, error) {
	courses, total := s.store.List(filter)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// AssignInstructor builds the instructor record and attaches it to the
// course, registering the assignment on both sides.
func (s *CourseService) AssignInstructor(ctx context.Context, code string, req AssignInstructorRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	course, err := s.store.FindByCode(code)
	if err != nil {
		return nil, err
	}
	var dept models.Department
	if req.Department != "" {
		dept, err = models.ParseDepartment(req.Department)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department")
		}
	}
	id := req.InstructorID
	if id == "" {
		id = req.EmployeeID
	}
	if id == "" {
		id = uuid.NewString()
	}
	instructor, err := models.NewInstructor(id, req.EmployeeID, req.FullName, req.Email, dept)
	if err != nil {
		return nil, err
	}
	course.AssignInstructor(instructor)
	instructor.AssignCourse(course)
	s.logger.Info("instructor assigned", zap.String("course_code", code), zap.String("instructor", instructor.FullName))
	return course, nil
}

// SetActive toggles whether a course is open for enrollment.
func (s *CourseService) SetActive(ctx context.Context, code string, active bool) (*models.Course, error) {
	course, err := s.store.FindByCode(code)
	if err != nil {
		return nil, err
	}
	course.SetActive(active)
	return course, nil
}
