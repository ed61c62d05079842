package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

type studentStore interface {
	Add(student *models.Student) error
	FindByID(id string) (*models.Student, error)
	FindByRegNo(regNo string) (*models.Student, error)
	List(filter models.StudentFilter) ([]*models.Student, int)
	All() []*models.Student
}

// CreateStudentRequest describes a student registration payload.
type CreateStudentRequest struct {
	ID         string `json:"id"`
	RegNo      string `json:"reg_no" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,contains=@"`
	Department string `json:"department"`
}

// SetMaxCreditsRequest adjusts a student's per-semester credit limit.
type SetMaxCreditsRequest struct {
	MaxCredits int `json:"max_credits" validate:"required,min=1,max=24"`
}

// StudentService manages the student registry.
type StudentService struct {
	store     studentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(store studentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, validator: validate, logger: logger}
}

// Create validates the payload and registers a new student. A missing id is
// minted by the service.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	student, err := models.NewStudent(id, req.RegNo, req.FullName, req.Email)
	if err != nil {
		return nil, err
	}
	if req.Department != "" {
		dept, err := models.ParseDepartment(req.Department)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department")
		}
		student.Department = dept
	}
	if err := s.store.Add(student); err != nil {
		return nil, err
	}
	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.String("reg_no", student.RegNo()))
	return student, nil
}

// FindByID looks up a student by id.
func (s *StudentService) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return s.store.FindByID(id)
}

// FindByRegNo looks up a student by registration number.
func (s *StudentService) FindByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	return s.store.FindByRegNo(regNo)
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, *models.Pagination, error) {
	students, total := s.store.List(filter)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// SetMaxCredits adjusts the student's per-semester credit limit.
func (s *StudentService) SetMaxCredits(ctx context.Context, id string, req SetMaxCreditsRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid max credits payload")
	}
	student, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := student.SetMaxCredits(req.MaxCredits); err != nil {
		return nil, err
	}
	s.logger.Info("max credits updated", zap.String("student_id", id), zap.Int("max_credits", req.MaxCredits))
	return student, nil
}
