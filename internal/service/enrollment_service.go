package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

type enrollmentStore interface {
	Append(enrollment *models.Enrollment) error
	FindByID(id string) (*models.Enrollment, error)
	ExistsActive(studentID, courseCode string) bool
	ListByStudent(studentID string) []*models.Enrollment
	ListByCourse(courseCode string) []*models.Enrollment
	List(filter models.EnrollmentFilter) ([]*models.Enrollment, int)
	All() []*models.Enrollment
}

type studentFinder interface {
	FindByID(id string) (*models.Student, error)
}

type courseFinder interface {
	FindByCode(code string) (*models.Course, error)
}

// EnrollRequest describes an enrollment creation payload.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required"`
	Semester   string `json:"semester" validate:"required"`
}

// RecordGradeRequest carries a letter grade to record.
type RecordGradeRequest struct {
	Grade string `json:"grade" validate:"required"`
}

// EnrollmentService is the single authority over who is enrolled in what.
// It owns the enrollment collection, enforces the cross-entity rules at
// creation and withdrawal time, and computes GPA and transcripts.
type EnrollmentService struct {
	store    enrollmentStore
	students studentFinder
	courses  courseFinder

	ids       EnrollmentIDGenerator
	clock     func() time.Time
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cache     *CacheService

	// mu serialises the compound check-then-mutate across the duplicate
	// check, the credit/seat preconditions and the three-way mutation.
	// GPA and transcript scans hold the read side so a grade or
	// withdrawal never lands mid-computation.
	mu sync.RWMutex
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store enrollmentStore, students studentFinder, courses courseFinder, ids EnrollmentIDGenerator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if ids == nil {
		ids = NewSequentialIDGenerator("ENR")
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		store:     store,
		students:  students,
		courses:   courses,
		ids:       ids,
		clock:     func() time.Time { return time.Now().UTC() },
		validator: validate,
		logger:    logger,
	}
}

// WithClock overrides the enrollment timestamp source, for tests.
func (s *EnrollmentService) WithClock(clock func() time.Time) *EnrollmentService {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// WithMetrics attaches domain instrumentation.
func (s *EnrollmentService) WithMetrics(metrics *MetricsService) *EnrollmentService {
	s.metrics = metrics
	return s
}

// WithCache attaches the GPA/transcript read cache.
func (s *EnrollmentService) WithCache(cache *CacheService) *EnrollmentService {
	s.cache = cache
	return s
}

// Enroll registers a student into a course for a semester. It rejects a
// duplicate active enrollment for the same (student, course) pair, then
// delegates to the entity creation transition which validates the credit
// limit and seat availability before mutating either entity.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	semester, err := models.ParseSemester(req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester")
	}
	student, err := s.students.FindByID(req.StudentID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByCode(req.CourseCode)
	if err != nil {
		return nil, err
	}

	if !course.IsActive() {
		return nil, appErrors.Newf(appErrors.ErrCourseInactive.Code, appErrors.ErrCourseInactive.Status,
			"course %s is not open for enrollment", course.Code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.ExistsActive(student.ID, course.Code) {
		return nil, appErrors.Newf(appErrors.ErrDuplicateEnrollment.Code, appErrors.ErrDuplicateEnrollment.Status,
			"student %s already enrolled in course %s", student.ID, course.Code)
	}

	enrollment, err := models.NewEnrollment(s.ids.Next(), student, course, semester, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.store.Append(enrollment); err != nil {
		return nil, err
	}

	s.metrics.ObserveEnrollment()
	s.invalidateStudent(ctx, student.ID)
	s.logger.Info("student enrolled",
		zap.String("enrollment_id", enrollment.ID()),
		zap.String("student_id", student.ID),
		zap.String("course_code", course.Code),
		zap.String("semester", string(semester)))
	return enrollment, nil
}

// RecordGrade records a letter grade on the enrollment, marking it
// completed.
func (s *EnrollmentService) RecordGrade(ctx context.Context, enrollmentID, rawGrade string) (*models.Enrollment, error) {
	grade, err := models.ParseGrade(rawGrade)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidGrade.Code, appErrors.ErrInvalidGrade.Status, "invalid grade")
	}
	enrollment, err := s.store.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := enrollment.RecordGrade(grade); err != nil {
		return nil, err
	}
	s.metrics.ObserveGradeRecorded()
	s.invalidateStudent(ctx, enrollment.Student().ID)
	s.logger.Info("grade recorded",
		zap.String("enrollment_id", enrollmentID),
		zap.String("grade", string(grade)))
	return enrollment, nil
}

// Withdraw deactivates the enrollment and reverses the seat and credit
// bookkeeping. Withdrawing an already-withdrawn enrollment is a no-op.
func (s *EnrollmentService) Withdraw(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.store.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := enrollment.IsActive()
	enrollment.Withdraw()
	if wasActive {
		s.metrics.ObserveWithdrawal()
		s.invalidateStudent(ctx, enrollment.Student().ID)
		s.logger.Info("enrollment withdrawn", zap.String("enrollment_id", enrollmentID))
	}
	return enrollment, nil
}

// FindByID looks up a single enrollment.
func (s *EnrollmentService) FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.FindByID(enrollmentID)
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, *models.Pagination, error) {
	s.mu.RLock()
	enrollments, total := s.store.List(filter)
	s.mu.RUnlock()
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// ListByStudent returns all of a student's enrollments in enrollment order.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	if _, err := s.students.FindByID(studentID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ListByStudent(studentID), nil
}

// ListByCourse returns all enrollments into a course in enrollment order.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseCode string) ([]*models.Enrollment, error) {
	if _, err := s.courses.FindByCode(courseCode); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ListByCourse(courseCode), nil
}

// GPA computes the credit-weighted grade point average over the student's
// completed, graded enrollments. An empty set yields exactly 0.0. The bool
// reports whether the value came from cache.
func (s *EnrollmentService) GPA(ctx context.Context, studentID string) (float64, bool, error) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		return 0, false, err
	}
	cacheKey := gpaCacheKey(studentID)
	var cached float64
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, true, nil
	}
	s.mu.RLock()
	gpa := s.gpaOf(student)
	s.mu.RUnlock()
	_ = s.cache.Set(ctx, cacheKey, gpa, 0)
	return gpa, false, nil
}

// gpaOf scans the student's enrollments; callers hold at least the read
// side of s.mu.
func (s *EnrollmentService) gpaOf(student *models.Student) float64 {
	var qualityPoints float64
	var credits int
	for _, e := range s.store.ListByStudent(student.ID) {
		if !e.IsCompleted() || !e.HasGrade() {
			continue
		}
		qualityPoints += e.QualityPoints()
		credits += e.Course().Credits
	}
	if credits == 0 {
		return 0.0
	}
	return qualityPoints / float64(credits)
}

// Transcript renders the student's course work in enrollment order,
// followed by the cumulative GPA. The printed GPA equals GPA().
func (s *EnrollmentService) Transcript(ctx context.Context, studentID string) (string, error) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		return "", err
	}
	cacheKey := transcriptCacheKey(studentID)
	var cached string
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString(student.TranscriptHeader())
	b.WriteString("\n\nCOURSE WORK:\n")
	b.WriteString(strings.Repeat("-", 50))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-10s %-30s %-7s %-11s %-8s\n", "Code", "Title", "Credits", "Grade", "Points")
	b.WriteString(strings.Repeat("-", 50))
	b.WriteString("\n")

	for _, e := range s.store.ListByStudent(student.ID) {
		gradeDisplay := "In Progress"
		pointsDisplay := "-"
		if e.HasGrade() {
			gradeDisplay = string(e.Grade())
			pointsDisplay = fmt.Sprintf("%.1f", e.GradePoints())
		}
		fmt.Fprintf(&b, "%-10s %-30s %-7s %-11s %-8s\n",
			e.Course().Code, e.Course().Title,
			fmt.Sprintf("%dcr", e.Course().Credits),
			gradeDisplay, pointsDisplay)
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 50))
	b.WriteString("\n")
	fmt.Fprintf(&b, "CUMULATIVE GPA: %.2f", s.gpaOf(student))

	transcript := b.String()
	_ = s.cache.Set(ctx, cacheKey, transcript, 0)
	return transcript, nil
}

func (s *EnrollmentService) invalidateStudent(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("students:%s:*", studentID)); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func gpaCacheKey(studentID string) string {
	return fmt.Sprintf("students:%s:gpa", studentID)
}

func transcriptCacheKey(studentID string) string {
	return fmt.Sprintf("students:%s:transcript", studentID)
}
