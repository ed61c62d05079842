package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/dto"
	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
	"github.com/opencampus/ccrm-api/pkg/export"
	"github.com/opencampus/ccrm-api/pkg/jobs"
	"github.com/opencampus/ccrm-api/pkg/storage"
)

type reportDataSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, courseCode string) ([]*models.Enrollment, error)
	GPA(ctx context.Context, studentID string) (float64, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// reportJob tracks one generation request through its lifecycle.
type reportJob struct {
	id         string
	request    dto.ReportRequest
	status     dto.ReportJobStatus
	relPath    string
	token      string
	url        string
	expiresAt  time.Time
	errMessage string
	createdAt  time.Time
	finishedAt time.Time
}

// ReportServiceConfig governs download links and cleanup.
type ReportServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    dto.ReportFormat
	ExpiresAt time.Time
}

// ReportService orchestrates asynchronous transcript and roster exports.
// Jobs are held in memory and processed by a worker queue.
type ReportService struct {
	data      reportDataSource
	students  studentFinder
	courses   courseFinder
	storage   fileStorage
	signer    *storage.SignedURLSigner
	queue     jobDispatcher
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig

	mu   sync.RWMutex
	jobs map[string]*reportJob
}

// NewReportService constructs the report service.
func NewReportService(data reportDataSource, students studentFinder, courses courseFinder, store fileStorage, signer *storage.SignedURLSigner, cfg ReportServiceConfig, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		data:      data,
		students:  students,
		courses:   courses,
		storage:   store,
		signer:    signer,
		queue:     nil,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		jobs:      make(map[string]*reportJob),
	}
}

// WithQueue attaches the dispatcher used for background processing.
func (s *ReportService) WithQueue(queue jobDispatcher) *ReportService {
	s.queue = queue
	return s
}

// CreateJob validates the request, registers the job and enqueues processing.
func (s *ReportService) CreateJob(ctx context.Context, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	switch req.Type {
	case dto.ReportTypeTranscript:
		if req.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required for transcript reports")
		}
		if _, err := s.students.FindByID(req.StudentID); err != nil {
			return nil, err
		}
	case dto.ReportTypeCourseRoster:
		if req.CourseCode == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course_code is required for roster reports")
		}
		if _, err := s.courses.FindByCode(req.CourseCode); err != nil {
			return nil, err
		}
	}

	job := &reportJob{
		id:        uuid.NewString(),
		request:   req,
		status:    dto.ReportStatusQueued,
		createdAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.id] = job
	s.mu.Unlock()

	if s.queue == nil {
		s.markFailed(job.id, "report queue not running")
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue not running")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.id, Type: string(req.Type)}); err != nil {
		s.markFailed(job.id, "failed to enqueue report job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return &dto.ReportJobResponse{ID: job.id, Status: dto.ReportStatusQueued}, nil
}

// GetStatus exposes job metadata to clients.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.RUnlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	resp := &dto.ReportStatusResponse{ID: job.id, Status: job.status}
	if job.status == dto.ReportStatusFinished {
		resp.DownloadURL = job.url
		expires := job.expiresAt
		resp.ExpiresAt = &expires
	}
	if job.errMessage != "" {
		resp.Error = job.errMessage
	}
	s.mu.RUnlock()
	return resp, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.New("INVALID_DOWNLOAD_TOKEN", 403, "invalid or expired download token")
	}
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	if job.token != token {
		return nil, appErrors.New("INVALID_DOWNLOAD_TOKEN", 403, "token mismatch")
	}
	if job.status != dto.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.request.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// Handle processes a queue job. Wired as the queue handler.
func (s *ReportService) Handle(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	record, ok := s.jobs[job.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown report job %s", job.ID)
	}
	record.status = dto.ReportStatusProcessing
	req := record.request
	s.mu.Unlock()

	dataset, title, err := s.buildDataset(ctx, req)
	if err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}

	var payload []byte
	switch req.Format {
	case dto.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case dto.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", req.Format)
	}
	if err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}

	filename := s.buildFilename(job.ID, req)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}
	url := strings.TrimRight(s.cfg.APIPrefix, "/")
	if url == "" {
		url = "/api/v1"
	}
	url = fmt.Sprintf("%s/reports/download/%s", url, token)

	s.mu.Lock()
	record.status = dto.ReportStatusFinished
	record.relPath = relPath
	record.token = token
	record.url = url
	record.expiresAt = expiresAt
	record.errMessage = ""
	record.finishedAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("report generated",
		zap.String("job_id", job.ID),
		zap.String("type", string(req.Type)),
		zap.String("format", string(req.Format)),
		zap.String("file", relPath))
	return nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ReportService) cleanupExpired() {
	now := time.Now().UTC()
	s.mu.Lock()
	for id, job := range s.jobs {
		if job.status != dto.ReportStatusFinished || job.expiresAt.After(now) {
			continue
		}
		if job.relPath != "" {
			if err := s.storage.Delete(job.relPath); err != nil {
				s.logger.Warn("cleanup delete failed", zap.String("job_id", id), zap.Error(err))
			}
		}
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
}

func (s *ReportService) markFailed(jobID, message string) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.status = dto.ReportStatusFailed
		job.errMessage = message
		job.finishedAt = time.Now().UTC()
	}
	s.mu.Unlock()
}

func (s *ReportService) buildDataset(ctx context.Context, req dto.ReportRequest) (export.Dataset, string, error) {
	switch req.Type {
	case dto.ReportTypeTranscript:
		return s.buildTranscriptDataset(ctx, req.StudentID)
	case dto.ReportTypeCourseRoster:
		return s.buildRosterDataset(ctx, req.CourseCode)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", req.Type)
	}
}

func (s *ReportService) buildTranscriptDataset(ctx context.Context, studentID string) (export.Dataset, string, error) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	enrollments, err := s.data.ListByStudent(ctx, studentID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	gpa, _, err := s.data.GPA(ctx, studentID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{
		Headers: []string{"course_code", "title", "credits", "semester", "status", "grade", "points"},
	}
	for _, e := range enrollments {
		row := map[string]string{
			"course_code": e.Course().Code,
			"title":       e.Course().Title,
			"credits":     strconv.Itoa(e.Course().Credits),
			"semester":    string(e.Semester()),
			"status":      string(e.Status()),
		}
		if e.IsCompleted() && e.HasGrade() {
			row["grade"] = string(e.Grade())
			row["points"] = fmt.Sprintf("%.1f", e.GradePoints())
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"course_code": "CUMULATIVE GPA",
		"points":      fmt.Sprintf("%.2f", gpa),
	})
	title := fmt.Sprintf("Transcript %s (%s)", student.FullName, student.RegNo())
	return dataset, title, nil
}

func (s *ReportService) buildRosterDataset(ctx context.Context, courseCode string) (export.Dataset, string, error) {
	course, err := s.courses.FindByCode(courseCode)
	if err != nil {
		return export.Dataset{}, "", err
	}
	enrollments, err := s.data.ListByCourse(ctx, courseCode)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{
		Headers: []string{"enrollment_id", "student_id", "reg_no", "full_name", "status", "grade"},
	}
	for _, e := range enrollments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"enrollment_id": e.ID(),
			"student_id":    e.Student().ID,
			"reg_no":        e.Student().RegNo(),
			"full_name":     e.Student().FullName,
			"status":        string(e.Status()),
			"grade":         string(e.Grade()),
		})
	}
	title := fmt.Sprintf("Roster %s %s", course.Code, course.Title)
	return dataset, title, nil
}

func (s *ReportService) buildFilename(jobID string, req dto.ReportRequest) string {
	subject := req.StudentID
	if req.Type == dto.ReportTypeCourseRoster {
		subject = req.CourseCode
	}
	subject = strings.ReplaceAll(subject, string(filepath.Separator), "-")
	return fmt.Sprintf("%s/%s_%s_%s.%s", time.Now().UTC().Format("2006-01-02"), req.Type, subject, jobID[:8], req.Format)
}
