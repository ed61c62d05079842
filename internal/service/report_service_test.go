package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/dto"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
	"github.com/opencampus/ccrm-api/pkg/jobs"
	"github.com/opencampus/ccrm-api/pkg/storage"
)

type recordingQueue struct {
	enqueued []jobs.Job
	fail     bool
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.fail {
		return appErrors.Clone(appErrors.ErrInternal, "queue full")
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type reportFixture struct {
	service *ReportService
	queue   *recordingQueue
	domain  *enrollmentFixture
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	domain := newEnrollmentFixture(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	queue := &recordingQueue{}
	svc := NewReportService(domain.service, domain.students, domain.courses, store, signer,
		ReportServiceConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour},
		validator.New(), zap.NewNop()).WithQueue(queue)
	return &reportFixture{service: svc, queue: queue, domain: domain}
}

func (f *reportFixture) seedTranscriptData(t *testing.T) {
	t.Helper()
	f.domain.seedStudent(t, "s1", "2026CS001")
	f.domain.seedCourse(t, "CS101", 4)
	f.domain.seedCourse(t, "MATH201", 3)

	e1, err := f.domain.service.Enroll(context.Background(), EnrollRequest{
		StudentID: "s1", CourseCode: "CS101", Semester: "fall",
	})
	require.NoError(t, err)
	_, err = f.domain.service.Enroll(context.Background(), EnrollRequest{
		StudentID: "s1", CourseCode: "MATH201", Semester: "fall",
	})
	require.NoError(t, err)
	_, err = f.domain.service.RecordGrade(context.Background(), e1.ID(), "A")
	require.NoError(t, err)
}

func TestReportServiceCreateJob(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)

	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeTranscript, Format: dto.ReportFormatCSV, StudentID: "s1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, dto.ReportStatusQueued, resp.Status)
	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, resp.ID, f.queue.enqueued[0].ID)

	status, err := f.service.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ReportStatusQueued, status.Status)
	assert.Empty(t, status.DownloadURL)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)

	_, err := f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeTranscript, Format: dto.ReportFormatCSV,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeTranscript, Format: dto.ReportFormatCSV, StudentID: "ghost",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeCourseRoster, Format: dto.ReportFormatCSV,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportServiceCreateJobQueueFailure(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)
	f.queue.fail = true

	_, err := f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeTranscript, Format: dto.ReportFormatCSV, StudentID: "s1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestReportServiceTranscriptLifecycle(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)

	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeTranscript, Format: dto.ReportFormatCSV, StudentID: "s1",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Handle(context.Background(), f.queue.enqueued[0]))

	status, err := f.service.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ReportStatusFinished, status.Status)
	assert.Contains(t, status.DownloadURL, "/api/v1/reports/download/")
	require.NotNil(t, status.ExpiresAt)
	assert.True(t, status.ExpiresAt.After(time.Now()))

	token := status.DownloadURL[strings.LastIndex(status.DownloadURL, "/")+1:]
	download, err := f.service.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, dto.ReportFormatCSV, download.Format)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))

	payload, err := io.ReadAll(download.File)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "CS101")
	assert.Contains(t, content, "CUMULATIVE GPA")
}

func TestReportServiceRosterLifecycle(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)

	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeCourseRoster, Format: dto.ReportFormatPDF, CourseCode: "CS101",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Handle(context.Background(), f.queue.enqueued[0]))

	status, err := f.service.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ReportStatusFinished, status.Status)

	token := status.DownloadURL[strings.LastIndex(status.DownloadURL, "/")+1:]
	download, err := f.service.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, dto.ReportFormatPDF, download.Format)
	assert.True(t, strings.HasSuffix(download.Filename, ".pdf"))
}

func TestReportServiceResolveDownloadRejectsBadTokens(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)

	_, err := f.service.ResolveDownload(context.Background(), "garbage")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "INVALID_DOWNLOAD_TOKEN", appErr.Code)
	assert.Equal(t, 403, appErr.Status)
}

func TestReportServiceDownloadBeforeFinishConflicts(t *testing.T) {
	f := newReportFixture(t)
	f.seedTranscriptData(t)

	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{
		Type: dto.ReportTypeTranscript, Format: dto.ReportFormatCSV, StudentID: "s1",
	})
	require.NoError(t, err)

	// Forge a valid token for the queued job. It parses but the job has
	// not produced a file yet.
	token, _, err := storage.NewSignedURLSigner("test-secret", time.Hour).Generate(resp.ID, "pending.csv")
	require.NoError(t, err)

	_, err = f.service.ResolveDownload(context.Background(), token)
	require.Error(t, err)
}

func TestReportServiceUnknownJobStatus(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.GetStatus(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceHandleUnknownJob(t *testing.T) {
	f := newReportFixture(t)
	err := f.service.Handle(context.Background(), jobs.Job{ID: "missing"})
	require.Error(t, err)
}
