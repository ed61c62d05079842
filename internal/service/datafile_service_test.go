package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/models"
	"github.com/opencampus/ccrm-api/internal/repository"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

type datafileFixture struct {
	service   *DatafileService
	students  *repository.StudentRepository
	courses   *repository.CourseRepository
	store     *repository.EnrollmentRepository
	dataDir   string
	backupDir string
}

func newDatafileFixture(t *testing.T) *datafileFixture {
	t.Helper()
	dataDir := t.TempDir()
	backupDir := t.TempDir()
	students := repository.NewStudentRepository()
	courses := repository.NewCourseRepository()
	store := repository.NewEnrollmentRepository()
	svc := NewDatafileService(students, courses, store, dataDir, backupDir, zap.NewNop()).
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC) })
	return &datafileFixture{
		service:   svc,
		students:  students,
		courses:   courses,
		store:     store,
		dataDir:   dataDir,
		backupDir: backupDir,
	}
}

func (f *datafileFixture) writeDatafile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, name), []byte(content), 0o644))
}

func TestDatafileServiceImportStudents(t *testing.T) {
	f := newDatafileFixture(t)
	f.writeDatafile(t, "students.csv",
		"id,reg_no,full_name,email,department,max_credits\n"+
			"s1,2026CS001,Ada Lovelace,ada@campus.edu,CS,15\n"+
			"s2,2026EE001,Grace Hopper,grace@campus.edu,EE,\n")

	summary, err := f.service.ImportStudents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Zero(t, summary.Skipped)

	ada, err := f.students.FindByID("s1")
	require.NoError(t, err)
	assert.Equal(t, models.DeptComputerScience, ada.Department)
	assert.Equal(t, 15, ada.MaxCredits())

	grace, err := f.students.FindByID("s2")
	require.NoError(t, err)
	assert.Equal(t, 18, grace.MaxCredits())
}

func TestDatafileServiceImportSkipsMalformedRows(t *testing.T) {
	f := newDatafileFixture(t)
	f.writeDatafile(t, "students.csv",
		"id,reg_no,full_name,email,department,max_credits\n"+
			"s1,2026CS001,Ada Lovelace,ada@campus.edu,CS,15\n"+
			"s2,2026CS002,Bad Email,not-an-email,,\n"+
			"s3,2026EE001,Bad Credits,bad@campus.edu,,ninety\n"+
			"s1,2026CS009,Duplicate ID,dup@campus.edu,,\n")

	summary, err := f.service.ImportStudents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 3, summary.Skipped)
	assert.Len(t, summary.Warnings, 3)

	_, err = f.students.FindByID("s1")
	require.NoError(t, err)
	_, err = f.students.FindByID("s3")
	require.Error(t, err)
}

func TestDatafileServiceImportCourses(t *testing.T) {
	f := newDatafileFixture(t)
	f.writeDatafile(t, "courses.csv",
		"code,title,credits,department,semester,max_capacity\n"+
			"CS101,Intro to CS,4,CS,FALL,50\n"+
			"EE201,Circuits,3,EE,SPRING,\n"+
			"BAD01,No Credits,,,,\n")

	summary, err := f.service.ImportCourses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	cs, err := f.courses.FindByCode("CS101")
	require.NoError(t, err)
	assert.Equal(t, 50, cs.MaxCapacity())
	assert.Equal(t, models.SemesterFall, cs.Semester)

	ee, err := f.courses.FindByCode("EE201")
	require.NoError(t, err)
	assert.Equal(t, 30, ee.MaxCapacity())
}

func TestDatafileServiceImportMissingFile(t *testing.T) {
	f := newDatafileFixture(t)

	_, err := f.service.ImportStudents(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "DATAFILE_NOT_FOUND", appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestDatafileServiceImportAllOrdersCoursesFirst(t *testing.T) {
	f := newDatafileFixture(t)
	f.writeDatafile(t, "courses.csv", "code,title,credits\nCS101,Intro,3\n")
	f.writeDatafile(t, "students.csv", "id,reg_no,full_name,email\ns1,2026CS001,Ada,ada@campus.edu\n")

	summaries, err := f.service.ImportAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "courses.csv", summaries[0].File)
	assert.Equal(t, "students.csv", summaries[1].File)
}

func TestDatafileServiceExportRoundTrip(t *testing.T) {
	f := newDatafileFixture(t)

	student, err := models.NewStudent("s1", "2026CS001", "Ada Lovelace", "ada@campus.edu")
	require.NoError(t, err)
	student.Department = models.DeptComputerScience
	require.NoError(t, f.students.Add(student))

	course, err := models.NewCourse(models.CourseConfig{Code: "CS101", Title: "Intro", Credits: 3})
	require.NoError(t, err)
	require.NoError(t, f.courses.Add(course))

	enrollment, err := models.NewEnrollment("ENR0001", student, course, models.SemesterFall,
		time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, f.store.Append(enrollment))

	summary, err := f.service.ExportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"students.csv", "courses.csv", "enrollments.csv"}, summary.Files)

	// Re-import into a fresh fixture to prove the files parse back.
	g := newDatafileFixture(t)
	g.service.dataDir = f.dataDir
	summaries, err := g.service.ImportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summaries[0].Imported)
	assert.Equal(t, 1, summaries[1].Imported)

	reloaded, err := g.students.FindByID("s1")
	require.NoError(t, err)
	assert.Equal(t, models.DeptComputerScience, reloaded.Department)
}

func TestDatafileServiceBackup(t *testing.T) {
	f := newDatafileFixture(t)
	student, err := models.NewStudent("s1", "2026CS001", "Ada Lovelace", "ada@campus.edu")
	require.NoError(t, err)
	require.NoError(t, f.students.Add(student))

	summary, err := f.service.Backup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.backupDir, "backup_20260301_123045"), summary.Dir)
	assert.Equal(t, 3, summary.Files)
	assert.Greater(t, summary.SizeBytes, int64(0))

	_, err = os.Stat(filepath.Join(summary.Dir, "students.csv"))
	require.NoError(t, err)

	size, err := f.service.BackupSize()
	require.NoError(t, err)
	assert.Equal(t, summary.SizeBytes, size)
}

func TestDatafileServiceBackupSizeEmpty(t *testing.T) {
	f := newDatafileFixture(t)
	f.service.backupDir = filepath.Join(f.backupDir, "never-created")

	size, err := f.service.BackupSize()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestDatafileServiceSeedSamples(t *testing.T) {
	f := newDatafileFixture(t)

	require.NoError(t, f.service.SeedSamples())

	summaries, err := f.service.ImportAll(context.Background())
	require.NoError(t, err)
	for _, summary := range summaries {
		assert.Equal(t, 2, summary.Imported)
		assert.Zero(t, summary.Skipped)
	}

	ada, err := f.students.FindByRegNo("2026CS001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", ada.FullName)
	intro, err := f.courses.FindByCode("CS101")
	require.NoError(t, err)
	assert.Equal(t, 4, intro.Credits)
}

func TestDatafileServiceSeedSamplesKeepsExistingFiles(t *testing.T) {
	f := newDatafileFixture(t)
	f.writeDatafile(t, "students.csv",
		"id,reg_no,full_name,email,department,max_credits\n"+
			"s1,2026ME001,Mary Jackson,mary@campus.edu,ME,12\n")

	require.NoError(t, f.service.SeedSamples())

	data, err := os.ReadFile(filepath.Join(f.dataDir, "students.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mary Jackson")
	assert.NotContains(t, string(data), "Ada Lovelace")
}
