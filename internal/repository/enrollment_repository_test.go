package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

type enrollmentSeed struct {
	repo    *EnrollmentRepository
	student *models.Student
	other   *models.Student
	course  *models.Course
	second  *models.Course
}

func newEnrollmentSeed(t *testing.T) *enrollmentSeed {
	t.Helper()
	student, err := models.NewStudent("s1", "2026CS001", "Ada Lovelace", "ada@campus.edu")
	require.NoError(t, err)
	other, err := models.NewStudent("s2", "2026CS002", "Grace Hopper", "grace@campus.edu")
	require.NoError(t, err)
	course, err := models.NewCourse(models.CourseConfig{Code: "CS101", Title: "Intro", Credits: 3})
	require.NoError(t, err)
	second, err := models.NewCourse(models.CourseConfig{Code: "CS102", Title: "Data Structures", Credits: 3})
	require.NoError(t, err)
	return &enrollmentSeed{
		repo:    NewEnrollmentRepository(),
		student: student,
		other:   other,
		course:  course,
		second:  second,
	}
}

func (s *enrollmentSeed) enroll(t *testing.T, id string, student *models.Student, course *models.Course, semester models.Semester) *models.Enrollment {
	t.Helper()
	enrollment, err := models.NewEnrollment(id, student, course, semester,
		time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, s.repo.Append(enrollment))
	return enrollment
}

func TestEnrollmentRepositoryAppendAndFind(t *testing.T) {
	s := newEnrollmentSeed(t)
	enrollment := s.enroll(t, "ENR0001", s.student, s.course, models.SemesterFall)

	found, err := s.repo.FindByID("ENR0001")
	require.NoError(t, err)
	assert.Equal(t, enrollment, found)

	require.Error(t, s.repo.Append(nil))
	err = s.repo.Append(enrollment)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestEnrollmentRepositoryFindMissing(t *testing.T) {
	s := newEnrollmentSeed(t)

	_, err := s.repo.FindByID("ENR9999")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEnrollmentNotFound))
}

func TestEnrollmentRepositoryExistsActiveIgnoresWithdrawn(t *testing.T) {
	s := newEnrollmentSeed(t)
	enrollment := s.enroll(t, "ENR0001", s.student, s.course, models.SemesterFall)

	assert.True(t, s.repo.ExistsActive("s1", "CS101"))
	assert.False(t, s.repo.ExistsActive("s1", "CS102"))
	assert.False(t, s.repo.ExistsActive("s2", "CS101"))

	enrollment.Withdraw()
	assert.False(t, s.repo.ExistsActive("s1", "CS101"))
}

func TestEnrollmentRepositoryListByStudentAndCourse(t *testing.T) {
	s := newEnrollmentSeed(t)
	s.enroll(t, "ENR0001", s.student, s.course, models.SemesterFall)
	s.enroll(t, "ENR0002", s.student, s.second, models.SemesterFall)
	s.enroll(t, "ENR0003", s.other, s.course, models.SemesterFall)

	byStudent := s.repo.ListByStudent("s1")
	require.Len(t, byStudent, 2)
	assert.Equal(t, "ENR0001", byStudent[0].ID())
	assert.Equal(t, "ENR0002", byStudent[1].ID())

	byCourse := s.repo.ListByCourse("CS101")
	require.Len(t, byCourse, 2)
	assert.Equal(t, "ENR0001", byCourse[0].ID())
	assert.Equal(t, "ENR0003", byCourse[1].ID())
}

func TestEnrollmentRepositoryListFilters(t *testing.T) {
	s := newEnrollmentSeed(t)
	first := s.enroll(t, "ENR0001", s.student, s.course, models.SemesterFall)
	s.enroll(t, "ENR0002", s.student, s.second, models.SemesterSpring)
	s.enroll(t, "ENR0003", s.other, s.course, models.SemesterFall)
	first.Withdraw()

	matched, total := s.repo.List(models.EnrollmentFilter{StudentID: "s1"})
	assert.Len(t, matched, 2)
	assert.Equal(t, 2, total)

	matched, _ = s.repo.List(models.EnrollmentFilter{CourseCode: "CS101"})
	assert.Len(t, matched, 2)

	matched, _ = s.repo.List(models.EnrollmentFilter{Semester: models.SemesterSpring})
	require.Len(t, matched, 1)
	assert.Equal(t, "ENR0002", matched[0].ID())

	matched, total = s.repo.List(models.EnrollmentFilter{ActiveOnly: true})
	assert.Len(t, matched, 2)
	assert.Equal(t, 2, total)

	matched, _ = s.repo.List(models.EnrollmentFilter{StudentID: "s1", ActiveOnly: true})
	require.Len(t, matched, 1)
	assert.Equal(t, "ENR0002", matched[0].ID())
}

func TestEnrollmentRepositoryListPagination(t *testing.T) {
	s := newEnrollmentSeed(t)
	s.enroll(t, "ENR0001", s.student, s.course, models.SemesterFall)
	s.enroll(t, "ENR0002", s.student, s.second, models.SemesterFall)
	s.enroll(t, "ENR0003", s.other, s.course, models.SemesterFall)

	matched, total := s.repo.List(models.EnrollmentFilter{Page: 2, PageSize: 2})
	assert.Len(t, matched, 1)
	assert.Equal(t, 3, total)
	assert.Equal(t, "ENR0003", matched[0].ID())
}

func TestEnrollmentRepositoryAllPreservesOrder(t *testing.T) {
	s := newEnrollmentSeed(t)
	s.enroll(t, "ENR0001", s.student, s.course, models.SemesterFall)
	s.enroll(t, "ENR0002", s.other, s.second, models.SemesterFall)

	all := s.repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, "ENR0001", all[0].ID())
	assert.Equal(t, "ENR0002", all[1].ID())
}
