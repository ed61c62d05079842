package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

func TestNewEnrollment(t *testing.T) {
	student := newTestStudent(t)
	course := newTestCourse(t, "CS101", 3)
	now := time.Now().UTC()

	enrollment, err := NewEnrollment("ENR0001", student, course, SemesterFall, now)
	require.NoError(t, err)

	assert.Equal(t, "ENR0001", enrollment.ID())
	assert.True(t, enrollment.IsActive())
	assert.False(t, enrollment.IsCompleted())
	assert.False(t, enrollment.HasGrade())
	assert.Equal(t, EnrollmentStatusActive, enrollment.Status())
	assert.Equal(t, 3, student.CurrentCredits())
	assert.Equal(t, 1, course.CurrentEnrollment())
}

func TestNewEnrollmentValidation(t *testing.T) {
	student := newTestStudent(t)
	course := newTestCourse(t, "CS101", 3)
	now := time.Now().UTC()

	_, err := NewEnrollment("e1", nil, course, SemesterFall, now)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewEnrollment("e1", student, nil, SemesterFall, now)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewEnrollment("e1", student, course, Semester("AUTUMN"), now)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestNewEnrollmentCreditLimitLeavesStateUntouched(t *testing.T) {
	student := newTestStudent(t)
	require.NoError(t, student.SetMaxCredits(2))
	course := newTestCourse(t, "CS101", 3)

	_, err := NewEnrollment("e1", student, course, SemesterFall, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrCreditLimitExceeded))
	assert.Equal(t, 0, student.CurrentCredits())
	assert.Equal(t, 0, course.CurrentEnrollment())
}

func TestNewEnrollmentCourseFullLeavesStateUntouched(t *testing.T) {
	student := newTestStudent(t)
	course, err := NewCourse(CourseConfig{Code: "CS101", Title: "Intro", Credits: 3, MaxCapacity: 1, CurrentEnrollment: 1})
	require.NoError(t, err)

	_, err = NewEnrollment("e1", student, course, SemesterFall, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrCourseFull))
	assert.Equal(t, 0, student.CurrentCredits())
	assert.Equal(t, 1, course.CurrentEnrollment())
}

func TestEnrollmentRecordGrade(t *testing.T) {
	student := newTestStudent(t)
	course := newTestCourse(t, "CS101", 3)
	enrollment, err := NewEnrollment("e1", student, course, SemesterFall, time.Now())
	require.NoError(t, err)

	require.NoError(t, enrollment.RecordGrade(GradeB))
	assert.True(t, enrollment.IsCompleted())
	assert.Equal(t, GradeB, enrollment.Grade())
	assert.Equal(t, EnrollmentStatusCompleted, enrollment.Status())
	assert.Equal(t, 3.0, enrollment.GradePoints())
	assert.Equal(t, 9.0, enrollment.QualityPoints())

	// Re-recording replaces the grade.
	require.NoError(t, enrollment.RecordGrade(GradeA))
	assert.Equal(t, GradeA, enrollment.Grade())

	err = enrollment.RecordGrade(Grade("X"))
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidGrade))
}

func TestEnrollmentWithdraw(t *testing.T) {
	student := newTestStudent(t)
	course := newTestCourse(t, "CS101", 3)
	enrollment, err := NewEnrollment("e1", student, course, SemesterFall, time.Now())
	require.NoError(t, err)

	enrollment.Withdraw()
	assert.False(t, enrollment.IsActive())
	assert.False(t, enrollment.IsCompleted())
	assert.Equal(t, EnrollmentStatusWithdrawn, enrollment.Status())
	assert.Equal(t, 0, student.CurrentCredits())
	assert.Equal(t, 0, course.CurrentEnrollment())
}

func TestEnrollmentWithdrawIsIdempotent(t *testing.T) {
	student := newTestStudent(t)
	course := newTestCourse(t, "CS101", 3)
	enrollment, err := NewEnrollment("e1", student, course, SemesterFall, time.Now())
	require.NoError(t, err)

	// A second student takes a seat so the counter is observable.
	other := newTestCourseMate(t)
	_, err = NewEnrollment("e2", other, course, SemesterFall, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, course.CurrentEnrollment())

	enrollment.Withdraw()
	enrollment.Withdraw()
	enrollment.Withdraw()
	assert.Equal(t, 1, course.CurrentEnrollment())
}

func TestEnrollmentWithdrawKeepsRecordedGrade(t *testing.T) {
	student := newTestStudent(t)
	course := newTestCourse(t, "CS101", 3)
	enrollment, err := NewEnrollment("e1", student, course, SemesterFall, time.Now())
	require.NoError(t, err)

	require.NoError(t, enrollment.RecordGrade(GradeC))
	require.Equal(t, 3, student.CurrentCredits())
	require.Equal(t, 1, course.CurrentEnrollment())

	enrollment.Withdraw()

	// The grade survives withdrawal but the record reads as withdrawn and
	// not completed.
	assert.True(t, enrollment.HasGrade())
	assert.Equal(t, GradeC, enrollment.Grade())
	assert.False(t, enrollment.IsCompleted())
	assert.Equal(t, EnrollmentStatusWithdrawn, enrollment.Status())

	// Withdrawal after grading still restores both counters.
	assert.Equal(t, 0, student.CurrentCredits())
	assert.Equal(t, 0, course.CurrentEnrollment())
}

func newTestCourseMate(t *testing.T) *Student {
	t.Helper()
	student, err := NewStudent("s2", "2026CS002", "Grace Hopper", "grace@campus.edu")
	require.NoError(t, err)
	return student
}
