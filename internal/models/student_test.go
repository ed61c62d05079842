package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

func newTestStudent(t *testing.T) *Student {
	t.Helper()
	student, err := NewStudent("s1", "2026CS001", "Ada Lovelace", "ada@campus.edu")
	require.NoError(t, err)
	return student
}

func newTestCourse(t *testing.T, code string, credits int) *Course {
	t.Helper()
	course, err := NewCourse(CourseConfig{Code: code, Title: "Course " + code, Credits: credits})
	require.NoError(t, err)
	return course
}

func TestNewStudent(t *testing.T) {
	student := newTestStudent(t)
	assert.Equal(t, RoleStudent, student.Role())
	assert.Equal(t, "2026CS001", student.RegNo())
	assert.Equal(t, DefaultMaxCreditsPerSemester, student.MaxCredits())
	assert.Equal(t, 0, student.CurrentCredits())
	assert.True(t, student.IsActive())
}

func TestNewStudentValidation(t *testing.T) {
	_, err := NewStudent("", "r", "Name", "a@b.c")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewStudent("s1", "r", " ", "a@b.c")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewStudent("s1", "r", "Name", "no-at-sign")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentSetMaxCredits(t *testing.T) {
	student := newTestStudent(t)

	require.NoError(t, student.SetMaxCredits(24))
	assert.Equal(t, 24, student.MaxCredits())

	require.NoError(t, student.SetMaxCredits(1))

	assert.Error(t, student.SetMaxCredits(0))
	assert.Error(t, student.SetMaxCredits(25))
	assert.Equal(t, 1, student.MaxCredits())
}

func TestStudentCreditAccounting(t *testing.T) {
	student := newTestStudent(t)
	require.NoError(t, student.SetMaxCredits(6))

	c1 := newTestCourse(t, "CS101", 4)
	c2 := newTestCourse(t, "CS102", 3)

	assert.True(t, student.CanEnroll(c1))
	student.AddCourse(c1)
	assert.Equal(t, 4, student.CurrentCredits())

	// 4 + 3 would exceed the limit of 6.
	assert.False(t, student.CanEnroll(c2))

	// Re-adding the same course is a no-op.
	student.AddCourse(c1)
	assert.Equal(t, 4, student.CurrentCredits())

	student.RemoveCourse(c1)
	assert.Equal(t, 0, student.CurrentCredits())

	// Removing an absent course is a no-op.
	student.RemoveCourse(c2)
	assert.Equal(t, 0, student.CurrentCredits())
}

func TestStudentEnrolledCoursesSorted(t *testing.T) {
	student := newTestStudent(t)
	student.AddCourse(newTestCourse(t, "MATH201", 3))
	student.AddCourse(newTestCourse(t, "CS101", 3))

	courses := student.EnrolledCourses()
	require.Len(t, courses, 2)
	assert.Equal(t, "CS101", courses[0].Code)
	assert.Equal(t, "MATH201", courses[1].Code)
}

func TestStudentTranscriptHeader(t *testing.T) {
	student := newTestStudent(t)
	student.Department = DeptComputerScience

	header := student.TranscriptHeader()
	assert.Contains(t, header, "TRANSCRIPT FOR: Ada Lovelace (2026CS001)")
	assert.Contains(t, header, "Department: Computer Science")

	student.Department = ""
	assert.Contains(t, student.TranscriptHeader(), "Department: Undeclared")
}
