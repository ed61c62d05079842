package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

func TestNewCourseDefaults(t *testing.T) {
	course, err := NewCourse(CourseConfig{Code: "CS101", Title: "Intro to Programming", Credits: 3})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCapacity, course.MaxCapacity())
	assert.Equal(t, 0, course.CurrentEnrollment())
	assert.True(t, course.IsActive())
	assert.True(t, course.HasSeat())
	assert.Nil(t, course.Instructor())
}

func TestNewCourseValidation(t *testing.T) {
	_, err := NewCourse(CourseConfig{Code: "", Title: "x", Credits: 3})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewCourse(CourseConfig{Code: "CS101", Title: " ", Credits: 3})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewCourse(CourseConfig{Code: "CS101", Title: "x", Credits: 0})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredits))

	_, err = NewCourse(CourseConfig{Code: "CS101", Title: "x", Credits: 7})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredits))

	_, err = NewCourse(CourseConfig{Code: "CS101", Title: "x", Credits: 3, MaxCapacity: -1})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCapacity))

	_, err = NewCourse(CourseConfig{Code: "CS101", Title: "x", Credits: 3, MaxCapacity: 5, CurrentEnrollment: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrInconsistentState))
}

func TestCourseSeatBookkeeping(t *testing.T) {
	course, err := NewCourse(CourseConfig{Code: "CS101", Title: "Intro", Credits: 3, MaxCapacity: 2})
	require.NoError(t, err)

	require.NoError(t, course.TakeSeat())
	require.NoError(t, course.TakeSeat())
	assert.False(t, course.HasSeat())

	err = course.TakeSeat()
	assert.True(t, appErrors.Is(err, appErrors.ErrCourseFull))
	assert.Equal(t, 2, course.CurrentEnrollment())

	course.ReleaseSeat()
	assert.Equal(t, 1, course.CurrentEnrollment())
	assert.True(t, course.HasSeat())
}

func TestCourseReleaseSeatFloorsAtZero(t *testing.T) {
	course, err := NewCourse(CourseConfig{Code: "CS101", Title: "Intro", Credits: 3})
	require.NoError(t, err)

	course.ReleaseSeat()
	course.ReleaseSeat()
	assert.Equal(t, 0, course.CurrentEnrollment())
}
