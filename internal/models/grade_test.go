package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradePoints(t *testing.T) {
	cases := []struct {
		grade  Grade
		points float64
	}{
		{GradeA, 4.0},
		{GradeAMinus, 3.7},
		{GradeBPlus, 3.3},
		{GradeB, 3.0},
		{GradeBMinus, 2.7},
		{GradeCPlus, 2.3},
		{GradeC, 2.0},
		{GradeD, 1.0},
		{GradeF, 0.0},
		{GradeW, 0.0},
		{GradeI, 0.0},
	}
	for _, tc := range cases {
		assert.True(t, tc.grade.Valid(), string(tc.grade))
		assert.Equal(t, tc.points, tc.grade.Points(), string(tc.grade))
	}
}

func TestGradeIsPassing(t *testing.T) {
	assert.True(t, GradeA.IsPassing())
	assert.True(t, GradeD.IsPassing())
	assert.False(t, GradeF.IsPassing())
	assert.False(t, GradeW.IsPassing())
	assert.False(t, GradeI.IsPassing())
	assert.False(t, Grade("X").IsPassing())
}

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade("a")
	require.NoError(t, err)
	assert.Equal(t, GradeA, g)

	g, err = ParseGrade(" b+ ")
	require.NoError(t, err)
	assert.Equal(t, GradeBPlus, g)

	_, err = ParseGrade("Z")
	assert.Error(t, err)

	_, err = ParseGrade("")
	assert.Error(t, err)
}

func TestGradeFromPercentage(t *testing.T) {
	cases := []struct {
		percentage float64
		expected   Grade
	}{
		{100, GradeA},
		{93, GradeA},
		{92.9, GradeAMinus},
		{90, GradeAMinus},
		{89.9, GradeBPlus},
		{87, GradeBPlus},
		{83, GradeB},
		{80, GradeBMinus},
		{77, GradeCPlus},
		{73, GradeC},
		{72.9, GradeD},
		{60, GradeD},
		{59.9, GradeF},
		{0, GradeF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, GradeFromPercentage(tc.percentage), "%.1f", tc.percentage)
	}
}

func TestGradeString(t *testing.T) {
	assert.Equal(t, "A (4.0 points) - Excellent", GradeA.String())
	assert.Equal(t, "X", Grade("X").String())
}
