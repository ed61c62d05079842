package models

import (
	"fmt"
	"strings"
)

// Grade is a letter grade awarded for a completed enrollment.
type Grade string

// Letter grades in descending order of grade points.
const (
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
	GradeW      Grade = "W"
	GradeI      Grade = "I"
)

type gradeInfo struct {
	points      float64
	description string
}

// gradeTable is the fixed and total grade-point mapping.
var gradeTable = map[Grade]gradeInfo{
	GradeA:      {4.0, "Excellent"},
	GradeAMinus: {3.7, "Very Good"},
	GradeBPlus:  {3.3, "Good"},
	GradeB:      {3.0, "Above Average"},
	GradeBMinus: {2.7, "Average"},
	GradeCPlus:  {2.3, "Below Average"},
	GradeC:      {2.0, "Satisfactory"},
	GradeD:      {1.0, "Poor"},
	GradeF:      {0.0, "Fail"},
	GradeW:      {0.0, "Withdrawn"},
	GradeI:      {0.0, "Incomplete"},
}

// Valid reports whether g is one of the defined letter grades.
func (g Grade) Valid() bool {
	_, ok := gradeTable[g]
	return ok
}

// Points returns the grade-point value of g. Undefined grades map to 0.
func (g Grade) Points() float64 {
	return gradeTable[g].points
}

// Description returns the human description of g.
func (g Grade) Description() string {
	return gradeTable[g].description
}

// IsPassing is true for every grade except the fail, withdrawn and
// incomplete markers.
func (g Grade) IsPassing() bool {
	return g.Valid() && g != GradeF && g != GradeW && g != GradeI
}

func (g Grade) String() string {
	if !g.Valid() {
		return string(g)
	}
	info := gradeTable[g]
	return fmt.Sprintf("%s (%.1f points) - %s", string(g), info.points, info.description)
}

// ParseGrade resolves a letter grade from its symbol, case-insensitively.
func ParseGrade(raw string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(raw)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown grade %q", raw)
	}
	return g, nil
}

// GradeFromPercentage maps a numeric score to a letter grade using fixed
// non-overlapping thresholds. Used by reporting, not by the enrollment flow.
func GradeFromPercentage(percentage float64) Grade {
	switch {
	case percentage >= 93:
		return GradeA
	case percentage >= 90:
		return GradeAMinus
	case percentage >= 87:
		return GradeBPlus
	case percentage >= 83:
		return GradeB
	case percentage >= 80:
		return GradeBMinus
	case percentage >= 77:
		return GradeCPlus
	case percentage >= 73:
		return GradeC
	case percentage >= 60:
		return GradeD
	default:
		return GradeF
	}
}
