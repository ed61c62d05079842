package models

import (
	"fmt"
	"strings"
)

// Semester identifies the academic period an enrollment belongs to.
type Semester string

const (
	SemesterSpring Semester = "SPRING"
	SemesterSummer Semester = "SUMMER"
	SemesterFall   Semester = "FALL"
	SemesterWinter Semester = "WINTER"
)

var semesterNames = map[Semester]string{
	SemesterSpring: "Spring Semester",
	SemesterSummer: "Summer Semester",
	SemesterFall:   "Fall Semester",
	SemesterWinter: "Winter Session",
}

// Valid reports whether s is a known semester.
func (s Semester) Valid() bool {
	_, ok := semesterNames[s]
	return ok
}

// DisplayName returns the human-readable semester name.
func (s Semester) DisplayName() string {
	return semesterNames[s]
}

// ParseSemester matches either the symbolic name or the display name,
// case-insensitively.
func ParseSemester(raw string) (Semester, error) {
	needle := strings.TrimSpace(raw)
	for sem, display := range semesterNames {
		if strings.EqualFold(needle, string(sem)) || strings.EqualFold(needle, display) {
			return sem, nil
		}
	}
	return "", fmt.Errorf("unknown semester %q", raw)
}
