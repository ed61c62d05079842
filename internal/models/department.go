package models

import (
	"fmt"
	"strings"
)

// Department identifies an academic department by its short code.
type Department string

const (
	DeptComputerScience        Department = "CS"
	DeptElectricalEngineering  Department = "EE"
	DeptMechanicalEngineering  Department = "ME"
	DeptBusinessAdministration Department = "BA"
	DeptMathematics            Department = "MATH"
	DeptPhysics                Department = "PHY"
)

var departmentNames = map[Department]string{
	DeptComputerScience:        "Computer Science",
	DeptElectricalEngineering:  "Electrical Engineering",
	DeptMechanicalEngineering:  "Mechanical Engineering",
	DeptBusinessAdministration: "Business Administration",
	DeptMathematics:            "Mathematics",
	DeptPhysics:                "Physics",
}

// Valid reports whether d is a known department code.
func (d Department) Valid() bool {
	_, ok := departmentNames[d]
	return ok
}

// FullName returns the department's full name.
func (d Department) FullName() string {
	return departmentNames[d]
}

func (d Department) String() string {
	if name, ok := departmentNames[d]; ok {
		return fmt.Sprintf("%s - %s", string(d), name)
	}
	return string(d)
}

// ParseDepartment matches a department by code or full name,
// case-insensitively.
func ParseDepartment(raw string) (Department, error) {
	needle := strings.TrimSpace(raw)
	for code, name := range departmentNames {
		if strings.EqualFold(needle, string(code)) || strings.EqualFold(needle, name) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown department %q", raw)
}
