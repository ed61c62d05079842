package models

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Instructor teaches courses. Shares identity fields with Student through
// Person; role-specific state lives here.
type Instructor struct {
	Person
	Department     Department
	OfficeLocation string
	PhoneExtension string

	mu              sync.RWMutex
	assignedCourses map[string]*Course
}

// NewInstructor builds an instructor with a validated identity.
func NewInstructor(id, employeeID, fullName, email string, department Department) (*Instructor, error) {
	person, err := newPerson(id, employeeID, fullName, email, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &Instructor{
		Person:          person,
		Department:      department,
		assignedCourses: make(map[string]*Course),
	}, nil
}

// Role identifies the person variant.
func (i *Instructor) Role() Role {
	return RoleInstructor
}

// AssignCourse records a teaching assignment. Assigning an already-assigned
// course is a no-op.
func (i *Instructor) AssignCourse(course *Course) {
	if course == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.assignedCourses == nil {
		i.assignedCourses = make(map[string]*Course)
	}
	i.assignedCourses[course.Code] = course
}

// RemoveCourse drops a teaching assignment. Removing an absent course is a
// no-op.
func (i *Instructor) RemoveCourse(course *Course) {
	if course == nil {
		return
	}
	i.mu.Lock()
	delete(i.assignedCourses, course.Code)
	i.mu.Unlock()
}

// AssignedCourses returns a copy of the assignment set, ordered by code.
func (i *Instructor) AssignedCourses() []*Course {
	i.mu.RLock()
	courses := make([]*Course, 0, len(i.assignedCourses))
	for _, c := range i.assignedCourses {
		courses = append(courses, c)
	}
	i.mu.RUnlock()
	sort.Slice(courses, func(a, b int) bool { return courses[a].Code < courses[b].Code })
	return courses
}

func (i *Instructor) String() string {
	i.mu.RLock()
	assigned := len(i.assignedCourses)
	i.mu.RUnlock()
	return fmt.Sprintf("Instructor{id=%q, name=%q, department=%q, courses=%d}",
		i.ID, i.FullName, string(i.Department), assigned)
}
