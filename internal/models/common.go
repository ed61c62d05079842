package models

// Pagination describes paged list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Department Department
	Page       int
	PageSize   int
}

// CourseFilter encapsulates allowed search parameters for listing courses.
type CourseFilter struct {
	Search     string
	Department Department
	Semester   Semester
	ActiveOnly bool
	Page       int
	PageSize   int
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID  string
	CourseCode string
	Semester   Semester
	ActiveOnly bool
	Page       int
	PageSize   int
}
