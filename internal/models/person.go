package models

import (
	"strings"
	"time"

	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

// Role discriminates the kinds of people tracked by the registry.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
)

// Person holds the identity and contact fields shared by students and
// instructors. Role-specific state and behaviour live on the embedding
// entity.
type Person struct {
	ID                 string
	RegistrationNumber string
	FullName           string
	Email              string
	DateOfBirth        *time.Time
	CreatedAt          time.Time

	active bool
}

func newPerson(id, registrationNumber, fullName, email string, now time.Time) (Person, error) {
	if strings.TrimSpace(id) == "" {
		return Person{}, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return Person{}, appErrors.Clone(appErrors.ErrValidation, "full name is required")
	}
	if !strings.Contains(email, "@") {
		return Person{}, appErrors.Newf(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email format: %s", email)
	}
	return Person{
		ID:                 id,
		RegistrationNumber: registrationNumber,
		FullName:           fullName,
		Email:              email,
		CreatedAt:          now,
		active:             true,
	}, nil
}

// IsActive reports whether the person record is active.
func (p *Person) IsActive() bool {
	return p.active
}

// Deactivate marks the person record inactive.
func (p *Person) Deactivate() {
	p.active = false
}

// Activate marks the person record active.
func (p *Person) Activate() {
	p.active = true
}
