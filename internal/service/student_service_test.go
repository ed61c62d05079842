package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/models"
	"github.com/opencampus/ccrm-api/internal/repository"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
)

func newStudentService(t *testing.T) (*StudentService, *repository.StudentRepository) {
	t.Helper()
	repo := repository.NewStudentRepository()
	return NewStudentService(repo, validator.New(), zap.NewNop()), repo
}

func TestStudentServiceCreate(t *testing.T) {
	svc, _ := newStudentService(t)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		RegNo:      "2026CS001",
		FullName:   "Ada Lovelace",
		Email:      "ada@campus.edu",
		Department: "cs",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "2026CS001", student.RegNo())
	assert.Equal(t, models.DeptComputerScience, student.Department)
	assert.Equal(t, 18, student.MaxCredits())

	found, err := svc.FindByRegNo(context.Background(), "2026CS001")
	require.NoError(t, err)
	assert.Equal(t, student.ID, found.ID)
}

func TestStudentServiceCreateKeepsProvidedID(t *testing.T) {
	svc, _ := newStudentService(t)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		ID:       "s1",
		RegNo:    "2026CS001",
		FullName: "Ada Lovelace",
		Email:    "ada@campus.edu",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc, _ := newStudentService(t)

	cases := []struct {
		name string
		req  CreateStudentRequest
	}{
		{"missing reg no", CreateStudentRequest{FullName: "Ada", Email: "ada@campus.edu"}},
		{"missing name", CreateStudentRequest{RegNo: "2026CS001", Email: "ada@campus.edu"}},
		{"bad email", CreateStudentRequest{RegNo: "2026CS001", FullName: "Ada", Email: "nope"}},
		{"bad department", CreateStudentRequest{RegNo: "2026CS001", FullName: "Ada", Email: "ada@campus.edu", Department: "Astrology"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestStudentServiceCreateDuplicateRegNo(t *testing.T) {
	svc, _ := newStudentService(t)

	req := CreateStudentRequest{RegNo: "2026CS001", FullName: "Ada Lovelace", Email: "ada@campus.edu"}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceSetMaxCredits(t *testing.T) {
	svc, _ := newStudentService(t)
	student, err := svc.Create(context.Background(), CreateStudentRequest{
		ID: "s1", RegNo: "2026CS001", FullName: "Ada Lovelace", Email: "ada@campus.edu",
	})
	require.NoError(t, err)

	updated, err := svc.SetMaxCredits(context.Background(), "s1", SetMaxCreditsRequest{MaxCredits: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.MaxCredits())
	assert.Equal(t, 12, student.MaxCredits())

	_, err = svc.SetMaxCredits(context.Background(), "s1", SetMaxCreditsRequest{MaxCredits: 30})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.SetMaxCredits(context.Background(), "ghost", SetMaxCreditsRequest{MaxCredits: 12})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceList(t *testing.T) {
	svc, _ := newStudentService(t)
	seed := []CreateStudentRequest{
		{ID: "s1", RegNo: "2026CS001", FullName: "Ada Lovelace", Email: "ada@campus.edu", Department: "CS"},
		{ID: "s2", RegNo: "2026EE001", FullName: "Grace Hopper", Email: "grace@campus.edu", Department: "EE"},
		{ID: "s3", RegNo: "2026CS002", FullName: "Alan Turing", Email: "alan@campus.edu", Department: "CS"},
	}
	for _, req := range seed {
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Department: models.DeptComputerScience})
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Equal(t, 2, pagination.TotalCount)

	students, _, err = svc.List(context.Background(), models.StudentFilter{Search: "grace"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s2", students[0].ID)

	students, pagination, err = svc.List(context.Background(), models.StudentFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 2, pagination.Page)
}
