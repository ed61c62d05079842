package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/opencampus/ccrm-api/internal/models"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
	"github.com/opencampus/ccrm-api/pkg/export"
)

const (
	studentsDatafile    = "students.csv"
	coursesDatafile     = "courses.csv"
	enrollmentsDatafile = "enrollments.csv"
)

type studentDatastore interface {
	Add(student *models.Student) error
	All() []*models.Student
}

type courseDatastore interface {
	Add(course *models.Course) error
	All() []*models.Course
}

type enrollmentLister interface {
	All() []*models.Enrollment
}

// ImportSummary reports the outcome of a datafile import.
type ImportSummary struct {
	File     string   `json:"file"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ExportSummary reports the files written by an export run.
type ExportSummary struct {
	Files []string `json:"files"`
}

// BackupSummary describes a completed backup.
type BackupSummary struct {
	Dir       string    `json:"dir"`
	Files     int       `json:"files"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// DatafileService imports and exports CSV datafiles and snapshots them
// into timestamped backups.
type DatafileService struct {
	students    studentDatastore
	courses     courseDatastore
	enrollments enrollmentLister
	csv         *export.CSVExporter
	dataDir     string
	backupDir   string
	clock       func() time.Time
	logger      *zap.Logger
}

// NewDatafileService constructs a datafile service rooted at the given directories.
func NewDatafileService(students studentDatastore, courses courseDatastore, enrollments enrollmentLister, dataDir, backupDir string, logger *zap.Logger) *DatafileService {
	if dataDir == "" {
		dataDir = "./data"
	}
	if backupDir == "" {
		backupDir = "./backups"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatafileService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		dataDir:     dataDir,
		backupDir:   backupDir,
		clock:       time.Now,
		logger:      logger,
	}
}

// WithClock overrides the time source.
func (s *DatafileService) WithClock(clock func() time.Time) *DatafileService {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// ImportStudents loads students.csv from the data directory. Malformed rows
// are skipped individually so one bad record does not abort the run.
func (s *DatafileService) ImportStudents(ctx context.Context) (*ImportSummary, error) {
	summary := &ImportSummary{File: studentsDatafile}
	err := s.readRows(studentsDatafile, func(line int, row map[string]string) {
		student, err := models.NewStudent(row["id"], row["reg_no"], row["full_name"], row["email"])
		if err != nil {
			s.skipRow(summary, line, err)
			return
		}
		if raw := row["department"]; raw != "" {
			dept, err := models.ParseDepartment(raw)
			if err != nil {
				s.skipRow(summary, line, err)
				return
			}
			student.Department = dept
		}
		if raw := row["max_credits"]; raw != "" {
			max, err := strconv.Atoi(raw)
			if err != nil {
				s.skipRow(summary, line, fmt.Errorf("max_credits: %w", err))
				return
			}
			if err := student.SetMaxCredits(max); err != nil {
				s.skipRow(summary, line, err)
				return
			}
		}
		if err := s.students.Add(student); err != nil {
			s.skipRow(summary, line, err)
			return
		}
		summary.Imported++
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("students imported",
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// ImportCourses loads courses.csv from the data directory.
func (s *DatafileService) ImportCourses(ctx context.Context) (*ImportSummary, error) {
	summary := &ImportSummary{File: coursesDatafile}
	err := s.readRows(coursesDatafile, func(line int, row map[string]string) {
		credits, err := strconv.Atoi(row["credits"])
		if err != nil {
			s.skipRow(summary, line, fmt.Errorf("credits: %w", err))
			return
		}
		cfg := models.CourseConfig{
			Code:    row["code"],
			Title:   row["title"],
			Credits: credits,
		}
		if raw := row["department"]; raw != "" {
			dept, err := models.ParseDepartment(raw)
			if err != nil {
				s.skipRow(summary, line, err)
				return
			}
			cfg.Department = dept
		}
		if raw := row["semester"]; raw != "" {
			sem, err := models.ParseSemester(raw)
			if err != nil {
				s.skipRow(summary, line, err)
				return
			}
			cfg.Semester = sem
		}
		if raw := row["max_capacity"]; raw != "" {
			capacity, err := strconv.Atoi(raw)
			if err != nil {
				s.skipRow(summary, line, fmt.Errorf("max_capacity: %w", err))
				return
			}
			cfg.MaxCapacity = capacity
		}
		course, err := models.NewCourse(cfg)
		if err != nil {
			s.skipRow(summary, line, err)
			return
		}
		if err := s.courses.Add(course); err != nil {
			s.skipRow(summary, line, err)
			return
		}
		summary.Imported++
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("courses imported",
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// ImportAll imports courses first so student rosters can reference them later.
func (s *DatafileService) ImportAll(ctx context.Context) ([]*ImportSummary, error) {
	courses, err := s.ImportCourses(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.ImportStudents(ctx)
	if err != nil {
		return nil, err
	}
	return []*ImportSummary{courses, students}, nil
}

// SeedSamples writes starter students.csv and courses.csv into the data
// directory so a fresh deployment has something to import. Existing files
// are left untouched.
func (s *DatafileService) SeedSamples() error {
	samples := map[string]export.Dataset{
		studentsDatafile: {
			Headers: []string{"id", "reg_no", "full_name", "email", "department", "max_credits"},
			Rows: []map[string]string{
				{"id": "stu-0001", "reg_no": "2026CS001", "full_name": "Ada Lovelace", "email": "ada@campus.edu", "department": "CS", "max_credits": "18"},
				{"id": "stu-0002", "reg_no": "2026EE001", "full_name": "Grace Hopper", "email": "grace@campus.edu", "department": "EE", "max_credits": "18"},
			},
		},
		coursesDatafile: {
			Headers: []string{"code", "title", "credits", "department", "semester", "max_capacity"},
			Rows: []map[string]string{
				{"code": "CS101", "title": "Introduction to Programming", "credits": "4", "department": "CS", "semester": "FALL", "max_capacity": "60"},
				{"code": "MATH201", "title": "Linear Algebra", "credits": "3", "department": "MATH", "semester": "FALL", "max_capacity": "40"},
			},
		},
	}
	for name, dataset := range samples {
		if _, err := os.Stat(filepath.Join(s.dataDir, name)); err == nil {
			continue
		}
		if _, err := s.writeDatafile(name, dataset); err != nil {
			return err
		}
		s.logger.Info("sample datafile seeded", zap.String("file", name))
	}
	return nil
}

// ExportStudents writes the current student registry to students.csv.
func (s *DatafileService) ExportStudents(ctx context.Context) (string, error) {
	dataset := export.Dataset{
		Headers: []string{"id", "reg_no", "full_name", "email", "department", "max_credits", "active"},
	}
	for _, st := range s.students.All() {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":          st.ID,
			"reg_no":      st.RegNo(),
			"full_name":   st.FullName,
			"email":       st.Email,
			"department":  string(st.Department),
			"max_credits": strconv.Itoa(st.MaxCredits()),
			"active":      strconv.FormatBool(st.IsActive()),
		})
	}
	return s.writeDatafile(studentsDatafile, dataset)
}

// ExportCourses writes the course catalog to courses.csv including live
// seat counts.
func (s *DatafileService) ExportCourses(ctx context.Context) (string, error) {
	dataset := export.Dataset{
		Headers: []string{"code", "title", "credits", "department", "semester", "max_capacity", "current_enrollment", "active"},
	}
	for _, c := range s.courses.All() {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"code":               c.Code,
			"title":              c.Title,
			"credits":            strconv.Itoa(c.Credits),
			"department":         string(c.Department),
			"semester":           string(c.Semester),
			"max_capacity":       strconv.Itoa(c.MaxCapacity()),
			"current_enrollment": strconv.Itoa(c.CurrentEnrollment()),
			"active":             strconv.FormatBool(c.IsActive()),
		})
	}
	return s.writeDatafile(coursesDatafile, dataset)
}

// ExportEnrollments writes all enrollment records to enrollments.csv.
func (s *DatafileService) ExportEnrollments(ctx context.Context) (string, error) {
	dataset := export.Dataset{
		Headers: []string{"id", "student_id", "course_code", "semester", "status", "grade", "enrolled_at"},
	}
	for _, e := range s.enrollments.All() {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":          e.ID(),
			"student_id":  e.Student().ID,
			"course_code": e.Course().Code,
			"semester":    string(e.Semester()),
			"status":      string(e.Status()),
			"grade":       string(e.Grade()),
			"enrolled_at": e.EnrolledAt().UTC().Format(time.RFC3339),
		})
	}
	return s.writeDatafile(enrollmentsDatafile, dataset)
}

// ExportAll writes every datafile and returns the files produced.
func (s *DatafileService) ExportAll(ctx context.Context) (*ExportSummary, error) {
	summary := &ExportSummary{}
	for _, fn := range []func(context.Context) (string, error){
		s.ExportStudents, s.ExportCourses, s.ExportEnrollments,
	} {
		name, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, name)
	}
	return summary, nil
}

// Backup exports all datafiles and copies the data directory into a
// timestamped folder under the backup directory.
func (s *DatafileService) Backup(ctx context.Context) (*BackupSummary, error) {
	if _, err := s.ExportAll(ctx); err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	target := filepath.Join(s.backupDir, "backup_"+now.Format("20060102_150405"))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create backup directory")
	}
	files := 0
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read data directory")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(s.dataDir, entry.Name())
		dst := filepath.Join(target, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "copy datafile")
		}
		files++
	}
	size, err := dirSize(target)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "measure backup size")
	}
	s.logger.Info("backup created",
		zap.String("dir", target),
		zap.Int("files", files),
		zap.Int64("size_bytes", size))
	return &BackupSummary{Dir: target, Files: files, SizeBytes: size, CreatedAt: now}, nil
}

// BackupSize returns the recursive size of the backup directory in bytes.
func (s *DatafileService) BackupSize() (int64, error) {
	if _, err := os.Stat(s.backupDir); os.IsNotExist(err) {
		return 0, nil
	}
	return dirSize(s.backupDir)
}

func (s *DatafileService) writeDatafile(name string, dataset export.Dataset) (string, error) {
	data, err := s.csv.Render(dataset)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render datafile")
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create data directory")
	}
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "write datafile")
	}
	return name, nil
}

// readRows streams a headered CSV file, invoking fn per data row keyed by
// header name. Rows with a column-count mismatch are passed through with the
// columns that exist.
func (s *DatafileService) readRows(name string, fn func(line int, row map[string]string)) error {
	path := filepath.Join(s.dataDir, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return appErrors.Newf("DATAFILE_NOT_FOUND", 404, "datafile %s not found", name)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open datafile")
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return appErrors.Newf("DATAFILE_INVALID", 422, "datafile %s has no header row", name)
	}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			s.logger.Warn("skipping unreadable row", zap.String("file", name), zap.Int("line", line), zap.Error(err))
			continue
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		fn(line, row)
	}
}

func (s *DatafileService) skipRow(summary *ImportSummary, line int, err error) {
	summary.Skipped++
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("line %d: %v", line, err))
	s.logger.Warn("skipping malformed row",
		zap.String("file", summary.File),
		zap.Int("line", line),
		zap.Error(err))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	return out.Close()
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
