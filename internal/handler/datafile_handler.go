package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/ccrm-api/internal/service"
	appErrors "github.com/opencampus/ccrm-api/pkg/errors"
	"github.com/opencampus/ccrm-api/pkg/response"
)

// DatafileHandler exposes CSV import, export and backup endpoints.
type DatafileHandler struct {
	datafiles *service.DatafileService
}

// NewDatafileHandler constructs DatafileHandler.
func NewDatafileHandler(datafiles *service.DatafileService) *DatafileHandler {
	return &DatafileHandler{datafiles: datafiles}
}

// Import godoc
// @Summary Import students and courses from the data directory
// @Tags Datafiles
// @Produce json
// @Param target query string false "Restrict to students or courses"
// @Success 200 {object} response.Envelope
// @Router /datafiles/import [post]
func (h *DatafileHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	switch c.Query("target") {
	case "":
		summaries, err := h.datafiles.ImportAll(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summaries, nil)
	case "students":
		summary, err := h.datafiles.ImportStudents(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summary, nil)
	case "courses":
		summary, err := h.datafiles.ImportCourses(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summary, nil)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "target must be students or courses"))
	}
}

// Export godoc
// @Summary Export registries to CSV datafiles
// @Tags Datafiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /datafiles/export [post]
func (h *DatafileHandler) Export(c *gin.Context) {
	summary, err := h.datafiles.ExportAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Backup godoc
// @Summary Snapshot datafiles into a timestamped backup folder
// @Tags Datafiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /datafiles/backup [post]
func (h *DatafileHandler) Backup(c *gin.Context) {
	summary, err := h.datafiles.Backup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// BackupSize godoc
// @Summary Report recursive backup directory size
// @Tags Datafiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /datafiles/backup/size [get]
func (h *DatafileHandler) BackupSize(c *gin.Context) {
	size, err := h.datafiles.BackupSize()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"size_bytes": size}, nil)
}
