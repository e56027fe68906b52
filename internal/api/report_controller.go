package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/report"
)

// ReportController serves generated CBOM and VDR documents for download
type ReportController struct {
	service *report.Service
	logger  *logrus.Logger
}

// NewReportController creates a new report controller
func NewReportController(service *report.Service, logger *logrus.Logger) *ReportController {
	return &ReportController{
		service: service,
		logger:  logger,
	}
}

// DownloadCBOM handles GET /cbom-reports/:scanId and
// GET /cbom-reports/:scanId/:format.
func (ctrl *ReportController) DownloadCBOM(c *gin.Context) {
	ctrl.download(c, report.KindCBOM, c.Param("scanId"))
}

// DownloadVDR handles GET /vdr-reports/:id and GET /vdr-reports/:id/:format
func (ctrl *ReportController) DownloadVDR(c *gin.Context) {
	ctrl.download(c, report.KindVDR, c.Param("id"))
}

func (ctrl *ReportController) download(c *gin.Context, kind report.Kind, key string) {
	format := report.Format(c.Param("format"))
	if format == "" {
		format = report.FormatJSON
	}

	doc, err := ctrl.service.GetReport(c.Request.Context(), kind, key, format)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
