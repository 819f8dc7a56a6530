package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/middleware"
	"github.com/cleberrangel/sprint-dashboard/internal/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler manipula a exportação do relatório Excel
type ExportHandler struct {
	ds      *dataset.Dataset
	svc     *service.ExportService
	metrics *metrics.Metrics
}

// NewExportHandler cria um novo handler de exportação
func NewExportHandler(ds *dataset.Dataset, svc *service.ExportService, m *metrics.Metrics) *ExportHandler {
	if m == nil {
		m = metrics.Get()
	}
	return &ExportHandler{ds: ds, svc: svc, metrics: m}
}

// Export gera o relatório Excel da Sprint
// @Summary      Exporta relatório Excel
// @Description  Gera um arquivo com as planilhas Timeline, Performance e Efficiency
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        sprint query string false "Sprint"
// @Success      200 {file} binary "Arquivo Excel"
// @Failure      500 {object} model.ErrorResponse
// @Router       /api/v1/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()
	sprint := selectedSprint(c, h.ds)

	buf, err := h.svc.Export(ctx, sprint)
	logger.AuditExport(ctx, sprint, c.ClientIP(), time.Since(start).Milliseconds(), err)
	h.metrics.IncrementReportExported(err == nil)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := middleware.SanitizeFilename(fmt.Sprintf("sprint-%s-report.xlsx", sprint))

	logger.FromGin(c).Info().
		Str("sprint", sprint).
		Int("bytes", buf.Len()).
		Str("filename", filename).
		Msg("Relatório gerado")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, service.ContentTypeXLSX, buf.Bytes())
}
