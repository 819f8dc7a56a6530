package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"

	"github.com/cleberrangel/sprint-dashboard/internal/binding"
	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/figure"
	"github.com/cleberrangel/sprint-dashboard/internal/layout"
	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/middleware"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/gin-gonic/gin"
)

//go:embed templates/index.html.tmpl
var templates embed.FS

const pageTitle = "Sprint Dashboard"

// ErrLayoutMismatch indica gráficos do layout sem binding, ou o inverso
var ErrLayoutMismatch = errors.New("gráficos do layout não correspondem aos bindings")

// DashboardHandler serve a página, o layout e os gráficos
type DashboardHandler struct {
	ds      *dataset.Dataset
	root    *layout.Component
	binder  *binding.Binder
	metrics *metrics.Metrics
	page    *template.Template
}

// NewDashboardHandler cria um novo handler do dashboard
func NewDashboardHandler(ds *dataset.Dataset, root *layout.Component, binder *binding.Binder, m *metrics.Metrics) (*DashboardHandler, error) {
	if graphs, outputs := root.Graphs(), binder.Outputs(); !slices.Equal(graphs, outputs) {
		return nil, fmt.Errorf("%w: layout %v, bindings %v", ErrLayoutMismatch, graphs, outputs)
	}
	page, err := template.ParseFS(templates, "templates/index.html.tmpl")
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.Get()
	}
	return &DashboardHandler{
		ds:      ds,
		root:    root,
		binder:  binder,
		metrics: m,
		page:    page,
	}, nil
}

// Index renderiza a página do dashboard
// @Summary      Página do dashboard
// @Tags         dashboard
// @Produce      html
// @Success      200 {string} string "HTML"
// @Router       / [get]
func (h *DashboardHandler) Index(c *gin.Context) {
	var buf bytes.Buffer
	err := h.page.Execute(&buf, struct {
		Title  string
		Layout *layout.Component
	}{Title: pageTitle, Layout: h.root})
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Layout retorna a árvore de componentes
// @Summary      Layout do dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} model.Response
// @Router       /api/v1/layout [get]
func (h *DashboardHandler) Layout(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    h.root,
		Meta:    h.meta(""),
	})
}

// Callback recalcula todos os gráficos ligados a um componente de entrada
// @Summary      Dispara os bindings de um componente
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        request body model.CallbackRequest true "Componente e valor"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/callbacks [post]
func (h *DashboardHandler) Callback(c *gin.Context) {
	var req model.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	input := middleware.SanitizeSelection(req.Input)
	value := middleware.SanitizeSelection(req.Value)

	updates, err := h.binder.Dispatch(c.Request.Context(), input, value)
	if err != nil {
		handleError(c, err)
		return
	}

	logger.FromGin(c).Info().
		Str("input", input).
		Str("value", value).
		Int("updates", len(updates)).
		Msg("Seleção processada")

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    updates,
		Meta:    h.meta(value),
	})
}

// Figure retorna a figura de um gráfico. Sem ?sprint= usa o Sprint padrão.
// @Summary      Figura de um gráfico
// @Tags         dashboard
// @Produce      json
// @Param        output path string true "ID do gráfico"
// @Param        sprint query string false "Sprint"
// @Success      200 {object} figure.Figure
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/figures/{output} [get]
func (h *DashboardHandler) Figure(c *gin.Context) {
	fig, _, err := h.compute(c)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, fig)
}

// FigurePNG retorna uma imagem PNG do gráfico; 204 quando não há dados
// @Summary      Imagem PNG de um gráfico
// @Tags         dashboard
// @Produce      png
// @Param        output path string true "ID do gráfico"
// @Param        sprint query string false "Sprint"
// @Success      200 {file} binary "PNG"
// @Success      204 "Gráfico sem dados"
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/figures/{output}/png [get]
func (h *DashboardHandler) FigurePNG(c *gin.Context) {
	fig, sprint, err := h.compute(c)
	if err != nil {
		handleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := figure.RenderPNG(fig, &buf); err != nil {
		if errors.Is(err, model.ErrEmptyChart) {
			c.Status(http.StatusNoContent)
			return
		}
		handleError(c, err)
		return
	}

	h.metrics.IncrementPNGRendered()
	logger.FromGin(c).Debug().
		Str("output", c.Param("output")).
		Str("sprint", sprint).
		Int("bytes", buf.Len()).
		Msg("PNG gerado")

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *DashboardHandler) compute(c *gin.Context) (figure.Figure, string, error) {
	output := middleware.SanitizeSelection(c.Param("output"))
	sprint := selectedSprint(c, h.ds)

	fig, err := h.binder.Compute(c.Request.Context(), output, sprint)
	return fig, sprint, err
}

func (h *DashboardHandler) meta(sprint string) *model.Meta {
	return &model.Meta{
		TotalRecords: h.ds.Len(),
		TotalSprints: len(h.ds.Sprints()),
		Sprint:       sprint,
	}
}

// selectedSprint lê ?sprint=; ausente usa o Sprint padrão do dataset
func selectedSprint(c *gin.Context, ds *dataset.Dataset) string {
	sprint, ok := c.GetQuery("sprint")
	if !ok {
		return ds.DefaultSprint()
	}
	return middleware.SanitizeSelection(sprint)
}
