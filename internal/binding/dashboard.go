package binding

import (
	"context"

	"github.com/cleberrangel/sprint-dashboard/internal/cache"
	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/figure"
	"github.com/cleberrangel/sprint-dashboard/internal/layout"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/transform"
)

// NewDashboard registra os três bindings do dashboard sobre o dataset
func NewDashboard(ds *dataset.Dataset, c *cache.Cache, m *metrics.Metrics, opts transform.EfficiencyOptions) *Binder {
	b := New(c, m)
	// Só Sprints do dataset entram no cache; qualquer outro valor enviado
	// pelo cliente gera figura vazia sem crescer o cache.
	b.CacheOnly(ds.HasSprint)

	// Os ids são fixos e distintos; Bind não falha aqui.
	_ = b.Bind(layout.SelectorID, layout.TimelineID, func(_ context.Context, sprint string) (figure.Figure, error) {
		return figure.Timeline(transform.Timeline(ds, sprint)), nil
	})
	_ = b.Bind(layout.SelectorID, layout.PerformanceID, func(_ context.Context, sprint string) (figure.Figure, error) {
		return figure.Performance(transform.Performance(ds, sprint)), nil
	})
	_ = b.Bind(layout.SelectorID, layout.EfficiencyID, func(_ context.Context, sprint string) (figure.Figure, error) {
		return figure.Efficiency(transform.Efficiency(ds, sprint, opts)), nil
	})

	return b
}
