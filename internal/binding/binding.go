// Package binding liga o seletor de Sprint aos gráficos: cada gráfico tem
// uma ligação própria que recalcula sua figura quando o valor muda.
package binding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/cache"
	"github.com/cleberrangel/sprint-dashboard/internal/figure"
	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateOutput indica dois bindings para o mesmo gráfico
var ErrDuplicateOutput = errors.New("gráfico já possui binding")

// ComputeFunc recalcula a figura de um gráfico para o valor do seletor
type ComputeFunc func(ctx context.Context, value string) (figure.Figure, error)

// Binding liga um componente de entrada a um gráfico
type Binding struct {
	Input   string
	Output  string
	Compute ComputeFunc
}

// Update é o resultado de um binding para um valor do seletor
type Update struct {
	Output string        `json:"output"`
	Value  string        `json:"value"`
	Figure figure.Figure `json:"figure"`
	Error  string        `json:"error,omitempty"`
}

// Binder mantém os bindings registrados. Bind só deve ser chamado na
// inicialização; depois disso o Binder é apenas lido.
type Binder struct {
	bindings  []Binding
	cache     *cache.Cache
	cacheable func(value string) bool
	metrics   *metrics.Metrics
}

// New cria um Binder. cache pode ser nil para desativar a memorização.
func New(c *cache.Cache, m *metrics.Metrics) *Binder {
	if m == nil {
		m = metrics.Get()
	}
	return &Binder{cache: c, metrics: m}
}

// CacheOnly restringe a memorização aos valores aceitos por fn. Valores
// recusados são recalculados a cada chamada e não ocupam o cache.
func (b *Binder) CacheOnly(fn func(value string) bool) {
	b.cacheable = fn
}

// Bind registra um binding
func (b *Binder) Bind(input, output string, fn ComputeFunc) error {
	for _, existing := range b.bindings {
		if existing.Output == output {
			return fmt.Errorf("%w: %s", ErrDuplicateOutput, output)
		}
	}
	b.bindings = append(b.bindings, Binding{Input: input, Output: output, Compute: fn})
	return nil
}

// Outputs retorna os gráficos registrados na ordem de registro
func (b *Binder) Outputs() []string {
	out := make([]string, len(b.bindings))
	for i, bd := range b.bindings {
		out[i] = bd.Output
	}
	return out
}

// Dispatch executa, de forma independente, todos os bindings ligados à
// entrada. A falha de um binding é reportada no seu Update e não afeta os
// demais. A ordem do resultado é a ordem de registro.
func (b *Binder) Dispatch(ctx context.Context, input, value string) ([]Update, error) {
	var targets []Binding
	for _, bd := range b.bindings {
		if bd.Input == input {
			targets = append(targets, bd)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownInput, input)
	}

	b.metrics.IncrementSelectionChange()

	updates := make([]Update, len(targets))
	var g errgroup.Group
	for i, bd := range targets {
		i, bd := i, bd
		g.Go(func() error {
			update := Update{Output: bd.Output, Value: value}
			fig, err := b.run(ctx, bd, value)
			if err != nil {
				update.Error = err.Error()
			} else {
				update.Figure = fig
			}
			updates[i] = update
			return nil
		})
	}
	_ = g.Wait()

	return updates, nil
}

// Compute executa um único binding
func (b *Binder) Compute(ctx context.Context, output, value string) (figure.Figure, error) {
	for _, bd := range b.bindings {
		if bd.Output == output {
			return b.run(ctx, bd, value)
		}
	}
	return figure.Figure{}, fmt.Errorf("%w: %s", model.ErrUnknownOutput, output)
}

func (b *Binder) run(ctx context.Context, bd Binding, value string) (figure.Figure, error) {
	if err := ctx.Err(); err != nil {
		return figure.Figure{}, err
	}

	start := time.Now()
	compute := func() (interface{}, error) {
		return bd.Compute(ctx, value)
	}

	var (
		v   interface{}
		hit bool
		err error
	)
	if b.cache != nil && (b.cacheable == nil || b.cacheable(value)) {
		v, hit, err = b.cache.GetOrCompute(cache.Key(bd.Output, value), compute)
	} else {
		v, err = compute()
	}

	b.metrics.TrackCallback(bd.Output, hit, err, time.Since(start))

	if err != nil {
		logger.Get(ctx).Error().Err(err).
			Str("output", bd.Output).
			Str("value", value).
			Msg("Erro ao recalcular gráfico")
		return figure.Figure{}, err
	}

	logger.Get(ctx).Debug().
		Str("output", bd.Output).
		Str("value", value).
		Bool("cache_hit", hit).
		Dur("latency", time.Since(start)).
		Msg("Gráfico recalculado")

	return v.(figure.Figure), nil
}
