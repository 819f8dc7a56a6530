package figure

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngWidth  = 1024
	pngHeight = 480
)

// RenderPNG desenha um snapshot estático da figura. Retorna
// model.ErrEmptyChart quando não há pontos para desenhar.
func RenderPNG(fig Figure, w io.Writer) error {
	if fig.Points() == 0 {
		return model.ErrEmptyChart
	}

	switch {
	case isTimeline(fig):
		return renderTimeline(fig, w)
	case len(fig.Data) > 0 && fig.Data[0].Type == "bar":
		return renderBars(fig, w)
	default:
		return renderScatter(fig, w)
	}
}

func isTimeline(fig Figure) bool {
	return len(fig.Data) > 0 && fig.Data[0].Orientation == "h"
}

// renderTimeline desenha cada barra como um segmento grosso entre início e fim
func renderTimeline(fig Figure, w io.Writer) error {
	categories := newCategories()
	var series []chart.Series
	xMin, xMax := math.Inf(1), math.Inf(-1)

	for i, trace := range fig.Data {
		style := chart.Style{
			StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(trace.Marker.Color, "#")),
			StrokeWidth: 12,
		}
		for j := range trace.X {
			start, err := time.Parse(dateFormat, toString(trace.Base[j]))
			if err != nil {
				return fmt.Errorf("data de início inválida: %w", err)
			}
			end := start.Add(time.Duration(toFloat(trace.X[j])) * time.Millisecond)
			y := categories.index(toString(trace.Y[j]))

			x0, x1 := float64(start.Unix()), float64(end.Unix())
			xMin = math.Min(xMin, math.Min(x0, x1))
			xMax = math.Max(xMax, math.Max(x0, x1))

			s := chart.ContinuousSeries{
				XValues: []float64{x0, x1},
				YValues: []float64{y, y},
				Style:   style,
			}
			if j == 0 {
				s.Name = legendName(trace.Name, i)
			}
			series = append(series, s)
		}
	}

	day := float64(24 * time.Hour / time.Second)
	graph := chart.Chart{
		Title:  fig.Layout.Title.Text,
		Width:  pngWidth,
		Height: pngHeight,
		XAxis: chart.XAxis{
			Range: padRange(xMin, xMax, day),
			ValueFormatter: func(v interface{}) string {
				f, _ := v.(float64)
				return time.Unix(int64(f), 0).UTC().Format("2006-01-02")
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: float64(categories.len())},
			Ticks: categories.ticks(),
		},
		Series: series,
	}

	return graph.Render(chart.PNG, w)
}

// renderBars desenha o gráfico de barras de custo por responsável
func renderBars(fig Figure, w io.Writer) error {
	trace := fig.Data[0]
	bars := make([]chart.Value, 0, len(trace.X))
	maxValue, minValue := 0.0, 0.0

	for i := range trace.X {
		v := toFloat(trace.Y[i])
		maxValue = math.Max(maxValue, v)
		minValue = math.Min(minValue, v)
		bars = append(bars, chart.Value{
			Label: toString(trace.X[i]),
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(strings.TrimPrefix(trace.Marker.Color, "#")),
				StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(trace.Marker.Color, "#")),
			},
		})
	}
	if maxValue == minValue {
		maxValue = minValue + 1
	}

	graph := chart.BarChart{
		Title:    fig.Layout.Title.Text,
		Width:    pngWidth,
		Height:   pngHeight,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: minValue, Max: maxValue},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}

// renderScatter desenha os pontos de eficiência com módulos no eixo X
func renderScatter(fig Figure, w io.Writer) error {
	categories := newCategories()
	var series []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)

	for i, trace := range fig.Data {
		s := chart.ContinuousSeries{
			Name: legendName(trace.Name, i),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    drawing.ColorFromHex(strings.TrimPrefix(trace.Marker.Color, "#")),
			},
		}
		for j := range trace.X {
			y := toFloat(trace.Y[j])
			s.XValues = append(s.XValues, categories.index(toString(trace.X[j])))
			s.YValues = append(s.YValues, y)
			yMin = math.Min(yMin, y)
			yMax = math.Max(yMax, y)
		}
		series = append(series, s)
	}

	graph := chart.Chart{
		Title:  fig.Layout.Title.Text,
		Width:  pngWidth,
		Height: pngHeight,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: float64(categories.len())},
			Ticks: categories.ticks(),
		},
		YAxis: chart.YAxis{
			Range: padRange(yMin, yMax, 1),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// categories mapeia rótulos categóricos para posições no eixo, na ordem
// de primeira ocorrência
type categories struct {
	labels []string
	pos    map[string]int
}

func newCategories() *categories {
	return &categories{pos: make(map[string]int)}
}

func (c *categories) index(label string) float64 {
	i, ok := c.pos[label]
	if !ok {
		i = len(c.labels)
		c.pos[label] = i
		c.labels = append(c.labels, label)
	}
	return float64(i)
}

func (c *categories) len() int {
	return len(c.labels)
}

func (c *categories) ticks() []chart.Tick {
	ticks := []chart.Tick{{Value: -1, Label: ""}}
	for i, label := range c.labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	return append(ticks, chart.Tick{Value: float64(len(c.labels)), Label: ""})
}

// padRange evita intervalos de largura zero, que o go-chart rejeita
func padRange(lo, hi, pad float64) *chart.ContinuousRange {
	if hi-lo == 0 {
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	margin := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - margin, Max: hi + margin}
}

func legendName(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("trace %d", i)
	}
	return name
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return 0
	}
}
