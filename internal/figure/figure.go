// Package figure monta as especificações de gráfico (formato Plotly) a
// partir das linhas derivadas. O desenho fica a cargo do navegador.
package figure

import (
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/model"
)

// Títulos dos três gráficos
const (
	TitleTimeline    = "Project Timeline"
	TitlePerformance = "Team Performance"
	TitleEfficiency  = "Efficiency Metrics"
)

// dateFormat é o formato de data aceito pelo eixo "date" do Plotly
const dateFormat = "2006-01-02 15:04:05"

// palette é a sequência de cores qualitativa padrão do Plotly
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Figure é o documento entregue ao Plotly: traços + layout
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace é uma série do gráfico
type Trace struct {
	Type        string        `json:"type"`
	Name        string        `json:"name"`
	Orientation string        `json:"orientation,omitempty"`
	Mode        string        `json:"mode,omitempty"`
	X           []interface{} `json:"x"`
	Y           []interface{} `json:"y"`
	Base        []interface{} `json:"base,omitempty"`
	Marker      Marker        `json:"marker"`
	ShowLegend  bool          `json:"showlegend"`
}

// Marker define a cor da série
type Marker struct {
	Color string `json:"color"`
}

// Layout contém títulos e eixos
type Layout struct {
	Title   Text   `json:"title"`
	XAxis   Axis   `json:"xaxis"`
	YAxis   Axis   `json:"yaxis"`
	BarMode string `json:"barmode,omitempty"`
	Legend  Legend `json:"legend"`
}

// Axis descreve um eixo
type Axis struct {
	Title Text   `json:"title"`
	Type  string `json:"type,omitempty"`
}

// Legend descreve a legenda
type Legend struct {
	Title Text `json:"title"`
}

// Text é um título do Plotly
type Text struct {
	Text string `json:"text"`
}

// Points retorna o total de pontos em todos os traços
func (f Figure) Points() int {
	n := 0
	for _, t := range f.Data {
		n += len(t.X)
	}
	return n
}

// Timeline monta o gráfico de Gantt: uma barra horizontal por linha,
// de StartDate a ActualFinished no eixo de módulos, colorida por prioridade
func Timeline(rows []model.TimelineRow) Figure {
	traces := make([]Trace, 0)
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.Priority]
		if !ok {
			i = len(traces)
			index[row.Priority] = i
			traces = append(traces, Trace{
				Type:        "bar",
				Name:        row.Priority,
				Orientation: "h",
				X:           []interface{}{},
				Y:           []interface{}{},
				Base:        []interface{}{},
				Marker:      Marker{Color: color(i)},
				ShowLegend:  true,
			})
		}
		traces[i].X = append(traces[i].X, durationMillis(row.StartDate, row.ActualFinished))
		traces[i].Y = append(traces[i].Y, row.Module)
		traces[i].Base = append(traces[i].Base, row.StartDate.UTC().Format(dateFormat))
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:   Text{Text: TitleTimeline},
			XAxis:   Axis{Type: "date"},
			YAxis:   Axis{Title: Text{Text: model.ColumnModule}},
			BarMode: "overlay",
			Legend:  Legend{Title: Text{Text: model.ColumnPriority}},
		},
	}
}

// Performance monta o gráfico de barras de custo por responsável
func Performance(rows []model.PerformanceRow) Figure {
	trace := Trace{
		Type:   "bar",
		X:      make([]interface{}, 0, len(rows)),
		Y:      make([]interface{}, 0, len(rows)),
		Marker: Marker{Color: color(0)},
	}
	for _, row := range rows {
		trace.X = append(trace.X, row.AssignTo)
		trace.Y = append(trace.Y, row.SumCost)
	}

	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title:   Text{Text: TitlePerformance},
			XAxis:   Axis{Title: Text{Text: model.ColumnAssignTo}},
			YAxis:   Axis{Title: Text{Text: model.ColumnTotalCost}},
			BarMode: "relative",
		},
	}
}

// Efficiency monta o gráfico de dispersão de eficiência por módulo,
// um traço por Sprint
func Efficiency(rows []model.EfficiencyRow) Figure {
	traces := make([]Trace, 0)
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.Sprint]
		if !ok {
			i = len(traces)
			index[row.Sprint] = i
			traces = append(traces, Trace{
				Type:       "scatter",
				Name:       row.Sprint,
				Mode:       "markers",
				X:          []interface{}{},
				Y:          []interface{}{},
				Marker:     Marker{Color: color(i)},
				ShowLegend: true,
			})
		}
		traces[i].X = append(traces[i].X, row.Module)
		traces[i].Y = append(traces[i].Y, row.Efficiency)
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:  Text{Text: TitleEfficiency},
			XAxis:  Axis{Title: Text{Text: model.ColumnModule}},
			YAxis:  Axis{Title: Text{Text: "Efficiency"}},
			Legend: Legend{Title: Text{Text: model.ColumnSprint}},
		},
	}
}

func color(i int) string {
	return palette[i%len(palette)]
}

// durationMillis é o comprimento da barra; pode ser negativo quando o
// término é anterior ao início
func durationMillis(start, end time.Time) float64 {
	return float64(end.Sub(start).Milliseconds())
}
