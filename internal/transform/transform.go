// Package transform contém as três funções puras que moldam o dataset
// para cada gráfico. Nenhuma delas altera o dataset recebido.
package transform

import (
	"sort"

	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
)

// Timeline filtra pelo Sprint, descarta linhas sem alguma das datas e
// ordena de forma estável por StartDate
func Timeline(ds *dataset.Dataset, sprint string) []model.TimelineRow {
	rows := make([]model.TimelineRow, 0)

	ds.Each(func(r *model.Record) {
		if r.Sprint != sprint || r.StartDate == nil || r.ActualFinished == nil {
			return
		}
		rows = append(rows, model.TimelineRow{
			Module:         r.Module,
			StartDate:      *r.StartDate,
			ActualFinished: *r.ActualFinished,
			Priority:       r.Priority,
		})
	})

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartDate.Before(rows[j].StartDate)
	})

	return rows
}

// Performance filtra pelo Sprint e soma Total Cost por AssignTo, na ordem
// em que cada responsável aparece. Custo nulo conta como zero; responsável
// nulo não forma grupo.
func Performance(ds *dataset.Dataset, sprint string) []model.PerformanceRow {
	rows := make([]model.PerformanceRow, 0)
	position := make(map[string]int)

	ds.Each(func(r *model.Record) {
		if r.Sprint != sprint || r.AssignTo == "" {
			return
		}
		i, ok := position[r.AssignTo]
		if !ok {
			i = len(rows)
			position[r.AssignTo] = i
			rows = append(rows, model.PerformanceRow{AssignTo: r.AssignTo})
		}
		if r.TotalCost != nil {
			rows[i].SumCost += *r.TotalCost
		}
	})

	return rows
}

// EfficiencyOptions ajusta o comportamento de Efficiency
type EfficiencyOptions struct {
	// FilterBySprint restringe as linhas ao Sprint selecionado. Desligado,
	// todas as sprints aparecem e o Sprint serve apenas para colorir.
	FilterBySprint bool
}

// Efficiency calcula Total Cost / Estimates para cada linha, seleciona
// Sprint, Module e Efficiency e descarta linhas com algum nulo. Estimativa
// nula ou zero produz eficiência nula.
func Efficiency(ds *dataset.Dataset, sprint string, opts EfficiencyOptions) []model.EfficiencyRow {
	rows := make([]model.EfficiencyRow, 0)

	ds.Each(func(r *model.Record) {
		if opts.FilterBySprint && r.Sprint != sprint {
			return
		}
		eff, ok := ratio(r.TotalCost, r.Estimates)
		if !ok || r.Sprint == "" || r.Module == "" {
			return
		}
		rows = append(rows, model.EfficiencyRow{
			Sprint:     r.Sprint,
			Module:     r.Module,
			Efficiency: eff,
		})
	})

	return rows
}

// ratio divide num por den; resultado nulo quando algum operando é nulo
// ou o divisor é zero
func ratio(num, den *float64) (float64, bool) {
	if num == nil || den == nil || *den == 0 {
		return 0, false
	}
	return *num / *den, true
}
