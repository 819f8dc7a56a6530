package model

import "time"

// Nomes das colunas obrigatórias do CSV de entrada
const (
	ColumnSprint         = "Sprint"
	ColumnModule         = "Module"
	ColumnStartDate      = "StartDate"
	ColumnActualFinished = "ActualFinished"
	ColumnPriority       = "Priority"
	ColumnAssignTo       = "AssignTo"
	ColumnTotalCost      = "Total Cost"
	ColumnEstimates      = "Estimates"
)

// RequiredColumns lista as colunas que o cabeçalho precisa conter
var RequiredColumns = []string{
	ColumnSprint,
	ColumnModule,
	ColumnStartDate,
	ColumnActualFinished,
	ColumnPriority,
	ColumnAssignTo,
	ColumnTotalCost,
	ColumnEstimates,
}

// Record representa uma linha do dataset de acompanhamento de projeto.
// Categorias vazias equivalem a nulo; datas e números inválidos ficam nil.
type Record struct {
	Sprint         string     `json:"sprint"`
	Module         string     `json:"module"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	ActualFinished *time.Time `json:"actual_finished,omitempty"`
	Priority       string     `json:"priority"`
	AssignTo       string     `json:"assign_to"`
	TotalCost      *float64   `json:"total_cost,omitempty"`
	Estimates      *float64   `json:"estimates,omitempty"`

	// Texto original das datas, mantido para exportação
	RawStartDate      string `json:"-"`
	RawActualFinished string `json:"-"`
}

// TimelineRow é uma barra do gráfico de linha do tempo
type TimelineRow struct {
	Module         string    `json:"module"`
	StartDate      time.Time `json:"start_date"`
	ActualFinished time.Time `json:"actual_finished"`
	Priority       string    `json:"priority"`
}

// PerformanceRow é o custo total de um responsável
type PerformanceRow struct {
	AssignTo string  `json:"assign_to"`
	SumCost  float64 `json:"sum_cost"`
}

// EfficiencyRow é um ponto do gráfico de eficiência (custo / estimativa)
type EfficiencyRow struct {
	Sprint     string  `json:"sprint"`
	Module     string  `json:"module"`
	Efficiency float64 `json:"efficiency"`
}
