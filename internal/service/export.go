package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/cleberrangel/sprint-dashboard/internal/transform"
	"github.com/xuri/excelize/v2"
)

// Nomes das planilhas do relatório
const (
	SheetTimeline    = "Timeline"
	SheetPerformance = "Performance"
	SheetEfficiency  = "Efficiency"
)

// ContentTypeXLSX é o MIME type do relatório
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportDateFormat = "2006-01-02"

// ExportService gera o relatório Excel das três tabelas derivadas de uma Sprint
type ExportService struct {
	ds   *dataset.Dataset
	opts transform.EfficiencyOptions
}

// NewExportService cria um novo gerador de relatório
func NewExportService(ds *dataset.Dataset, opts transform.EfficiencyOptions) *ExportService {
	return &ExportService{ds: ds, opts: opts}
}

// sheet é o conteúdo de uma planilha: cabeçalho e linhas
type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// Export gera o arquivo Excel para a Sprint informada
func (s *ExportService) Export(ctx context.Context, sprint string) (*bytes.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheets := []sheet{
		timelineSheet(transform.Timeline(s.ds, sprint)),
		performanceSheet(transform.Performance(s.ds, sprint)),
		efficiencySheet(transform.Efficiency(s.ds, sprint, s.opts)),
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilos: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			// Renomeia a sheet padrão
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return nil, fmt.Errorf("renomear sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("criar sheet %s: %w", sh.name, err)
		}

		if err := writeSheet(f, sh, styles); err != nil {
			return nil, fmt.Errorf("escrever sheet %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

func timelineSheet(rows []model.TimelineRow) sheet {
	sh := sheet{
		name: SheetTimeline,
		headers: []string{
			model.ColumnModule, model.ColumnStartDate, model.ColumnActualFinished,
			model.ColumnPriority, "Duration (days)",
		},
	}
	for _, r := range rows {
		days := r.ActualFinished.Sub(r.StartDate).Hours() / 24
		sh.rows = append(sh.rows, []interface{}{
			r.Module,
			r.StartDate.Format(exportDateFormat),
			r.ActualFinished.Format(exportDateFormat),
			r.Priority,
			days,
		})
	}
	return sh
}

func performanceSheet(rows []model.PerformanceRow) sheet {
	sh := sheet{
		name:    SheetPerformance,
		headers: []string{model.ColumnAssignTo, model.ColumnTotalCost},
	}
	for _, r := range rows {
		sh.rows = append(sh.rows, []interface{}{r.AssignTo, r.SumCost})
	}
	return sh
}

func efficiencySheet(rows []model.EfficiencyRow) sheet {
	sh := sheet{
		name:    SheetEfficiency,
		headers: []string{model.ColumnSprint, model.ColumnModule, "Efficiency"},
	}
	for _, r := range rows {
		sh.rows = append(sh.rows, []interface{}{r.Sprint, r.Module, r.Efficiency})
	}
	return sh
}

type styles struct {
	header, even, odd int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: border("000000"),
	})
	if err != nil {
		return s, err
	}

	// Estilo alternado para linhas
	if s.odd, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: border("D9D9D9"),
	}); err != nil {
		return s, err
	}
	s.even, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
		Border: border("D9D9D9"),
	})
	return s, err
}

func border(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
	}
}

// writeSheet escreve cabeçalho e linhas, uma linha por vez
func writeSheet(f *excelize.File, sh sheet, st styles) error {
	header := make([]interface{}, len(sh.headers))
	for i, h := range sh.headers {
		header[i] = h
	}
	if err := writeRow(f, sh.name, 1, header, st.header); err != nil {
		return err
	}

	for i, row := range sh.rows {
		style := st.even
		if i%2 == 1 {
			style = st.odd
		}
		if err := writeRow(f, sh.name, i+2, row, style); err != nil {
			return err
		}
	}

	// Largura fixa de 20 para todas as colunas
	last, _ := excelize.ColumnNumberToName(len(sh.headers))
	return f.SetColWidth(sh.name, "A", last, 20)
}

func writeRow(f *excelize.File, name string, row int, values []interface{}, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)

	if err := f.SetSheetRow(name, first, &values); err != nil {
		return err
	}
	return f.SetCellStyle(name, first, last, style)
}
