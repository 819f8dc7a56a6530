package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/xuri/excelize/v2"
)

// Erros de carga do dataset. Todos são fatais na inicialização.
var (
	ErrFileNotFound    = errors.New("arquivo de dados não encontrado")
	ErrEmptyFile       = errors.New("arquivo está vazio")
	ErrMissingColumn   = errors.New("coluna obrigatória ausente")
	ErrNoSprints       = errors.New("dataset não contém nenhum Sprint")
	ErrUnsupportedType = errors.New("formato de arquivo não suportado (use CSV ou XLSX)")
)

// dateLayouts são os formatos aceitos para StartDate e ActualFinished
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"1/2/2006",
}

// Load lê o arquivo de dados (CSV ou XLSX) e monta o Dataset
func Load(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("verificar arquivo: %w", err)
	}

	var (
		ds  *Dataset
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("erro ao abrir arquivo: %w", openErr)
		}
		defer file.Close()
		ds, err = Parse(file)
	case ".xlsx":
		ds, err = ParseXLSX(path)
	default:
		return nil, ErrUnsupportedType
	}

	if err != nil {
		return nil, fmt.Errorf("carregar %s: %w", path, err)
	}
	return ds, nil
}

// Parse lê um CSV delimitado por vírgula com linha de cabeçalho
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler CSV: %w", err)
	}

	return fromRows(rows)
}

// ParseXLSX lê a primeira planilha de um arquivo Excel
func ParseXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir arquivo Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return fromRows(rows)
}

// fromRows converte as linhas brutas (cabeçalho + dados) em registros
func fromRows(rows [][]string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, toRecord(row, index))
	}

	ds := New(records)
	if len(ds.sprints) == 0 {
		return nil, ErrNoSprints
	}
	return ds, nil
}

// columnIndex localiza cada coluna obrigatória no cabeçalho
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range model.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return index, nil
}

func toRecord(row []string, index map[string]int) model.Record {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return NormalizeCell(row[i])
	}

	return model.Record{
		Sprint:            cell(model.ColumnSprint),
		Module:            cell(model.ColumnModule),
		StartDate:         ParseDate(cell(model.ColumnStartDate)),
		ActualFinished:    ParseDate(cell(model.ColumnActualFinished)),
		Priority:          cell(model.ColumnPriority),
		AssignTo:          cell(model.ColumnAssignTo),
		TotalCost:         ParseNumber(cell(model.ColumnTotalCost)),
		Estimates:         ParseNumber(cell(model.ColumnEstimates)),
		RawStartDate:      cell(model.ColumnStartDate),
		RawActualFinished: cell(model.ColumnActualFinished),
	}
}

// NormalizeCell é a normalização aplicada a toda célula lida: remove bytes
// nulos e apara espaços. Valores vindos do seletor passam pela mesma função
// para continuarem comparáveis com a coluna Sprint.
func NormalizeCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// ParseDate converte texto em data; texto vazio ou inválido retorna nil
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseNumber converte texto em número; texto vazio, inválido ou NaN retorna nil
func ParseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
