// Package dataset carrega o CSV de acompanhamento de projetos uma única vez
// e o expõe somente para leitura.
package dataset

import (
	"github.com/cleberrangel/sprint-dashboard/internal/model"
)

// Dataset é o conjunto imutável de registros carregado na inicialização.
// Nenhum método altera o estado após New; pode ser compartilhado entre
// goroutines sem lock.
type Dataset struct {
	records []model.Record
	sprints []string
}

// New constrói um Dataset a partir dos registros já convertidos
func New(records []model.Record) *Dataset {
	owned := make([]model.Record, len(records))
	copy(owned, records)

	seen := make(map[string]bool)
	sprints := make([]string, 0)
	for _, r := range owned {
		if r.Sprint == "" || seen[r.Sprint] {
			continue
		}
		seen[r.Sprint] = true
		sprints = append(sprints, r.Sprint)
	}

	return &Dataset{records: owned, sprints: sprints}
}

// Len retorna o número de registros
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records retorna uma cópia dos registros
func (d *Dataset) Records() []model.Record {
	out := make([]model.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Each percorre os registros em ordem de arquivo sem copiá-los.
// O registro recebido não deve ser retido nem modificado.
func (d *Dataset) Each(fn func(r *model.Record)) {
	for i := range d.records {
		fn(&d.records[i])
	}
}

// Sprints retorna os valores distintos de Sprint na ordem da primeira ocorrência
func (d *Dataset) Sprints() []string {
	out := make([]string, len(d.sprints))
	copy(out, d.sprints)
	return out
}

// DefaultSprint retorna o primeiro Sprint do arquivo, ou "" se não houver
func (d *Dataset) DefaultSprint() string {
	if len(d.sprints) == 0 {
		return ""
	}
	return d.sprints[0]
}

// HasSprint indica se o valor aparece no dataset
func (d *Dataset) HasSprint(sprint string) bool {
	for _, s := range d.sprints {
		if s == sprint {
			return true
		}
	}
	return false
}
