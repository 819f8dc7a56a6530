package binding

import "sync"

// Selector guarda o valor atual do seletor de Sprint de uma página.
// Um valor inicial vazio significa que nada foi escolhido ainda.
type Selector struct {
	mu    sync.RWMutex
	value string
	set   bool
}

// NewSelector cria um seletor com o valor inicial
func NewSelector(initial string) *Selector {
	return &Selector{value: initial, set: initial != ""}
}

// Value retorna o valor atual
func (s *Selector) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Current retorna o valor atual e se algum valor já foi escolhido
func (s *Selector) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// Set troca o valor e informa se houve mudança
func (s *Selector) Set(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := !s.set || s.value != value
	s.value = value
	s.set = true
	return changed
}
