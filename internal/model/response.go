package model

// CallbackRequest representa uma mudança de valor em um componente de entrada
type CallbackRequest struct {
	Input string `json:"input" binding:"required"`
	Value string `json:"value"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Meta contém metadados da resposta
type Meta struct {
	TotalRecords int    `json:"total_records,omitempty"`
	TotalSprints int    `json:"total_sprints,omitempty"`
	Sprint       string `json:"sprint,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
