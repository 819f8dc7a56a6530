package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/gin-gonic/gin"
)

// handleError converte erros conhecidos em respostas HTTP
func handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "erro interno"

	switch {
	case errors.Is(err, model.ErrUnknownOutput):
		status = http.StatusNotFound
		message = "gráfico não encontrado"
	case errors.Is(err, model.ErrUnknownInput):
		status = http.StatusBadRequest
		message = "componente de entrada desconhecido"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		message = "requisição cancelada"
	}

	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg(message)
	} else {
		log.Warn().Err(err).Int("status", status).Msg(message)
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   message,
		Details: err.Error(),
	})
}
