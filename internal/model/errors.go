package model

import "errors"

var (
	// ErrUnknownInput indica um componente de entrada que não existe no layout
	ErrUnknownInput = errors.New("componente de entrada desconhecido")

	// ErrUnknownOutput indica um gráfico que não existe no layout
	ErrUnknownOutput = errors.New("gráfico desconhecido")

	// ErrEmptyChart indica que não há dados para desenhar o gráfico
	ErrEmptyChart = errors.New("gráfico sem dados")

	// ErrRateLimited indica excesso de mensagens de um cliente
	ErrRateLimited = errors.New("limite de mensagens excedido")
)
