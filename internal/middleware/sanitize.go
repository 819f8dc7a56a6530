package middleware

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
)

// SanitizeSelection limpa um valor vindo do seletor de Sprint ou de um id de
// componente. Usa a mesma normalização das células do dataset, então todo
// valor oferecido pelo seletor continua igual ao da coluna Sprint.
func SanitizeSelection(value string) string {
	return dataset.NormalizeCell(value)
}

// SanitizeFilename sanitizes a filename by:
// - Removing path traversal attempts
// - Removing dangerous characters
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	filename = strings.ReplaceAll(filename, "/", "")
	filename = strings.ReplaceAll(filename, "\\", "")
	filename = strings.ReplaceAll(filename, "\"", "")
	filename = removeControlChars(filename)

	// As remoções acima podem juntar pontos
	for strings.Contains(filename, "..") {
		filename = strings.ReplaceAll(filename, "..", "")
	}
	filename = strings.TrimSpace(filename)

	// filepath.Base devolve "." para entrada vazia
	if filename == "" || filename == "." {
		return "unnamed_file"
	}

	return filename
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
