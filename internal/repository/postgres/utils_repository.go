package postgres

import (
	"database/sql"
)

// Лимиты выборок по умолчанию
const (
	// DefaultQueryLimit - лимит для списков истории и процессов
	DefaultQueryLimit = 20
	// MaxQueryLimit - верхняя граница для limit из запроса
	MaxQueryLimit = 1000
)

// nullString превращает пустую строку в NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// clampLimit приводит limit к (0, MaxQueryLimit]
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
