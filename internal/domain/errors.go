package domain

import "errors"

var (
	// ErrAllRegionsFailed - ни один регион каталога не был получен
	ErrAllRegionsFailed = errors.New("all directory regions failed")

	// ErrNotFound - объект достоверно отсутствует
	ErrNotFound = errors.New("not found")

	// ErrRunInProgress - другой запуск пайплайна удерживает блокировку
	ErrRunInProgress = errors.New("pipeline run already in progress")
)
