package errors

import "net/http"

var (
	ErrReportNotFound = New(
		"REPORT_NOT_FOUND",
		"Report not found",
		http.StatusNotFound,
	)

	ErrLandNotFound = New(
		"LAND_NOT_FOUND",
		"Land is outside of the grid",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Unauthorized",
		http.StatusUnauthorized,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrStorageError = New(
		"STORAGE_ERROR",
		"Object storage operation failed",
		http.StatusBadGateway,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
