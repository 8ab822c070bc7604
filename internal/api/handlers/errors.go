package handlers

import (
	"aurora/internal/apierrors"
)

func badRequest(format string, args ...any) error {
	return apierrors.NewValidation(format, args...)
}

func notFound(entity, key string) error {
	return apierrors.NewNotFound(entity, key)
}

func internalErr(message string, cause error) error {
	return apierrors.NewInternal(message, cause)
}
