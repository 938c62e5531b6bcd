// Package service holds the domain operations behind the HTTP handlers.
// Ownership and admin checks are enforced here.
package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "researchnett/internal/errors"
)

// notFound converts a missing row into the domain not-found error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}

// duplicate converts a unique violation into target.
func duplicate(err, target error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
