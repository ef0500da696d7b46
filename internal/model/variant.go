// Package model defines the catalog and order types shared across the application.
package model

import (
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned when stored or submitted text does not name a known variant.
var ErrUnknownVariant = errors.New("unknown variant")

func unknownVariant(kind, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownVariant, kind, value)
}
