package service

import (
	"fmt"

	"github.com/bookcircle/bookcircle-api/internal/domain"
)

// Service-level errors.
var (
	// ErrNotGroupAdmin is returned when a user attempts to moderate a
	// group's join requests without holding an admin relation for that
	// group. Wraps domain.ErrForbidden so errors.Is still matches.
	ErrNotGroupAdmin = fmt.Errorf("%w: only group admins can moderate join requests", domain.ErrForbidden)
)
