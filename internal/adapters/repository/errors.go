package repository

import (
	"fmt"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

// Sentinel kinds for storage errors. Both match the domain kinds via errors.Is.
var (
	ErrNotFound = fmt.Errorf("record %w", errs.ErrNotFound)
	ErrConflict = fmt.Errorf("record already exists: %w", errs.ErrConflict)
)
