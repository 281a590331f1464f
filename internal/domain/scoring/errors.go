package scoring

import (
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

// ErrInsufficientNeeds is returned by Rank when the need profile constrains nothing.
var ErrInsufficientNeeds = errs.NewKind("scoring.Rank", errs.ErrValidation)
