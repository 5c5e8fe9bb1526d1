package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPrecondition      = errors.New("precondition failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDistance   = errors.New("invalid distance")
	ErrAlreadyRecorded   = errors.New("offloading already recorded")
	ErrTankOverflow      = errors.New("tank capacity exceeded")
)

// ErrGPSTagRequired is returned when a GPS-capable truck has not been tagged yet.
var ErrGPSTagRequired = fmt.Errorf("%w: truck must be GPS-tagged before transit", ErrPrecondition)
