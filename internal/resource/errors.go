package resource

import (
	"errors"
	"fmt"

	"github.com/eagleglass/airsim/pkg/core"
)

var (
	// ErrNotAccepted is returned when a container does not declare the type.
	ErrNotAccepted = errors.New("resource type not accepted")
	// ErrNoSpace is returned when the receiving container is already full.
	ErrNoSpace = errors.New("no space left for resource")
	// ErrInsufficient matches every *InsufficientError.
	ErrInsufficient = errors.New("insufficient resources")
)

// InsufficientError reports a cost the pool cannot cover. Its message is
// meant to be shown to whoever initiated the action.
type InsufficientError struct {
	Type core.ResourceType
	Need int
	Have int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("not enough %s: need %d, have %d", e.Type, e.Need, e.Have)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficient
}
