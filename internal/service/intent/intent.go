// Package intent turns free-form operator requests ("plumbers in Durham NC with no
// website") into run settings.
package intent

import (
	"context"
	"errors"

	"github.com/octobees/leadscout/internal/entity"
)

// ErrUnparseable is returned when a request does not describe a lead search.
var ErrUnparseable = errors.New("request is not a lead search")

// Parser translates text into a RunConfig. Location and lead cap fall back to
// base when the text omits them; filters come from the text alone.
type Parser interface {
	Parse(ctx context.Context, text string, base entity.RunConfig) (entity.RunConfig, error)
}
