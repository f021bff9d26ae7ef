package port

import (
	"context"

	"entrygate/internal/filing"
)

// FilingSubmitter hands an entry document to the filing service. Every
// failure is reported through the Outcome; implementations must not retry.
type FilingSubmitter interface {
	Submit(ctx context.Context, doc []byte) filing.Outcome
}
