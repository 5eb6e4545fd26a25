package usecase

// Resolution outcomes reported to the Observer.
const (
	OutcomeResolved    = "resolved"
	OutcomeNotFound    = "not_found"
	OutcomeUnsupported = "unsupported"
	OutcomeInvalid     = "invalid"
	OutcomeInvariant   = "invariant_violation"
	OutcomeError       = "error"
)

// tracerName identifies spans started by this package.
const tracerName = "github.com/iho/postingrules/internal/usecase"
