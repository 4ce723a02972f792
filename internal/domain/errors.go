package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrGenerationExhausted  = errors.New("ticket generation exhausted")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrPersistence          = errors.New("persistence error")
	ErrNotificationDispatch = errors.New("notification dispatch failure")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
)

// Error kinds reported across the transport boundary.
const (
	KindValidation           = "ValidationError"
	KindNotFound             = "NotFound"
	KindConflict             = "Conflict"
	KindGenerationExhausted  = "GenerationExhausted"
	KindInvalidTransition    = "InvalidTransition"
	KindPersistence          = "PersistenceError"
	KindNotificationDispatch = "NotificationDispatchFailure"
	KindUnauthorized         = "Unauthorized"
	KindForbidden            = "Forbidden"
	KindRateLimited          = "RateLimited"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, KindValidation},
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
	{ErrGenerationExhausted, KindGenerationExhausted},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrNotificationDispatch, KindNotificationDispatch},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrPersistence, KindPersistence},
}

// KindOf returns the error kind for err. Errors that do not wrap a domain
// sentinel are reported as persistence errors.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindPersistence
}
