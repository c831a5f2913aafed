package errs

import "errors"

var (
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrUnsupportedEncoding = errors.New("unsupported text encoding")
	ErrEmptyDocument       = errors.New("document is empty or too short")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrInvalid             = errors.New("invalid request")
	ErrIndexUnavailable    = errors.New("index unavailable")
	ErrProvider            = errors.New("generation provider error")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrTooMany             = errors.New("too many requests")
	ErrInternal            = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports whether err rejects the request's own data, as
// opposed to a service-side failure. Input errors are never retried.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnsupportedEncoding) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrPayloadTooLarge) ||
		errors.Is(err, ErrInvalid)
}
