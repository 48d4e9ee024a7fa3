package protocol

import "errors"

// Error kinds. Concrete errors wrap one of these with fmt.Errorf("%w: ...")
// so callers can branch with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNetwork          = errors.New("network error")
	ErrCapability       = errors.New("capability error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIO               = errors.New("io error")
)
