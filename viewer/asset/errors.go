package asset

import (
	"fmt"
	"strings"
)

// MissingPagesError reports atlas pages that had no matching image among the
// supplied files. Pages are listed in declaration order.
type MissingPagesError struct {
	// Pages are the declared page names without a matching image.
	Pages []string
}

func (e *MissingPagesError) Error() string {
	return fmt.Sprintf("asset: no images supplied for atlas pages: %s", strings.Join(e.Pages, ", "))
}

// RegistrationError reports that the external asset manager rejected loading
// the registered resources. All registrations made by the failed bind have
// already been unwound when this error is returned.
type RegistrationError struct {
	// Keys are the registration keys the load was attempted for.
	Keys []string

	// Err is the manager's load error.
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("asset: failed to load %s: %v", strings.Join(e.Keys, ", "), e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// InstantiationError reports that the skeletal runtime rejected constructing
// a rig from successfully loaded assets. The bind's registrations have
// already been unwound when this error is returned.
type InstantiationError struct {
	// Err is the runtime's construction error.
	Err error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("asset: failed to instantiate rig: %v", e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}
