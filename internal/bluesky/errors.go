package bluesky

import "errors"

// Failure classes surfaced by the publisher. None of them is retried here:
// the scheduler runs at most once per configured interval and a retry storm
// would break the posting cadence.
var (
	// ErrMissingCredentials means the account has no handle or app password
	// configured.
	ErrMissingCredentials = errors.New("missing bluesky credentials")
	// ErrAuthentication means the remote rejected the login or returned no
	// token. A stale app password is not a transient fault.
	ErrAuthentication = errors.New("bluesky login failed")
	// ErrRemoteAPI means blob upload or record creation answered non-2xx.
	ErrRemoteAPI = errors.New("bluesky api error")
)
