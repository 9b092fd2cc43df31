package cookiegate

import "errors"

var (
	// ErrUnauthenticated is an exported constant or variable used by the session gate engine.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionNotFound is an exported constant or variable used by the session gate engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSecretMismatch is an exported constant or variable used by the session gate engine.
	ErrSecretMismatch = errors.New("internal token mismatch")
	// ErrSessionMismatch is an exported constant or variable used by the session gate engine.
	ErrSessionMismatch = errors.New("token bound to a different session")
	// ErrRotationFailed is an exported constant or variable used by the session gate engine.
	ErrRotationFailed = errors.New("session token rotation failed")
	// ErrInsufficientPermission is an exported constant or variable used by the session gate engine.
	ErrInsufficientPermission = errors.New("insufficient permission")
	// ErrSessionCreationFailed is an exported constant or variable used by the session gate engine.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrSessionInvalidationFailed is an exported constant or variable used by the session gate engine.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrEngineNotReady is an exported constant or variable used by the session gate engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
