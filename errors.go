package rtspd

import "github.com/pkg/errors"

// Sentinel errors returned by the Server orchestrator. Callers compare
// against these with errors.Is; underlying causes are wrapped with
// github.com/pkg/errors and remain inspectable via errors.Cause.
var (
	ErrAlreadyRunning         = errors.New("rtspd: server already running")
	ErrNotStarted             = errors.New("rtspd: server not started")
	ErrInvalidBindAddress     = errors.New("rtspd: invalid bind address")
	ErrSessionNotFound        = errors.New("rtspd: session not found")
	ErrSessionNotPlaying      = errors.New("rtspd: session not in Playing state")
	ErrTransportNotConfigured = errors.New("rtspd: session has no negotiated transport")
	ErrMountNotFound          = errors.New("rtspd: mount not found")
)
