package cookiegate

import (
	"io"

	"github.com/formbridge/cookiegate/internal/audit"
)

// Principal defines a public type used by cookiegate APIs.
//
// Principal instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Principal struct {
	UserID     string
	SessionID  string
	Token      string
	AgeMinutes int
}

// Identity defines a public type used by cookiegate APIs.
//
// Identity carries the request-scoped caller attributes resolved by the
// middleware extractors. Fields are empty when the request supplied no value
// through any of the accepted carriers.
type Identity struct {
	UserID     string
	Language   string
	LoginToken string
	IPAddress  string
}

// AuditEvent is an exported constant or variable used by the session gate engine.
type AuditEvent = audit.Event

// AuditSink is an exported constant or variable used by the session gate engine.
type AuditSink = audit.Sink

// NoOpSink is an exported constant or variable used by the session gate engine.
type NoOpSink = audit.NoOpSink

// ChannelSink is an exported constant or variable used by the session gate engine.
type ChannelSink = audit.ChannelSink

// JSONWriterSink is an exported constant or variable used by the session gate engine.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink describes the newchannelsink operation and its observable behavior.
//
// NewChannelSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
//
// NewJSONWriterSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}
