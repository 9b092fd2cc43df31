// Package audit provides the internal audit event model and asynchronous
// dispatcher used by the cookiegate engine.
//
// Events describe authentication and permission outcomes (session rotated,
// token rejected, permission denied, ...). The dispatcher decouples the
// request hot path from sink latency: Emit enqueues, a single goroutine
// forwards to the configured sink, and backpressure either blocks or drops
// depending on configuration.
package audit
