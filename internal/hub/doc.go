// Package hub implements the real-time order-change notification core: a
// mutex-guarded registry of subscriber connections indexed globally and per
// user, a lazily started heartbeat that reaps unresponsive subscribers, a
// best-effort broadcaster over per-connection writer goroutines, and the
// peer relay channel.
package hub
