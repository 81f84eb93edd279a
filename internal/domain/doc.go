// Package domain holds the core order model, broadcast event types, and the
// interfaces the notification pipeline depends on (order store, snapshot
// store, broadcaster). It has no dependencies on transport or storage code.
package domain
