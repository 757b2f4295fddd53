package xfanout

import (
	"time"
)

// NoticeType enumerates internal lifecycle notices for the Observer pattern.
type NoticeType string

const (
	Subscribed     NoticeType = "subscribed"
	Unsubscribed   NoticeType = "unsubscribed"
	NameCleared    NoticeType = "name_cleared"
	RegexPruned    NoticeType = "regex_pruned"
	ListenerFailed NoticeType = "listener_failed"
)

// Notice carries telemetry for observers.
type Notice struct {
	Type      NoticeType
	EventName string
	// Pattern is the printable form of the subscriber pattern ("*" for catch-all).
	Pattern string
	// Count is the number of subscribers affected (pruned, cleared).
	Count int
	Err   error

	// Internal: attached for async dispatch
	observers []Observer
}

// PoolStats returns telemetry about the observer pool.
type PoolStats struct {
	Dropped      uint64 // Notices dropped due to full buffer
	Processed    uint64 // Notices successfully processed
	ActiveEvents int    // Current queue depth
	Workers      int    // Number of dispatch goroutines
	BufferSize   int    // Channel capacity
}

// Metrics defines observable telemetry for the fanout.
type Metrics struct {
	Subscriptions  int
	Subscribed     uint64
	Unsubscribed   uint64
	Started        uint64
	Finished       uint64
	Published      uint64
	Pruned         uint64
	ListenerErrors uint64
	NoticesDropped uint64
}

// HealthStatus indicates fanout health for Kubernetes probes.
type HealthStatus struct {
	Status    string // "healthy", "degraded", "unhealthy"
	Metrics   Metrics
	Timestamp time.Time
	Message   string
}
