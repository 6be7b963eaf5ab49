package model

import (
	"fmt"
	"time"
)

// ConnectionState is the lifecycle state of the backend connection.
type ConnectionState int

const (
	StateDiscovering ConnectionState = iota // waiting for the discovery endpoint
	StateConnecting                         // WebSocket handshake in progress
	StateOpen                               // connected, messages flowing
	StateClosed                             // dropped, reconnect scheduled
)

// String returns a human-readable name for the ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDiscovering:
		return "discovering"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ConnectionState(%d)", s)
	}
}

// ConnectionStatus is published whenever the connection state changes.
type ConnectionStatus struct {
	State   ConnectionState
	Address string // WebSocket address, empty until discovery succeeds
	ConnID  string // identifier of the current connection attempt
	At      time.Time
}

// ContentItem is one entry of the rotating content list.
type ContentItem struct {
	Label    string
	Duration time.Duration
}

// ImageUpdate carries a new set of image URLs for the board's slots.
type ImageUpdate struct {
	Slots       []string // Slots[i] is the cache-busted URL for slot i
	LastUpdated string   // formatted "last updated" time, empty when the message had no date
}

// Arm describes the single timer a display cycle wants armed. Gen identifies
// the arming; a tick carrying any other generation is stale.
type Arm struct {
	Gen   uint64
	After time.Duration
}
