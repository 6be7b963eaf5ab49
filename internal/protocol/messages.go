// Package protocol interprets the backend's JSON messages and drives the
// client's side of the load handshake.
package protocol

import "encoding/json"

// Inbound message types.
const (
	TypeDownloaded     = "downloaded"
	TypeImages         = "images"
	TypeInitialImages  = "initial_images"
	TypeWeather        = "weather"
	TypeInitialWeather = "initial_weather"
)

// Outbound message types.
const (
	TypeConnection = "connection"
	TypeLoad       = "load"
	TypeError      = "error"
)

// Load targets.
const (
	LoadImages  = "images"
	LoadWeather = "weather"
)

// MsgArraySizeMismatch is reported for every image the board has no slot for.
const MsgArraySizeMismatch = "Array size mismatch!"

// Envelope is the common shape of every frame on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Date    string          `json:"date,omitempty"`
}

// Outbound is a message sent by the client.
type Outbound struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ConnectionMessage announces a ready client.
func ConnectionMessage() Outbound {
	return Outbound{Type: TypeConnection}
}

// LoadMessage asks the backend to push images or weather.
func LoadMessage(what string) Outbound {
	return Outbound{Type: TypeLoad, Message: what}
}

// ErrorMessage reports a client-side problem to the backend.
func ErrorMessage(msg string) Outbound {
	return Outbound{Type: TypeError, Message: msg}
}
