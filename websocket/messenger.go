// Package websocket Description: Messenger turns feed events into JSON frames
// and hands them to the hub.
// file: websocket/messenger.go
package websocket

import (
	"encoding/json"

	"go-drop-registry/logger"
)

// Messenger is an interface for broadcasting messages.
type Messenger interface {
	Broadcast(topic Topic, action string, data interface{})
}

// Envelope is the frame every client receives.
type Envelope struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
}

// publisher is the part of Hub a messenger needs.
type publisher interface {
	Publish(topic Topic, action string, message []byte)
}

type realMessenger struct {
	hub publisher
}

// NewMessenger returns a Messenger publishing through hub.
func NewMessenger(hub *Hub) Messenger {
	return &realMessenger{hub: hub}
}

// Broadcast marshals the envelope and publishes it.
func (r *realMessenger) Broadcast(topic Topic, action string, data interface{}) {
	m, err := json.Marshal(Envelope{Action: action, Data: data})
	if err != nil {
		logger.Error.Printf("realMessenger: Error marshalling %s: %v", action, err)
		return
	}
	r.hub.Publish(topic, action, m)
	logger.Debug.Printf("realMessenger: %s sent to %s", action, topic)
}
