// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package websocket

import (
	"github.com/goccy/go-json"
)

// Wire message types.
const (
	MessageTypeConnection     = "connection"
	MessageTypePhotoProcessed = "photo_processed"
	MessageTypeLikeUpdate     = "like_update"
	MessageTypeEcho           = "echo"
	MessageTypeError          = "error"
)

type connectionMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type echoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Marshal encodes v as a text frame payload.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// only called with the fixed message structs above
		panic(err)
	}
	return b
}

func connectionFrame(userID int64) []byte {
	return mustMarshal(connectionMessage{
		Type:    MessageTypeConnection,
		Message: "Connected to notifications",
		UserID:  userID,
	})
}

// echoFrame echoes payload back, embedded as JSON when it parses and as a
// string otherwise.
func echoFrame(payload []byte) []byte {
	var data any = string(payload)
	if json.Valid(payload) {
		data = json.RawMessage(payload)
	}
	return mustMarshal(echoMessage{Type: MessageTypeEcho, Message: "Received", Data: data})
}

func errorFrame(message string) []byte {
	return mustMarshal(errorMessage{Type: MessageTypeError, Message: message})
}
