/*
Package hub pushes state to the open tabs of every browser profile.

This file defines the WebSocket message envelope and the payloads exchanged
between a tab and the server.
*/
package hub

import (
	"encoding/json"
	"fmt"
	"time"

	"freequilt/internal/app/view"
	"freequilt/internal/pkg/randx"
)

// MessageType identifies the payload of a Message.
type MessageType string

// Messages sent by tabs.
const (
	TypeSearch          MessageType = "search"
	TypeFilter          MessageType = "filter"
	TypeFavoriteToggle  MessageType = "favorite.toggle"
	TypeModalOpen       MessageType = "modal.open"
	TypeModalClose      MessageType = "modal.close"
	TypeMenuToggle      MessageType = "menu.toggle"
	TypeMenuClose       MessageType = "menu.close"
	TypeThemeToggle     MessageType = "theme.toggle"
	TypeDirectionToggle MessageType = "direction.toggle"
	TypeDownload        MessageType = "download"
	TypeResync          MessageType = "resync"
)

// Messages sent by the server.
const (
	// TypeInit carries the full state of the tab right after it connects.
	TypeInit MessageType = "INIT"
	// TypePatch carries surface updates.
	TypePatch MessageType = "PATCH"
	// TypeStorage relays a preference write made elsewhere.
	TypeStorage MessageType = "STORAGE"
	// TypeNotification reports a notification phase change.
	TypeNotification MessageType = "NOTIFICATION"
	// TypeDownloadReady tells the tab to fetch a pattern file.
	TypeDownloadReady MessageType = "DOWNLOAD"
	// TypeError reports a rejected request.
	TypeError MessageType = "ERROR"
)

// Message is the envelope of every server message.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage wraps payload into a Message with a fresh id.
func NewMessage(msgType MessageType, payload any) (Message, error) {
	msg := Message{
		ID:        randx.MessageID(),
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		msg.Payload = raw
	}

	return msg, nil
}

// InboundMessage is a message received from a tab.
type InboundMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitPayload is the payload of TypeInit.
type InitPayload struct {
	TabID string     `json:"tabId"`
	Page  string     `json:"page"`
	State view.Patch `json:"state"`
}

// ErrorPayload is the payload of TypeError.
type ErrorPayload struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SearchPayload is the payload of TypeSearch.
type SearchPayload struct {
	Term string `json:"term"`
}

// FilterPayload is the payload of TypeFilter.
type FilterPayload struct {
	Category string `json:"category"`
}

// PatternPayload is the payload of TypeFavoriteToggle, TypeModalOpen and TypeDownload.
type PatternPayload struct {
	PatternID string `json:"patternId"`
}

// DisclosurePayload is the payload of TypeModalClose, TypeMenuToggle and TypeMenuClose.
type DisclosurePayload struct {
	Menu  view.Menu            `json:"menu,omitempty"`
	Event view.DisclosureEvent `json:"event,omitempty"`
}
