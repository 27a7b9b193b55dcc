package types

// =============================================================================
// UI MESSAGE PROTOCOL
// =============================================================================
// The hosting UI is an external collaborator. It talks to the session
// controller through these messages only; the controller never reaches into
// UI state directly.

// InboundType enumerates messages the UI sends to the session controller.
type InboundType string

const (
	InboundSendMessage InboundType = "sendMessage"
	InboundSetMode     InboundType = "setMode"
	InboundClearChat   InboundType = "clearChat"
)

// Inbound is a message from the UI collaborator.
type Inbound struct {
	Type    InboundType `json:"type"`
	Message string      `json:"message,omitempty"`
	Mode    Mode        `json:"mode,omitempty"`
}

// OutboundType enumerates messages the session controller emits for the UI.
type OutboundType string

const (
	OutboundUpdateChatHistory OutboundType = "updateChatHistory"
	OutboundSetLoading        OutboundType = "setLoading"
	OutboundSetMode           OutboundType = "setMode"
	OutboundAddMessage        OutboundType = "addMessage"
)

// Outbound is a message to the UI collaborator. Only the fields relevant to
// Type are populated.
type Outbound struct {
	Type      OutboundType `json:"type"`
	History   []ChatTurn   `json:"history,omitempty"`
	IsLoading bool         `json:"isLoading,omitempty"`
	Mode      Mode         `json:"mode,omitempty"`
	Message   *ChatTurn    `json:"message,omitempty"`
}

// Emitter receives outbound protocol messages. The UI collaborator supplies
// one to the session controller at construction.
type Emitter func(Outbound)
