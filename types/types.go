package types

const (
	TypeWebsocketPing       = "ping"
	TypeWebsocketPong       = "pong"
	TypeWebsocketProcess    = "process"
	TypeWebsocketProcessing = "processing"
	TypeWebsocketResult     = "result"
	TypeWebsocketError      = "error"
)

type WebsocketRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type WebSocketResponse struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WebSocketProcessPayload is the payload of a "process" websocket request.
type WebSocketProcessPayload struct {
	Request ProcessFileRequest `json:"request"`
}
