package service

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tieubaoca/docproc-be/types"
)

// WebSocketService streams processing results over a websocket: the client
// sends a "process" request with a base64 payload and receives a
// "processing" event followed by the full result (or an error event).
type WebSocketService struct {
	processor FileProcessor
	upgrader  websocket.Upgrader
}

func NewWebSocketService(processor FileProcessor) *WebSocketService {
	return &WebSocketService{
		processor: processor,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleProcess(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 << 20) // payloads arrive base64-encoded in messages
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "Error processing message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketPing:
			s.writeResponse(conn, types.WebSocketResponse{Type: types.TypeWebsocketPong})
		case types.TypeWebsocketProcess:
			s.handleProcessRequest(r, conn, req.Payload)
		default:
			s.writeError(conn, "Unknown message type: "+req.Type)
		}
	}
}

func (s *WebSocketService) handleProcessRequest(r *http.Request, conn *websocket.Conn, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.writeError(conn, "Error processing message")
		return
	}
	var processPayload types.WebSocketProcessPayload
	if err := json.Unmarshal(payloadBytes, &processPayload); err != nil {
		s.writeError(conn, "Invalid process payload")
		return
	}

	fileReq := processPayload.Request
	data, err := base64.StdEncoding.DecodeString(fileReq.FileData)
	if err != nil {
		s.writeError(conn, "Invalid base64 file data")
		return
	}

	s.writeResponse(conn, types.WebSocketResponse{
		Type: types.TypeWebsocketProcessing,
		Payload: types.ProcessingDocumentStatus{
			Status:  "processing",
			Message: "Processing " + fileReq.Filename,
		},
	})

	result, err := s.processor.Process(r.Context(), types.ProcessRequest{
		Data:              data,
		Filename:          fileReq.Filename,
		Options:           fileReq.Options,
		ChunkingStrategy:  fileReq.ChunkingStrategy,
		IncludeEmbeddings: fileReq.IncludeEmbeddings,
	})
	if err != nil {
		s.writeError(conn, err.Error())
		return
	}

	s.writeResponse(conn, types.WebSocketResponse{
		Type:    types.TypeWebsocketResult,
		Payload: result,
	})
}

func (s *WebSocketService) writeResponse(conn *websocket.Conn, resp types.WebSocketResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Println("WebSocket write error:", err)
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	s.writeResponse(conn, types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: map[string]string{"message": message},
	})
}
