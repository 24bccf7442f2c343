package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"

	"github.com/lbeckmann/team-registration/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is delegated to the CORS layer in front of the
		// API; the stream carries no privileged data beyond the caller's own.
		return true
	},
}

type WebSocketHandler struct {
	hub       *realtime.Hub
	jwtSecret []byte
	logger    *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, jwtSecret string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// ServeWs subscribes the caller to a realtime room. Browsers cannot set an
// Authorization header on websocket dials, so the token travels as a query
// parameter. Without an event_id the client lands in its own auth room and
// receives auth-state change events; with one it receives roster changes for
// that event.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userIDFromToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	room := fmt.Sprintf("user_%d", userID)
	if eventIDStr := r.URL.Query().Get("event_id"); eventIDStr != "" {
		eventID, convErr := strconv.Atoi(eventIDStr)
		if convErr != nil || eventID <= 0 {
			http.Error(w, "invalid event_id", http.StatusBadRequest)
			return
		}
		room = fmt.Sprintf("event_%d", eventID)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (h *WebSocketHandler) userIDFromToken(tokenString string) (int, error) {
	if tokenString == "" {
		return 0, fmt.Errorf("missing token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, fmt.Errorf("invalid user_id claim")
	}
	return int(userIDFloat), nil
}
