package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler разрешает подключения только с перечисленных Origin; "*" разрешает все.
func NewWebSocketHandler(hub *live.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// ServeUser подключает клиента к личной комнате: синхронизация фишек и т.п.
// Клиент подключается к /ws/users/{userID}?token=...
func (h *WebSocketHandler) ServeUser(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if userID != currentUserID {
		forbiddenResponse(w, r, "cannot subscribe to another user's updates")
		return
	}

	h.serve(w, r, live.UserRoom(userID))
}

// ServeGameweek подключает клиента к комнате тура: результаты матчей.
func (h *WebSocketHandler) ServeGameweek(w http.ResponseWriter, r *http.Request) {
	gameweek, err := getIDFromURL(r, "gameweek")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.serve(w, r, live.GameweekRoom(gameweek))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("failed to upgrade websocket connection", "room", room, "error", err)
		return
	}

	client := live.NewClient(h.hub, conn, room)
	if !h.hub.Join(client) {
		// Сервер останавливается
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", "room", room)
}
