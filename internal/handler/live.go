package handler

import (
	"net/http"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/config"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/dashboard"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/repository"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/websocket"
)

type LiveHandler struct {
	Hub    *websocket.Hub
	Repo   repository.CallRepository
	Config *config.Config
}

func NewLiveHandler(hub *websocket.Hub, repo repository.CallRepository, cfg *config.Config) *LiveHandler {
	return &LiveHandler{
		Hub:    hub,
		Repo:   repo,
		Config: cfg,
	}
}

// Serve upgrades the connection and binds it to a fresh dashboard session.
// Auth already ran in middleware; browsers pass the token as a query param.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.Hub, w, r, h.Config.AllowedOrigins, func(client *websocket.Client) {
		sess := dashboard.NewSession(h.Repo, client)
		client.OnMessage = sess.HandleMessage
		client.OnClose = sess.Close
		go sess.Run()
	})
}
