package notification

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	feed *Feed
	hub  *Hub
}

func NewHandler(feed *Feed, hub *Hub) *Handler {
	return &Handler{feed: feed, hub: hub}
}

type FeedResponse struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
	LastUpdate    string         `json:"lastUpdate"`
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FeedResponse{
		Success:       true,
		Notifications: h.feed.List(),
		LastUpdate:    h.feed.LastUpdate(),
	})
}

func (h *Handler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	h.feed.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r)
}
