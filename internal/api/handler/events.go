package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/perola/clusterd/internal/events"
)

type Events struct {
	broker *events.Broker
}

func NewEvents(broker *events.Broker) *Events {
	return &Events{broker: broker}
}

// Watch godoc
//
//	@Summary		Stream cluster events
//	@Description	Upgrades to WebSocket and streams lifecycle events as JSON text messages. Optional cluster_id and type query params narrow the stream. Delivery is best effort; slow consumers miss events instead of stalling publishers.
//	@Tags			Events
//	@Security		UserEmailAuth
//	@Param			cluster_id	query	string	false	"Only events for this cluster"
//	@Param			type		query	string	false	"Only events of this type"
//	@Success		101
//	@Router			/events/watch [get]
func (h *Events) Watch(w http.ResponseWriter, r *http.Request) {
	clusterID := r.URL.Query().Get("cluster_id")
	eventType := r.URL.Query().Get("type")

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Origin differs from Host when proxied.
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.CloseNow()

	id, ch := h.broker.Subscribe()
	defer h.broker.Unsubscribe(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing we act on; reading drains control frames and
	// detects disconnects.
	go func() {
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			ws.Close(websocket.StatusNormalClosure, "")
			return
		case evt, ok := <-ch:
			if !ok {
				ws.Close(websocket.StatusNormalClosure, "")
				return
			}
			if clusterID != "" && evt.ClusterID != clusterID {
				continue
			}
			if eventType != "" && evt.Type != eventType {
				continue
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := ws.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
