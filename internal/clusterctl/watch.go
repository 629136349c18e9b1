package clusterctl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/perola/clusterd/internal/events"
)

// Watch streams cluster events to stdout until the context is canceled.
func Watch(ctx context.Context, client *Client, clusterID string) error {
	path := "/api/v1/events/watch"
	if clusterID != "" {
		path += "?" + url.Values{"cluster_id": {clusterID}}.Encode()
	}

	ws, _, err := websocket.Dial(ctx, client.BaseURL+path, &websocket.DialOptions{
		HTTPHeader: http.Header{"X-User-Email": {client.UserEmail}},
	})
	if err != nil {
		return fmt.Errorf("dial event stream: %w", err)
	}
	defer ws.CloseNow()

	fmt.Println("Watching events (Ctrl-C to stop)...")
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				ws.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		var evt events.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		fmt.Printf("%s  %-24s  cluster=%s generation=%d source=%s\n",
			evt.Timestamp.Format(time.RFC3339), evt.Type, evt.ClusterID, evt.Generation, evt.Source)
	}
}
