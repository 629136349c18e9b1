package clusterctl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/perola/clusterd/internal/model"
)

// WaitForPhase polls the cluster until it reaches the wanted phase. A Failed
// cluster short-circuits the wait; clusters can recover from Failed, but the
// caller almost always wants to know right away.
func WaitForPhase(client *Client, id, phase string, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		resp, err := client.Get("/api/v1/clusters/" + id)
		if err != nil {
			return err
		}
		var c model.Cluster
		if err := json.Unmarshal(resp.Body, &c); err != nil {
			return fmt.Errorf("parse cluster: %w", err)
		}

		if c.Status.Phase == phase {
			fmt.Printf("Cluster %s reached phase %s\n", id, phase)
			return nil
		}
		if c.Status.Phase == model.PhaseFailed && phase != model.PhaseFailed {
			return fmt.Errorf("cluster %s failed: %s", id, c.Status.Message)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for phase %s (current: %s)",
				timeout, phase, c.Status.Phase)
		}
		time.Sleep(interval)
	}
}
