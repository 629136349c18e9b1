package clusterctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/perola/clusterd/internal/model"
)

// Create registers the cluster defined in the YAML file at path.
func Create(client *Client, path string) error {
	file, err := LoadClusterFile(path)
	if err != nil {
		return err
	}

	resp, err := client.Post("/api/v1/clusters", map[string]any{
		"name": file.Name,
		"spec": file.Spec.Spec(),
	})
	if err != nil {
		return err
	}

	var c model.Cluster
	if err := json.Unmarshal(resp.Body, &c); err != nil {
		return fmt.Errorf("parse cluster: %w", err)
	}
	fmt.Printf("Cluster %q created: %s (generation %d, phase %s)\n",
		c.Name, c.ID, c.Generation, c.Status.Phase)
	return nil
}

// Get prints a single cluster as indented JSON.
func Get(client *Client, id string) error {
	resp, err := client.Get("/api/v1/clusters/" + id)
	if err != nil {
		return err
	}
	return printJSON(resp.Body)
}

// List prints a table of clusters, optionally filtered by platform and phase.
func List(client *Client, platform, phase string) error {
	q := url.Values{}
	if platform != "" {
		q.Set("platform", platform)
	}
	if phase != "" {
		q.Set("phase", phase)
	}
	path := "/api/v1/clusters"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := client.Get(path)
	if err != nil {
		return err
	}

	items, err := resp.Items()
	if err != nil {
		return err
	}
	var clusters []model.Cluster
	if len(items) > 0 {
		if err := json.Unmarshal(items, &clusters); err != nil {
			return fmt.Errorf("parse clusters: %w", err)
		}
	}

	fmt.Printf("%-36s  %-20s  %-12s  %3s  %s\n", "ID", "NAME", "PHASE", "GEN", "MESSAGE")
	for _, c := range clusters {
		fmt.Printf("%-36s  %-20s  %-12s  %3d  %s\n",
			c.ID, c.Name, c.Status.Phase, c.Generation, c.Status.Message)
	}
	return nil
}

// Status prints the aggregated status and the per-controller report table.
func Status(client *Client, id string) error {
	resp, err := client.Get("/api/v1/clusters/" + id + "/status")
	if err != nil {
		return err
	}

	var body struct {
		Status  model.ClusterStatus      `json:"status"`
		Reports []model.ControllerReport `json:"reports"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return fmt.Errorf("parse status: %w", err)
	}

	fmt.Printf("Phase:               %s\n", body.Status.Phase)
	fmt.Printf("Message:             %s\n", body.Status.Message)
	fmt.Printf("Observed generation: %d\n", body.Status.ObservedGeneration)
	if len(body.Reports) == 0 {
		fmt.Println("No controller reports.")
		return nil
	}

	fmt.Printf("\n%-24s  %3s  %-6s  %s\n", "CONTROLLER", "GEN", "STALE", "LAST ERROR")
	for _, rep := range body.Reports {
		lastErr := ""
		if rep.LastError != nil {
			lastErr = rep.LastError.Message
		}
		fmt.Printf("%-24s  %3d  %-6t  %s\n",
			rep.ControllerName, rep.ObservedGeneration, rep.Stale, lastErr)
	}
	return nil
}

// Update replaces the cluster's spec from a YAML file. With expect > 0 the
// update is conditional on the current generation.
func Update(client *Client, id, path string, expect int64) error {
	file, err := LoadClusterFile(path)
	if err != nil {
		return err
	}

	body := map[string]any{"spec": file.Spec.Spec()}
	if expect > 0 {
		body["expected_generation"] = expect
	}

	resp, err := client.Put("/api/v1/clusters/"+id, body)
	if err != nil {
		return err
	}

	var c model.Cluster
	if err := json.Unmarshal(resp.Body, &c); err != nil {
		return fmt.Errorf("parse cluster: %w", err)
	}
	fmt.Printf("Cluster %s updated to generation %d (phase %s)\n",
		c.ID, c.Generation, c.Status.Phase)
	return nil
}

// Report pushes a controller report. Ready toggles the Available condition;
// errMsg, when set, records a reconciliation failure.
func Report(client *Client, id, controller string, generation int64, ready bool, errMsg string) error {
	condStatus := model.ConditionFalse
	if ready {
		condStatus = model.ConditionTrue
	}

	body := map[string]any{
		"controller_name":     controller,
		"observed_generation": generation,
		"conditions": []map[string]any{
			{"type": model.ConditionAvailable, "status": condStatus},
		},
	}
	if errMsg != "" {
		body["last_error"] = map[string]any{"message": errMsg}
	}

	resp, err := client.Put("/api/v1/clusters/"+id+"/status", body)
	if err != nil {
		return err
	}

	var c model.Cluster
	if err := json.Unmarshal(resp.Body, &c); err != nil {
		return fmt.Errorf("parse cluster: %w", err)
	}
	fmt.Printf("Report accepted; cluster %s is now %s (%s)\n",
		c.ID, c.Status.Phase, c.Status.Message)
	return nil
}

// Delete requests cluster deletion.
func Delete(client *Client, id string, force bool) error {
	path := "/api/v1/clusters/" + id
	if force {
		path += "?force=true"
	}
	if _, err := client.Delete(path); err != nil {
		return err
	}
	fmt.Printf("Cluster %s deletion requested\n", id)
	return nil
}

func printJSON(raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Println(buf.String())
	return nil
}
