package mcpserver

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tools returns the read-only cluster tools backed by the given proxy.
func Tools(proxy *apiProxy) []server.ServerTool {
	return []server.ServerTool{
		listClusters(proxy),
		getCluster(proxy),
		getClusterStatus(proxy),
		getReconcileStats(proxy),
	}
}

func listClusters(proxy *apiProxy) server.ServerTool {
	tool := mcp.NewTool("list_clusters",
		mcp.WithDescription("List clusters with their aggregated status. Supports filtering by platform type and phase."),
		mcp.WithString("platform", mcp.Description("Filter by platform type, e.g. kubernetes")),
		mcp.WithString("phase",
			mcp.Description("Filter by status phase"),
			mcp.Enum("Pending", "Progressing", "Ready", "Failed", "Terminating"),
		),
		mcp.WithNumber("limit", mcp.Description("Maximum number of clusters to return (default 50, max 200)")),
		mcp.WithNumber("offset", mcp.Description("Number of clusters to skip")),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		query := url.Values{}
		for _, name := range []string{"platform", "phase", "limit", "offset"} {
			if val, ok := args[name]; ok && val != nil && fmt.Sprintf("%v", val) != "" {
				query.Set(name, fmt.Sprintf("%v", val))
			}
		}
		return proxy.get(ctx, req, "/api/v1/clusters", query)
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func getCluster(proxy *apiProxy) server.ServerTool {
	tool := mcp.NewTool("get_cluster",
		mcp.WithDescription("Get a single cluster by ID, including its spec, generation, and aggregated status."),
		mcp.WithString("cluster_id", mcp.Description("Cluster UUID"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := req.GetArguments()["cluster_id"].(string)
		if !ok || id == "" {
			return mcp.NewToolResultError("missing required parameter: cluster_id"), nil
		}
		return proxy.get(ctx, req, "/api/v1/clusters/"+url.PathEscape(id), nil)
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func getClusterStatus(proxy *apiProxy) server.ServerTool {
	tool := mcp.NewTool("get_cluster_status",
		mcp.WithDescription("Get a cluster's aggregated status together with every controller report, including staleness and last errors."),
		mcp.WithString("cluster_id", mcp.Description("Cluster UUID"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := req.GetArguments()["cluster_id"].(string)
		if !ok || id == "" {
			return mcp.NewToolResultError("missing required parameter: cluster_id"), nil
		}
		return proxy.get(ctx, req, "/api/v1/clusters/"+url.PathEscape(id)+"/status", nil)
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func getReconcileStats(proxy *apiProxy) server.ServerTool {
	tool := mcp.NewTool("get_reconcile_stats",
		mcp.WithDescription("Get counters and timing from the background reconciliation sweeper."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return proxy.get(ctx, req, "/api/v1/reconcile/stats", nil)
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}
