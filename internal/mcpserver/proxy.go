package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// apiProxy executes tool calls against the cluster-api REST endpoints.
type apiProxy struct {
	baseURL   string
	userEmail string
	client    *http.Client
	logger    zerolog.Logger
}

func newAPIProxy(cfg *Config, logger zerolog.Logger) *apiProxy {
	return &apiProxy{
		baseURL:   strings.TrimRight(cfg.APIURL, "/"),
		userEmail: cfg.UserEmail,
		client:    &http.Client{},
		logger:    logger,
	}
}

// get performs a GET against the API and wraps the response as a tool result.
// An X-User-Email header forwarded by the MCP client takes precedence over the
// configured identity, so per-session identities survive the proxy hop.
func (p *apiProxy) get(ctx context.Context, req mcp.CallToolRequest, path string, query url.Values) (*mcp.CallToolResult, error) {
	u := p.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build request: %s", err)), nil
	}

	email := req.Header.Get("X-User-Email")
	if email == "" {
		email = p.userEmail
	}
	if email != "" {
		httpReq.Header.Set("X-User-Email", email)
	}

	p.logger.Debug().
		Str("url", u).
		Str("tool", req.Params.Name).
		Msg("proxying MCP tool call")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API request failed: %s", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read response: %s", err)), nil
	}

	if resp.StatusCode >= 400 {
		return mcp.NewToolResultError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))), nil
	}

	return mcp.NewToolResultText(string(respBody)), nil
}
