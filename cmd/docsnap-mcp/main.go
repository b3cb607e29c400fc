// docsnap-mcp is an MCP stdio server that exposes the docsnap HTTP API as
// tools: render a page, extract sidebar links, and batch-scrape a link set.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// renderRequest mirrors the docsnap API request model.
type renderRequest struct {
	URL       string `json:"url"`
	FetchMode string `json:"fetch_mode,omitempty"`
	Timeout   int    `json:"timeout,omitempty"`
}

// renderResponse mirrors the docsnap API response model.
type renderResponse struct {
	Success  bool   `json:"success"`
	FinalURL string `json:"final_url"`
	HTML     string `json:"html"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// linksRequest mirrors the docsnap links API request model.
type linksRequest struct {
	URL     string `json:"url"`
	BaseURL string `json:"base_url,omitempty"`
}

// linksResponse mirrors the docsnap links API response model.
type linksResponse struct {
	Success bool              `json:"success"`
	Links   []json.RawMessage `json:"links"`
	Total   int               `json:"total"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// batchRequest mirrors the docsnap batch API request model.
type batchRequest struct {
	Links       []string `json:"links"`
	BaseURL     string   `json:"base_url,omitempty"`
	Concurrency int      `json:"concurrency,omitempty"`
}

// batchResponse mirrors the docsnap batch API response.
type batchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

func main() {
	apiURL := os.Getenv("DOCSNAP_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("DOCSNAP_API_KEY")

	s := server.NewMCPServer(
		"docsnap",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	renderTool := mcp.NewTool("render_page",
		mcp.WithDescription("Render a JavaScript-heavy documentation page in a headless browser and return the settled HTML."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to render"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Fetch strategy: 'auto' (default, HTTP first with browser escalation), 'browser', or 'http'"),
			mcp.Enum("auto", "browser", "http"),
		),
	)
	s.AddTool(renderTool, handleRenderPage(apiURL, apiKey))

	linksTool := mcp.NewTool("extract_sidebar_links",
		mcp.WithDescription("Render a documentation page and return the links from its navigation sidebar, resolved to absolute URLs."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The documentation page to render"),
		),
		mcp.WithString("base_url",
			mcp.Description("Base URL for resolving relative hrefs (default: the rendered page's final URL)"),
		),
	)
	s.AddTool(linksTool, handleExtractLinks(apiURL, apiKey))

	batchTool := mcp.NewTool("batch_scrape",
		mcp.WithDescription("Render a list of documentation pages and return per-page HTML or error, in input order."),
		mcp.WithArray("links",
			mcp.Required(),
			mcp.Description("List of URLs to render; relative URLs need base_url"),
		),
		mcp.WithString("base_url",
			mcp.Description("Base URL for resolving relative links"),
		),
		mcp.WithNumber("concurrency",
			mcp.Description("How many pages render at once (default: 1, sequential)"),
		),
	)
	s.AddTool(batchTool, handleBatchScrape(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the docsnap API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollBatch polls the batch status endpoint until the job leaves "processing"
// or the context is cancelled.
func pollBatch(ctx context.Context, client *http.Client, apiURL, apiKey, jobID string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/batch/"+jobID, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			if apiKey != "" {
				req.Header.Set("X-API-Key", apiKey)
			}

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleRenderPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 150 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/render", renderRequest{
			URL:       url,
			FetchMode: request.GetString("fetch_mode", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var rendered renderResponse
		if err := json.Unmarshal(respBody, &rendered); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !rendered.Success {
			msg := "render failed"
			if rendered.Error != nil {
				msg = fmt.Sprintf("%s: %s", rendered.Error.Code, rendered.Error.Message)
			}
			return mcp.NewToolResultError(msg), nil
		}

		return mcp.NewToolResultText(rendered.HTML), nil
	}
}

func handleExtractLinks(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 150 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/links", linksRequest{
			URL:     url,
			BaseURL: request.GetString("base_url", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var found linksResponse
		if err := json.Unmarshal(respBody, &found); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !found.Success {
			msg := "link extraction failed"
			if found.Error != nil {
				msg = fmt.Sprintf("%s: %s", found.Error.Code, found.Error.Message)
			}
			return mcp.NewToolResultError(msg), nil
		}

		out, err := json.MarshalIndent(found.Links, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode links: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func handleBatchScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawLinks, err := request.RequireStringSlice("links")
		if err != nil {
			return mcp.NewToolResultError("links must be a list of URL strings"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/scrape", batchRequest{
			Links:       rawLinks,
			BaseURL:     request.GetString("base_url", ""),
			Concurrency: request.GetInt("concurrency", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var job batchResponse
		if err := json.Unmarshal(respBody, &job); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if job.ID == "" {
			return mcp.NewToolResultError("batch submission failed: " + string(respBody)), nil
		}

		final, err := pollBatch(ctx, client, apiURL, apiKey, job.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch polling failed: %v", err)), nil
		}

		return mcp.NewToolResultText(string(final)), nil
	}
}
