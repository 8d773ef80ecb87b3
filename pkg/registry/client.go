// Package registry submits validated workflows, locale bundles and cover
// images to the AIHub workflow endpoints of a ComfyUI server.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
	"github.com/google/uuid"
)

var clientLog = logger.New("registry:client")

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// ErrRequest is returned when a request could not be sent or got no response.
var ErrRequest = errors.New("registry request failed")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	RequestID  string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s returned %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to one server. Each call is attempted exactly once.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// SubmitWorkflow stores the full workflow graph, replacing any earlier
// version with the same id. Decoded nodes are sent as they appeared in the
// snapshot.
func (c *Client) SubmitWorkflow(ctx context.Context, g graph.NodeGraph) error {
	body, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}
	return c.post(ctx, constants.WorkflowsPath, "application/json", body)
}

// SubmitLocale stores the locale bundle of a workflow.
func (c *Client) SubmitLocale(ctx context.Context, workflowID, locale string, projection workflow.LocaleProjection) error {
	body, err := json.Marshal(projection)
	if err != nil {
		return fmt.Errorf("failed to encode locale bundle: %w", err)
	}
	path := fmt.Sprintf(constants.LocalePathFormat, url.PathEscape(workflowID), url.PathEscape(locale))
	return c.post(ctx, path, "application/json", body)
}

// SubmitImage stores the PNG cover image of a workflow.
func (c *Client) SubmitImage(ctx context.Context, workflowID string, png []byte) error {
	path := fmt.Sprintf(constants.ImagePathFormat, url.PathEscape(workflowID))
	return c.post(ctx, path, constants.ImageContentType, png)
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) error {
	target := c.BaseURL + path
	requestID := uuid.NewString()
	clientLog.Printf("POST %s: bytes=%d request_id=%s", target, len(body), requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(constants.RequestIDHeader, requestID)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody*2))
	clientLog.Printf("POST %s: status=%d elapsed=%s", target, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     http.MethodPost,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       stringutil.Truncate(strings.TrimSpace(string(respBody)), maxErrorBody),
			RequestID:  requestID,
		}
	}
	return nil
}
