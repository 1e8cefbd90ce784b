// Package dify implements the HTTP client for the Dify workflow engine.
// Every call authenticates with a per-workflow API key; the client itself
// holds only the base URL and timeout.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ ports.WorkflowEngine = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Info returns the application metadata for the workflow the key belongs to.
func (c *Client) Info(ctx context.Context, apiKey string) (map[string]any, error) {
	return c.getJSON(ctx, apiKey, "/info")
}

// Site returns the published WebApp settings.
func (c *Client) Site(ctx context.Context, apiKey string) (map[string]any, error) {
	return c.getJSON(ctx, apiKey, "/site")
}

// Parameters returns the input form schema, including user_input_form.
func (c *Client) Parameters(ctx context.Context, apiKey string) (map[string]any, error) {
	return c.getJSON(ctx, apiKey, "/parameters")
}

func (c *Client) getJSON(ctx context.Context, apiKey, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dify %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("dify %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("dify %s: decode: %w", path, err)
	}
	return out, nil
}

// UploadFile sends the file at path as multipart form data and returns the
// engine-assigned file id.
func (c *Client) UploadFile(ctx context.Context, apiKey, path, filename, mimetype, user string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("dify upload: open %s: %w", path, err)
	}
	defer file.Close()

	if filename == "" {
		filename = filepath.Base(path)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.WriteField("user", user); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dify upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("dify upload: status %d: %s", resp.StatusCode, string(body))
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("dify upload: decode: %w", err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("dify upload: response carries no file id")
	}
	c.logger.Debug("uploaded file to workflow engine",
		zap.String("filename", filename),
		zap.String("file_id", uploaded.ID))
	return uploaded.ID, nil
}

type runRequest struct {
	Inputs       map[string]any `json:"inputs"`
	User         string         `json:"user"`
	ResponseMode string         `json:"response_mode"`
}

type runResponse struct {
	Data struct {
		Status      string         `json:"status"`
		Outputs     map[string]any `json:"outputs"`
		Error       string         `json:"error"`
		TotalSteps  int            `json:"total_steps"`
		TotalTokens int            `json:"total_tokens"`
	} `json:"data"`
}

// RunWorkflow invokes the workflow in blocking mode and returns the parsed
// run result. A non-2xx status is an error; a run that finished with
// status "failed" is not, the caller decides from the result.
func (c *Client) RunWorkflow(ctx context.Context, apiKey string, inputs map[string]any, user, responseMode string) (*domain.EngineRunResult, error) {
	if inputs == nil {
		inputs = map[string]any{}
	}
	if responseMode == "" {
		responseMode = "blocking"
	}
	payload, err := json.Marshal(runRequest{Inputs: inputs, User: user, ResponseMode: responseMode})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/workflows/run", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dify run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("dify run: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed runResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("dify run: decode: %w", err)
	}

	result := &domain.EngineRunResult{
		Status:      parsed.Data.Status,
		Outputs:     parsed.Data.Outputs,
		TotalSteps:  parsed.Data.TotalSteps,
		TotalTokens: parsed.Data.TotalTokens,
		Error:       parsed.Data.Error,
	}
	c.logger.Info("workflow engine run finished",
		zap.String("status", result.Status),
		zap.Int("total_steps", result.TotalSteps),
		zap.Int("total_tokens", result.TotalTokens))
	return result, nil
}
