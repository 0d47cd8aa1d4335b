package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

// UploadResult is the minimal shape returned by POST /api/upload.
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// Upload sends a file as a raw multipart form. It bypasses the JSON
// wrapper and does its own minimal success/failure check. Without a
// token the Authorization header is omitted entirely, never sent with
// an empty credential.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	if filename == "" || r == nil {
		return UploadResult{}, apierror.NewValidation("filename and file content are required", nil)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, apierror.NewValidation("failed to build multipart form", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, apierror.NewValidation("failed to read file content", err)
	}
	if err := form.Close(); err != nil {
		return UploadResult{}, apierror.NewValidation("failed to finalize multipart form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return UploadResult{}, apierror.NewValidation("failed to build request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return UploadResult{}, apierror.NewTimeout("upload did not complete in time", err)
		}
		return UploadResult{}, apierror.NewNetworkUnreachable(
			fmt.Sprintf("cannot connect to backend at %s", c.baseURL), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, apierror.NewNetworkUnreachable("failed to read upload response", err)
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return UploadResult{}, apierror.NewMalformedResponse(string(raw), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := result.Message
		if msg == "" {
			msg = "upload failed"
		}
		return UploadResult{}, apierror.NewHTTP(resp.StatusCode, msg)
	}
	return result, nil
}
