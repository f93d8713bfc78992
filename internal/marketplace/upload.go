package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/tidwall/gjson"
)

// uploadField is the multipart form field name the upload endpoint expects.
const uploadField = "image"

// UploadImage sends an image as multipart form data and returns the stored
// path reported by the API.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(uploadField, filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := c.authorize(req, true); err != nil {
		return "", err
	}

	raw, err := c.do(req, "/upload")
	if err != nil {
		return "", err
	}

	// The upload endpoint has answered with {result: {path}}, {result: "..."}
	// and {path: "..."} over time.
	for _, key := range []string{"result.path", "result", "path"} {
		if v := gjson.GetBytes(raw, key); v.Type == gjson.String && v.String() != "" {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("upload response carried no stored path")
}
