package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

const (
	maxImageBytes = 10 * 1024 * 1024  // 10MB
	maxVideoBytes = 100 * 1024 * 1024 // 100MB
	maxReplyBytes = 1 * 1024 * 1024
)

// Client talks to the external inference service and fetches evidence media.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type filePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) postMultipart(ctx context.Context, endpoint string, parts []filePart) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.Field, p.Filename))
		h.Set("Content-Type", p.ContentType)
		fw, err := w.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(p.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

// download fetches one evidence item, enforcing the per-kind size limit.
func (c *Client) download(ctx context.Context, ev models.Evidence, field string) (filePart, error) {
	u, err := url.Parse(ev.URI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return filePart{}, fmt.Errorf("evidence uri %q is not an http(s) url", ev.URI)
	}

	limit := int64(maxImageBytes)
	if ev.Type == models.MediaVideo {
		limit = maxVideoBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return filePart{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return filePart{}, fmt.Errorf("download evidence: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return filePart{}, fmt.Errorf("download evidence: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return filePart{}, fmt.Errorf("download evidence: %w", err)
	}
	if int64(len(data)) > limit {
		return filePart{}, errors.New("evidence exceeds size limit")
	}
	if len(data) == 0 {
		return filePart{}, errors.New("evidence is empty")
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = string(ev.Type)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return filePart{Field: field, Filename: name, ContentType: contentType, Data: data}, nil
}

// validConfidence guards against classifiers returning scores outside [0,1].
func validConfidence(v float64) bool {
	return v >= 0 && v <= 1
}
