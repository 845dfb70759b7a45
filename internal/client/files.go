package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
	"github.com/mediaxsd-commits/stratcomjobsapp/internal/metrics"
)

// SubmitPDF uploads the file at path as the submission for a job. Unlike the
// JSON methods it sends multipart/form-data (field name "file") against
// POST /jobs/:id/submit.
func (c *Client) SubmitPDF(ctx context.Context, jobID, path string) (*domain.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Submit(ctx, jobID, filepath.Base(path), f)
}

// Submit uploads a submission from an arbitrary reader under the given file name.
func (c *Client) Submit(ctx context.Context, jobID, name string, r io.Reader) (*domain.Job, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, &APIError{Message: "build upload: " + err.Error()}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &APIError{Message: "read submission: " + err.Error()}
	}
	if err := mw.Close(); err != nil {
		return nil, &APIError{Message: "build upload: " + err.Error()}
	}

	endpoint := "/jobs/:id/submit"
	reqURL := c.baseURL + "/jobs/" + url.PathEscape(jobID) + "/submit"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return nil, &APIError{Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	res, err := c.send(req, http.MethodPost, endpoint)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, c.decodeError(res)
	}

	var job domain.Job
	if err := json.NewDecoder(res.Body).Decode(&job); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, &APIError{StatusCode: res.StatusCode, Message: "decode response: " + err.Error()}
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	return &job, nil
}

// DownloadSubmission fetches the binary submission of a job from
// GET /jobs/:id/download and writes it to dest. When dest is an existing
// directory the file name comes from the Content-Disposition header, with
// "<id>.pdf" as fallback. Returns the path written.
func (c *Client) DownloadSubmission(ctx context.Context, jobID, dest string) (string, error) {
	endpoint := "/jobs/:id/download"
	reqURL := c.baseURL + "/jobs/" + url.PathEscape(jobID) + "/download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", &APIError{Message: "build request: " + err.Error()}
	}
	c.authorize(req)

	res, err := c.send(req, http.MethodGet, endpoint)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return "", c.decodeError(res)
	}

	target := dest
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		target = filepath.Join(dest, downloadName(res, jobID))
	}

	out, err := os.Create(target)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	return target, nil
}

// downloadName extracts the server-suggested file name from
// Content-Disposition, defaulting to "<jobID>.pdf".
func downloadName(res *http.Response, jobID string) string {
	if cd := res.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := filepath.Base(params["filename"]); name != "." && name != "/" && name != "" {
				return name
			}
		}
	}
	return jobID + ".pdf"
}
