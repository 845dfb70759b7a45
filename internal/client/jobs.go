package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
)

type CreateJobInput struct {
	Title       string             `json:"title"       validate:"required"`
	Description string             `json:"description" validate:"required"`
	Fee         float64            `json:"fee"         validate:"required,gt=0"`
	Priority    domain.JobPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
}

type UpdateJobInput struct {
	Title       string             `json:"title"       validate:"required"`
	Description string             `json:"description" validate:"required"`
	Fee         float64            `json:"fee"         validate:"required,gt=0"`
	Priority    domain.JobPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
}

// JobFilter narrows ListJobs via query parameters. Zero values mean "all".
type JobFilter struct {
	Status   domain.JobStatus
	Priority domain.JobPriority
	Search   string
}

func (f JobFilter) query() string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListJobs fetches jobs from GET /jobs, optionally filtered.
func (c *Client) ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	var jobs []domain.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", "/jobs"+filter.query(), nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob fetches a single job from GET /jobs/:id.
func (c *Client) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/:id", "/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob posts a new job to POST /jobs.
func (c *Client) CreateJob(ctx context.Context, in CreateJobInput) (*domain.Job, error) {
	if err := c.validate.Check(in); err != nil {
		return nil, err
	}
	var job domain.Job
	if err := c.do(ctx, http.MethodPost, "/jobs", "/jobs", in, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob replaces a job's mutable fields via PUT /jobs/:id.
func (c *Client) UpdateJob(ctx context.Context, id string, in UpdateJobInput) (*domain.Job, error) {
	if err := c.validate.Check(in); err != nil {
		return nil, err
	}
	var job domain.Job
	if err := c.do(ctx, http.MethodPut, "/jobs/:id", "/jobs/"+url.PathEscape(id), in, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob removes a job via DELETE /jobs/:id.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/jobs/:id", "/jobs/"+url.PathEscape(id), nil, nil)
}

// ClaimJob takes ownership of an open job via POST /jobs/:id/claim.
func (c *Client) ClaimJob(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodPost, "/jobs/:id/claim", "/jobs/"+url.PathEscape(id)+"/claim", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

type statusRequest struct {
	Status domain.JobStatus `json:"status"`
}

// UpdateJobStatus moves a job to a new status via POST /jobs/:id/status.
// The transition itself is enforced server-side.
func (c *Client) UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error) {
	var job domain.Job
	err := c.do(ctx, http.MethodPost, "/jobs/:id/status", "/jobs/"+url.PathEscape(id)+"/status", statusRequest{Status: status}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
