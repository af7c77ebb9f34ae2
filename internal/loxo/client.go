package loxo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Loxo applicant-tracking API for one agency.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, agencySlug, apiKey string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), agencySlug),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type ReferenceItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Job struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SyncResult is the outcome of publishing one intake form.
type SyncResult struct {
	Action    string `json:"action"` // created or updated
	JobID     int64  `json:"jobId"`
	CompanyID int64  `json:"companyId"`
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"Loxo API error: %s %s status=%d body=%s",
			method, path, resp.StatusCode, string(b),
		)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// JobTypes fetches the agency's job type reference list (Remote/Onsite/...).
// A failure degrades to an empty list; the transform just leaves job_type_id
// unset then.
func (c *Client) JobTypes(ctx context.Context) []ReferenceItem {
	var items []ReferenceItem
	if err := c.do(ctx, http.MethodGet, "/job_types", nil, &items); err != nil {
		log.Printf("Failed to fetch Loxo job types: %v", err)
		return nil
	}
	return items
}

func (c *Client) SearchCompanies(ctx context.Context, query string) ([]Company, error) {
	var companies []Company
	path := "/companies?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (c *Client) CreateCompany(ctx context.Context, payload CompanyPayload) (*Company, error) {
	var company Company
	if err := c.do(ctx, http.MethodPost, "/companies", payload, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// GetOrCreateCompany reuses an existing company when the name matches
// case-insensitively, otherwise creates one with the intake address.
func (c *Client) GetOrCreateCompany(ctx context.Context, company ClientCompany) (*Company, error) {
	existing, err := c.SearchCompanies(ctx, company.Name)
	if err != nil {
		// A failed search falls through to create, same as the lookup
		// returning nothing.
		log.Printf("Loxo company search failed: %v", err)
	}
	for _, candidate := range existing {
		if strings.EqualFold(candidate.Name, company.Name) {
			return &candidate, nil
		}
	}

	return c.CreateCompany(ctx, CompanyPayload{Company: CompanyFields{
		Name:    company.Name,
		Address: company.Address.Street,
		City:    company.Address.City,
		State:   company.Address.State,
		Zip:     company.Address.Zip,
		Country: company.Address.Country,
	}})
}

func (c *Client) CreateJob(ctx context.Context, payload JobPayload) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodPost, "/jobs", payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) UpdateJob(ctx context.Context, jobID int64, payload JobPayload) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/jobs/%d", jobID), payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) AddJobContact(ctx context.Context, jobID int64, payload JobContactPayload) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/contacts", jobID), payload, nil)
}

// SyncIntake publishes one intake form: resolves the company, builds the job
// payload and creates or updates the job depending on whether a Loxo job id
// is already attached. Contacts are only pushed for newly created jobs, and a
// contact failure never fails the sync.
func (c *Client) SyncIntake(ctx context.Context, data map[string]any, existingJobID, existingCompanyID *int64) (*SyncResult, error) {
	intake, err := DecodeIntake(data)
	if err != nil {
		return nil, fmt.Errorf("decode intake data: %w", err)
	}

	jobTypes := c.JobTypes(ctx)

	var companyID int64
	if existingCompanyID != nil {
		companyID = *existingCompanyID
	} else {
		company, err := c.GetOrCreateCompany(ctx, intake.ClientCompany)
		if err != nil {
			return nil, err
		}
		companyID = company.ID
	}

	payload := BuildJobPayload(intake, companyID, jobTypes)

	if existingJobID != nil {
		job, err := c.UpdateJob(ctx, *existingJobID, payload)
		if err != nil {
			return nil, err
		}
		return &SyncResult{Action: "updated", JobID: job.ID, CompanyID: companyID}, nil
	}

	job, err := c.CreateJob(ctx, payload)
	if err != nil {
		return nil, err
	}

	for _, contact := range intake.ClientCompany.Contacts {
		if contact.Name == "" {
			continue
		}
		if err := c.AddJobContact(ctx, job.ID, BuildJobContactPayload(contact)); err != nil {
			log.Printf("Failed to add job contact %q: %v", contact.Name, err)
		}
	}

	return &SyncResult{Action: "created", JobID: job.ID, CompanyID: companyID}, nil
}
