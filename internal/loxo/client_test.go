package loxo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoxo is an in-memory stand-in for the agency API. It records every
// request path so tests can assert on the call sequence.
type fakeLoxo struct {
	mu        sync.Mutex
	calls     []string
	companies []Company
	nextJobID int64
}

func (f *fakeLoxo) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
}

func (f *fakeLoxo) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLoxo) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /test-agency/job_types", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode([]ReferenceItem{
			{ID: 1, Name: "Onsite"},
			{ID: 2, Name: "Remote"},
		})
	})
	mux.HandleFunc("GET /test-agency/companies", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(f.companies)
	})
	mux.HandleFunc("POST /test-agency/companies", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var payload CompanyPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(Company{ID: 99, Name: payload.Company.Name})
	})
	mux.HandleFunc("POST /test-agency/jobs", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var payload JobPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		f.mu.Lock()
		f.nextJobID++
		id := f.nextJobID
		f.mu.Unlock()
		json.NewEncoder(w).Encode(Job{ID: id, Title: payload.Job.Title})
	})
	mux.HandleFunc("PUT /test-agency/jobs/42", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var payload JobPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(Job{ID: 42, Title: payload.Job.Title})
	})
	mux.HandleFunc("POST /test-agency/jobs/1/contacts", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusCreated)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, fake *fakeLoxo) *Client {
	server := fake.server(t)
	return NewClient(server.URL, "test-agency", "test-key")
}

func intakeData() map[string]any {
	return map[string]any{
		"jobTitle": "Senior Engineer",
		"clientCompany": map[string]any{
			"name": "Acme Corp",
			"contacts": []any{
				map[string]any{"name": "Sam Lee", "email": "sam@acme.com"},
			},
		},
		"workArrangement": "remote",
	}
}

func TestSyncIntake_CreatesCompanyJobAndContacts(t *testing.T) {
	fake := &fakeLoxo{}
	client := newTestClient(t, fake)

	result, err := client.SyncIntake(context.Background(), intakeData(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "created", result.Action)
	assert.Equal(t, int64(1), result.JobID)
	assert.Equal(t, int64(99), result.CompanyID)
	assert.Equal(t, []string{
		"GET /test-agency/job_types",
		"GET /test-agency/companies",
		"POST /test-agency/companies",
		"POST /test-agency/jobs",
		"POST /test-agency/jobs/1/contacts",
	}, fake.called())
}

func TestSyncIntake_ReusesMatchingCompany(t *testing.T) {
	fake := &fakeLoxo{companies: []Company{{ID: 7, Name: "ACME CORP"}}}
	client := newTestClient(t, fake)

	result, err := client.SyncIntake(context.Background(), intakeData(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.CompanyID)
	assert.NotContains(t, fake.called(), "POST /test-agency/companies")
}

func TestSyncIntake_UpdatesExistingJob(t *testing.T) {
	fake := &fakeLoxo{}
	client := newTestClient(t, fake)

	jobID := int64(42)
	companyID := int64(7)
	result, err := client.SyncIntake(context.Background(), intakeData(), &jobID, &companyID)

	require.NoError(t, err)
	assert.Equal(t, "updated", result.Action)
	assert.Equal(t, int64(42), result.JobID)
	assert.Equal(t, int64(7), result.CompanyID)

	calls := fake.called()
	assert.Contains(t, calls, "PUT /test-agency/jobs/42")
	// company resolution and contact pushes are skipped on resync
	assert.NotContains(t, calls, "GET /test-agency/companies")
	assert.NotContains(t, calls, "POST /test-agency/jobs/42/contacts")
}

func TestSyncIntake_ContactFailureDoesNotFailSync(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /test-agency/job_types", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]ReferenceItem{})
	})
	mux.HandleFunc("GET /test-agency/companies", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Company{{ID: 7, Name: "Acme Corp"}})
	})
	mux.HandleFunc("POST /test-agency/jobs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Job{ID: 1})
	})
	mux.HandleFunc("POST /test-agency/jobs/1/contacts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "contact rejected", http.StatusUnprocessableEntity)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-agency", "test-key")
	result, err := client.SyncIntake(context.Background(), intakeData(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "created", result.Action)
}

func TestSyncIntake_JobCreationFailureSurfacesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /test-agency/job_types", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]ReferenceItem{})
	})
	mux.HandleFunc("GET /test-agency/companies", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Company{{ID: 7, Name: "Acme Corp"}})
	})
	mux.HandleFunc("POST /test-agency/jobs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"title taken"}`, http.StatusUnprocessableEntity)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-agency", "test-key")
	_, err := client.SyncIntake(context.Background(), intakeData(), nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=422")
}

func TestDo_SendsBearerToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /test-agency/job_types", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]ReferenceItem{})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-agency", "test-key")
	client.JobTypes(context.Background())

	assert.Equal(t, "Bearer test-key", gotAuth)
}
