package loxo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalaryRange(t *testing.T) {
	cases := []struct {
		input string
		min   string
		max   string
	}{
		{"$100K to $200K", "100000", "200000"},
		{"100k-150k", "100000", "150000"},
		{"90,000 - 120,000", "90000", "120000"},
		{"$90,000 to $120,000", "90000", "120000"},
		{"120 to 150", "120", "150"},
		{"competitive", "", ""},
		{"", "", ""},
	}

	for _, tc := range cases {
		min, max := parseSalaryRange(tc.input)
		assert.Equal(t, tc.min, min, "min for %q", tc.input)
		assert.Equal(t, tc.max, max, "max for %q", tc.input)
	}
}

func TestBuildJobPayload(t *testing.T) {
	intake := &Intake{
		JobTitle: "Senior Engineer",
		ClientCompany: ClientCompany{
			Name: "Acme Corp",
			Address: CompanyAddress{
				Street: "1 Main St",
				City:   "Austin",
				State:  "TX",
				Zip:    "78701",
			},
		},
		WorkArrangement: "remote",
		TargetStartDate: "ASAP",
		Compensation: Compensation{
			SalaryRange: "$100K to $150K",
			SalaryType:  "annual",
		},
		IndustryExperience: "Fintech",
	}
	jobTypes := []ReferenceItem{
		{ID: 1, Name: "Onsite"},
		{ID: 2, Name: "Remote"},
		{ID: 3, Name: "Hybrid"},
	}

	payload := BuildJobPayload(intake, 7, jobTypes)
	job := payload.Job

	assert.Equal(t, "Senior Engineer", job.Title)
	assert.Equal(t, int64(7), job.CompanyID)
	assert.Equal(t, "TX", job.StateCode)
	assert.Equal(t, "US", job.CountryCode)
	assert.Equal(t, int64(2), job.JobTypeID)
	assert.True(t, job.RemoteWorkAllowed)
	assert.Equal(t, "", job.OpenedAt, "ASAP start date leaves opened_at unset")
	assert.Equal(t, "100000", job.SalaryMin)
	assert.Equal(t, "150000", job.SalaryMax)
	assert.Equal(t, int64(salaryTypeAnnual), job.SalaryTypeID)
	assert.Equal(t, "Fintech", job.CustomText1)
}

func TestJobPayload_KeepsRemoteFlagWhenFalse(t *testing.T) {
	intake := &Intake{
		JobTitle:        "Office Manager",
		WorkArrangement: "onsite",
	}

	raw, err := json.Marshal(BuildJobPayload(intake, 1, nil))
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// an onsite job serializes remote_work_allowed: false rather than
	// dropping the key
	flag, present := decoded["job"]["remote_work_allowed"]
	assert.True(t, present)
	assert.Equal(t, false, flag)
}

func TestBuildJobPayload_HourlyAndNumericSalary(t *testing.T) {
	intake := &Intake{
		JobTitle: "Contractor",
		Compensation: Compensation{
			SalaryMin:  50,
			SalaryMax:  75,
			SalaryType: "hourly",
		},
	}

	job := BuildJobPayload(intake, 1, nil).Job

	assert.Equal(t, "50", job.SalaryMin)
	assert.Equal(t, "75", job.SalaryMax)
	assert.Equal(t, "50 - 75", job.Salary)
	assert.Equal(t, int64(salaryTypeHourly), job.SalaryTypeID)
	assert.Zero(t, job.JobTypeID)
}

func TestBuildJobDescription_SectionsAndEscaping(t *testing.T) {
	intake := &Intake{
		JobOverview:    "Build & ship <fast>",
		RequiredSkills: []string{"Go", "Postgres"},
	}

	desc := buildJobDescription(intake)

	assert.Contains(t, desc, "<h2>Overview</h2>")
	assert.Contains(t, desc, "Build &amp; ship &lt;fast&gt;")
	assert.Contains(t, desc, "<ul><li>Go</li><li>Postgres</li></ul>")
	assert.NotContains(t, desc, "<h2>Compensation</h2>")
}

func TestBuildInternalNotes_SkipsEmptySections(t *testing.T) {
	intake := &Intake{
		MeetingDate:   "2026-08-01",
		DirectManager: "Pat Doe",
		WorkingTogether: WorkingTogether{
			LevelOfPriority: 4,
		},
	}

	notes := buildInternalNotes(intake)

	assert.Contains(t, notes, "<h3>Intake Meeting</h3>")
	assert.Contains(t, notes, "<strong>Meeting Date:</strong> 2026-08-01")
	assert.Contains(t, notes, "<h3>Background</h3>")
	assert.Contains(t, notes, "<strong>Priority Level:</strong> 4/5")
	assert.NotContains(t, notes, "<h3>Sourcing Criteria</h3>")
	assert.NotContains(t, notes, "<h3>Completion</h3>")
}

func TestBuildJobContactPayload(t *testing.T) {
	contact := ClientContact{
		Name:        "Sam Lee",
		Email:       "sam@acme.com",
		MobilePhone: "555-0100",
		OfficePhone: "555-0200",
		Notes:       "VP Engineering",
	}

	payload := BuildJobContactPayload(contact).JobContact

	assert.Equal(t, "Sam Lee", payload.Name)
	assert.Equal(t, "VP Engineering", payload.Title)
	assert.Equal(t, []ContactEmail{{Value: "sam@acme.com"}}, payload.Emails)
	assert.Equal(t, []ContactPhone{
		{Value: "555-0100", PhoneTypeID: 1},
		{Value: "555-0200", PhoneTypeID: 2},
	}, payload.Phones)
}

func TestBuildJobContactPayload_OmitsEmptyChannels(t *testing.T) {
	payload := BuildJobContactPayload(ClientContact{Name: "Sam Lee"}).JobContact

	assert.Empty(t, payload.Emails)
	assert.Empty(t, payload.Phones)
}

func TestEscapeHTML(t *testing.T) {
	got := escapeHTML("a < b & c > d\n\"quoted\" 'single'")

	assert.Equal(t, "a &lt; b &amp; c &gt; d<br/>&quot;quoted&quot; &#039;single&#039;", got)
}
