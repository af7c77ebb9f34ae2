package loxo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Salary type ids in Loxo: 1 = Annual, 2 = Hourly.
const (
	salaryTypeAnnual = 1
	salaryTypeHourly = 2
)

type JobFields struct {
	Title             string `json:"title"`
	CompanyID         int64  `json:"company_id"`
	Description       string `json:"description,omitempty"`
	Address           string `json:"address,omitempty"`
	City              string `json:"city,omitempty"`
	StateCode         string `json:"state_code,omitempty"`
	Zip               string `json:"zip,omitempty"`
	CountryCode       string `json:"country_code,omitempty"`
	JobTypeID         int64  `json:"job_type_id,omitempty"`
	RemoteWorkAllowed bool   `json:"remote_work_allowed"`
	OpenedAt          string `json:"opened_at,omitempty"`
	Salary            string `json:"salary,omitempty"`
	SalaryMin         string `json:"salary_min,omitempty"`
	SalaryMax         string `json:"salary_max,omitempty"`
	SalaryTypeID      int64  `json:"salary_type_id,omitempty"`
	InternalNotes     string `json:"internal_notes,omitempty"`
	CustomText1       string `json:"custom_text_1,omitempty"`
}

type JobPayload struct {
	Job JobFields `json:"job"`
}

type CompanyFields struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

type CompanyPayload struct {
	Company CompanyFields `json:"company"`
}

type ContactEmail struct {
	Value       string `json:"value"`
	EmailTypeID int64  `json:"email_type_id,omitempty"`
}

type ContactPhone struct {
	Value       string `json:"value"`
	PhoneTypeID int64  `json:"phone_type_id,omitempty"`
}

type JobContactFields struct {
	Name             string         `json:"name"`
	Title            string         `json:"title,omitempty"`
	Emails           []ContactEmail `json:"emails,omitempty"`
	Phones           []ContactPhone `json:"phones,omitempty"`
	JobContactTypeID int64          `json:"job_contact_type_id,omitempty"`
}

type JobContactPayload struct {
	JobContact JobContactFields `json:"job_contact"`
}

// BuildJobPayload maps the intake form onto a Loxo job. Public-facing fields
// go into the HTML description; everything the client should not see lands in
// internal_notes.
func BuildJobPayload(intake *Intake, companyID int64, jobTypes []ReferenceItem) JobPayload {
	addr := intake.ClientCompany.Address

	salaryMin, salaryMax := parseSalaryRange(intake.Compensation.SalaryRange)
	if salaryMin == "" && intake.Compensation.SalaryMin > 0 {
		salaryMin = strconv.FormatFloat(intake.Compensation.SalaryMin, 'f', -1, 64)
		if intake.Compensation.SalaryMax > 0 {
			salaryMax = strconv.FormatFloat(intake.Compensation.SalaryMax, 'f', -1, 64)
		}
	}

	salary := intake.Compensation.SalaryRange
	if salary == "" && salaryMin != "" {
		salary = fmt.Sprintf("%s - %s", salaryMin, salaryMax)
	}

	salaryType := int64(salaryTypeAnnual)
	if intake.Compensation.SalaryType == "hourly" {
		salaryType = salaryTypeHourly
	}

	openedAt := intake.TargetStartDate
	if openedAt == "ASAP" {
		openedAt = ""
	}

	country := addr.Country
	if country == "" {
		country = "US"
	}

	return JobPayload{Job: JobFields{
		Title:             intake.JobTitle,
		CompanyID:         companyID,
		Description:       buildJobDescription(intake),
		Address:           addr.Street,
		City:              addr.City,
		StateCode:         addr.State, // Loxo uses state_code, not state
		Zip:               addr.Zip,
		CountryCode:       country,
		JobTypeID:         mapWorkArrangementToJobType(intake.WorkArrangement, jobTypes),
		RemoteWorkAllowed: intake.WorkArrangement == "remote",
		OpenedAt:          openedAt,
		Salary:            salary,
		SalaryMin:         salaryMin,
		SalaryMax:         salaryMax,
		SalaryTypeID:      salaryType,
		InternalNotes:     buildInternalNotes(intake),
		CustomText1:       intake.IndustryExperience,
	}}
}

// BuildJobContactPayload turns one client contact into a Loxo job contact.
func BuildJobContactPayload(contact ClientContact) JobContactPayload {
	fields := JobContactFields{
		Name:  contact.Name,
		Title: contact.Notes,
	}
	if contact.Email != "" {
		fields.Emails = append(fields.Emails, ContactEmail{Value: contact.Email})
	}
	if contact.MobilePhone != "" {
		fields.Phones = append(fields.Phones, ContactPhone{Value: contact.MobilePhone, PhoneTypeID: 1}) // 1 = Mobile
	}
	if contact.OfficePhone != "" {
		fields.Phones = append(fields.Phones, ContactPhone{Value: contact.OfficePhone, PhoneTypeID: 2}) // 2 = Office
	}
	return JobContactPayload{JobContact: fields}
}

var salaryRangePattern = regexp.MustCompile(`(?i)\$?([\d,]+)K?\s*(?:to|-)\s*\$?([\d,]+)K?`)

// parseSalaryRange understands strings like "$100K to $200K" or
// "90,000 - 120,000". Returns empty strings when nothing parses.
func parseSalaryRange(rangeStr string) (string, string) {
	if rangeStr == "" {
		return "", ""
	}
	m := salaryRangePattern.FindStringSubmatch(rangeStr)
	if m == nil {
		return "", ""
	}
	thousands := strings.Contains(strings.ToUpper(rangeStr), "K")
	min, err1 := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	max, err2 := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	if err1 != nil || err2 != nil {
		return "", ""
	}
	if thousands {
		min *= 1000
		max *= 1000
	}
	return strconv.Itoa(min), strconv.Itoa(max)
}

var workArrangementTerms = map[string][]string{
	"remote": {"remote", "work from home", "wfh"},
	"onsite": {"onsite", "on-site", "in office", "in-office"},
	"hybrid": {"hybrid", "flex", "flexible"},
}

func mapWorkArrangementToJobType(arrangement string, jobTypes []ReferenceItem) int64 {
	terms := workArrangementTerms[arrangement]
	for _, jt := range jobTypes {
		name := strings.ToLower(jt.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				return jt.ID
			}
		}
	}
	return 0
}

func buildJobDescription(intake *Intake) string {
	var sections []string

	if intake.JobOverview != "" {
		sections = append(sections, "<h2>Overview</h2>\n<p>"+escapeHTML(intake.JobOverview)+"</p>")
	}
	if intake.CoreResponsibilities != "" {
		sections = append(sections, "<h2>Core Responsibilities</h2>\n<p>"+escapeHTML(intake.CoreResponsibilities)+"</p>")
	}
	if len(intake.RequiredSkills) > 0 {
		sections = append(sections, "<h2>Required Skills</h2>\n"+htmlList(intake.RequiredSkills))
	}
	if len(intake.NiceToHaveSkills) > 0 {
		sections = append(sections, "<h2>Nice-to-Have Skills</h2>\n"+htmlList(intake.NiceToHaveSkills))
	}
	if intake.IndustryExperience != "" {
		sections = append(sections, "<h2>Industry Experience</h2>\n<p>"+escapeHTML(intake.IndustryExperience)+"</p>")
	}
	if intake.SampleCareerTrajectory != "" {
		sections = append(sections, "<h2>Ideal Candidate Profile</h2>\n<p>"+escapeHTML(intake.SampleCareerTrajectory)+"</p>")
	}
	if intake.Department != "" {
		sections = append(sections, "<h2>Team/Department</h2>\n<p>"+escapeHTML(intake.Department)+"</p>")
	}
	if intake.Compensation.SalaryRange != "" {
		sections = append(sections, "<h2>Compensation</h2>\n<p>Salary Range: "+escapeHTML(intake.Compensation.SalaryRange)+"</p>")
	}

	return strings.Join(sections, "\n")
}

// noteSection accumulates "<strong>Label:</strong> value" lines under one
// heading, skipping empty values.
type noteSection struct {
	heading string
	lines   []string
}

func (s *noteSection) add(label, value string) {
	if value == "" {
		return
	}
	s.lines = append(s.lines, "<p><strong>"+label+":</strong> "+escapeHTML(value)+"</p>")
}

func (s *noteSection) render() string {
	if len(s.lines) == 0 {
		return ""
	}
	return "<h3>" + s.heading + "</h3>" + strings.Join(s.lines, "")
}

func buildInternalNotes(intake *Intake) string {
	var sections []string
	push := func(s *noteSection) {
		if rendered := s.render(); rendered != "" {
			sections = append(sections, rendered)
		}
	}

	meeting := &noteSection{heading: "Intake Meeting"}
	meeting.add("Meeting Date", intake.MeetingDate)
	meeting.add("Client Contact", intake.ClientCompany.ContactName)
	meeting.add("Fee Structure", intake.ClientCompany.FeeStructure.RawString)
	push(meeting)

	background := &noteSection{heading: "Background"}
	background.add("Direct Manager", intake.DirectManager)
	background.add("Experience Level", intake.ExperienceLevel)
	background.add("Work Arrangement", intake.WorkArrangementDetails)
	background.add("Reason for Hire", intake.ReasonForHire)
	background.add("Success Criteria", intake.SuccessCriteria)
	background.add("Department", intake.Department)
	background.add("Ideal Candidate", intake.SampleCareerTrajectory)
	background.add("Impact if Not Filled", intake.ImpactIfNotFilled)
	background.add("Impact if Filled", intake.ImpactIfFilled)
	push(background)

	sourcing := &noteSection{heading: "Sourcing Criteria"}
	sourcing.add("Target Companies", strings.Join(intake.TargetCompanies, ", "))
	sourcing.add("Employees", intake.SourcingCriteria.Employees)
	sourcing.add("Competitors", intake.SourcingCriteria.Competitors)
	sourcing.add("Personality Traits/Core Values", intake.SourcingCriteria.PersonalityTraits)
	sourcing.add("Do Not Touch", intake.SourcingCriteria.DoNotTouch)
	sourcing.add("DISC/IP Profile", intake.SourcingCriteria.DiscProfile)
	sourcing.add("Internal Candidates", intake.SourcingCriteria.InternalCandidates)
	sourcing.add("Sourcing Notes", intake.SourcingCriteria.Notes)
	push(sourcing)

	comp := &noteSection{heading: "Compensation"}
	comp.add("Salary Range", intake.Compensation.SalaryRange)
	comp.add("Bonus", intake.Compensation.Bonus)
	comp.add("Benefits", intake.Compensation.Benefits)
	comp.add("Comp Notes", intake.Compensation.Notes)
	push(comp)

	recruiting := &noteSection{heading: "Recruiting Process"}
	recruiting.add("Other Search Firms", intake.RecruitingProcess.OtherSearchFirms)
	recruiting.add("Must-Have Interviewers", intake.RecruitingProcess.MustHaveInterviewers)
	recruiting.add("Recruiting Notes", intake.RecruitingProcess.Notes)
	push(recruiting)

	timeline := &noteSection{heading: "Timeline"}
	timeline.add("Key Milestones", intake.Timeline.KeyMilestones)
	timeline.add("Check-In Cadence", intake.Timeline.CadenceOfCheckIns)
	timeline.add("Candidate Survey", intake.Timeline.CandidateSatisfactionSurvey)
	timeline.add("Target NPS", intake.Timeline.TargetNPS)
	timeline.add("Timeline Notes", intake.Timeline.Notes)
	push(timeline)

	working := &noteSection{heading: "Working Together"}
	if intake.WorkingTogether.LevelOfPriority > 0 {
		working.lines = append(working.lines,
			fmt.Sprintf("<p><strong>Priority Level:</strong> %d/5</p>", intake.WorkingTogether.LevelOfPriority))
	}
	working.add("Expected Turnaround", intake.WorkingTogether.ExpectedTurnaroundTime)
	working.add("Feedback Expectations", intake.WorkingTogether.FeedbackExpectations)
	working.add("Client Time %", intake.WorkingTogether.ClientTimePercentage)
	working.add("Preferred Status Method", intake.WorkingTogether.PreferredStatusMethod)
	working.add("Candidate Expectations", intake.WorkingTogether.ClientExpectationForCandidates)
	working.add("Working Together Notes", intake.WorkingTogether.Notes)
	push(working)

	next := &noteSection{heading: "Next Steps"}
	next.add("Immediate Action Items", intake.ImmediateActionItems)
	push(next)

	completion := &noteSection{heading: "Completion"}
	completion.add("Completion Date", intake.Completion.CompletionDate)
	completion.add("What Worked", intake.Completion.WhatWorked)
	completion.add("Lessons Learned", intake.Completion.LessonsLearned)
	completion.add("What Did Not Work", intake.Completion.WhatDidNotWork)
	completion.add("Actions for Improvement", intake.Completion.ActionsForImprovement)
	completion.add("Completion Notes", intake.Completion.Notes)
	push(completion)

	return strings.Join(sections, "\n\n")
}

func htmlList(items []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>" + escapeHTML(item) + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
	"\n", "<br/>",
)

func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
