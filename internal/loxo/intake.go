package loxo

import "encoding/json"

// Typed view of the intake payload. The collaboration engine stores the
// payload as an opaque document; this package is the one place that knows the
// field list, because the Loxo transform is field-by-field.

type ClientContact struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobilePhone"`
	OfficePhone string `json:"officePhone"`
	Notes       string `json:"notes"`
}

type CompanyAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type FeeStructure struct {
	FeePercents string `json:"feePercents"`
	FlatFees    string `json:"flatFees"`
	Terms       string `json:"terms"`
	RawString   string `json:"rawString"`
}

type ClientCompany struct {
	Name         string          `json:"name"`
	Address      CompanyAddress  `json:"address"`
	ContactName  string          `json:"contactName"`
	Contacts     []ClientContact `json:"contacts"`
	FeeStructure FeeStructure    `json:"feeStructure"`
}

type Compensation struct {
	SalaryMin   float64 `json:"salaryMin"`
	SalaryMax   float64 `json:"salaryMax"`
	SalaryRange string  `json:"salaryRange"`
	HourlyRate  float64 `json:"hourlyRate"`
	SalaryType  string  `json:"salaryType"` // hourly, annual, project
	Bonus       string  `json:"bonus"`
	Benefits    string  `json:"benefits"`
	Notes       string  `json:"notes"`
}

type SourcingCriteria struct {
	TargetCompanies    []string `json:"targetCompanies"`
	Employees          string   `json:"employees"`
	Competitors        string   `json:"competitors"`
	PersonalityTraits  string   `json:"personalityTraits"`
	DoNotTouch         string   `json:"doNotTouch"`
	DiscProfile        string   `json:"discProfile"`
	InternalCandidates string   `json:"internalCandidates"`
	Notes              string   `json:"notes"`
}

type RecruitingProcess struct {
	OtherSearchFirms     string `json:"otherSearchFirms"`
	MustHaveInterviewers string `json:"mustHaveInterviewers"`
	Notes                string `json:"notes"`
}

type Timeline struct {
	KeyMilestones               string `json:"keyMilestones"`
	CandidateSatisfactionSurvey string `json:"candidateSatisfactionSurvey"`
	CadenceOfCheckIns           string `json:"cadenceOfCheckIns"`
	TargetNPS                   string `json:"targetNPS"`
	Notes                       string `json:"notes"`
}

type WorkingTogether struct {
	LevelOfPriority               int    `json:"levelOfPriority"`
	ExpectedTurnaroundTime        string `json:"expectedTurnaroundTime"`
	FeedbackExpectations          string `json:"feedbackExpectations"`
	ClientTimePercentage          string `json:"clientTimePercentage"`
	PreferredStatusMethod         string `json:"preferredStatusMethod"`
	ClientExpectationForCandidates string `json:"clientExpectationForCandidates"`
	Notes                         string `json:"notes"`
}

type Completion struct {
	CompletionDate        string `json:"completionDate"`
	WhatWorked            string `json:"whatWorked"`
	LessonsLearned        string `json:"lessonsLearned"`
	WhatDidNotWork        string `json:"whatDidNotWork"`
	ActionsForImprovement string `json:"actionsForImprovement"`
	Notes                 string `json:"notes"`
}

type Intake struct {
	ClientCompany ClientCompany `json:"clientCompany"`
	MeetingDate   string        `json:"meetingDate"`

	JobTitle               string   `json:"jobTitle"`
	TargetCompanies        []string `json:"targetCompanies"`
	WorkArrangement        string   `json:"workArrangement"` // remote, onsite, hybrid
	WorkArrangementDetails string   `json:"workArrangementDetails"`
	TargetStartDate        string   `json:"targetStartDate"` // "ASAP" or ISO date
	ExperienceLevel        string   `json:"experienceLevel"`
	ReasonForHire          string   `json:"reasonForHire"`
	DirectManager          string   `json:"directManager"`
	SuccessCriteria        string   `json:"successCriteria"`
	Department             string   `json:"department"`
	SampleCareerTrajectory string   `json:"sampleCareerTrajectory"`
	ImpactIfNotFilled      string   `json:"impactIfNotFilled"`
	ImpactIfFilled         string   `json:"impactIfFilled"`

	JobOverview          string   `json:"jobOverview"`
	CoreResponsibilities string   `json:"coreResponsibilities"`
	RequiredSkills       []string `json:"requiredSkills"`
	NiceToHaveSkills     []string `json:"niceToHaveSkills"`
	IndustryExperience   string   `json:"industryExperience"`

	Compensation      Compensation      `json:"compensation"`
	SourcingCriteria  SourcingCriteria  `json:"sourcingCriteria"`
	RecruitingProcess RecruitingProcess `json:"recruitingProcess"`
	Timeline          Timeline          `json:"timeline"`
	WorkingTogether   WorkingTogether   `json:"workingTogether"`

	ImmediateActionItems string     `json:"immediateActionItems"`
	Completion           Completion `json:"completion"`
}

// DecodeIntake converts the opaque stored payload into the typed intake view.
// Unknown fields are dropped, missing ones zero out.
func DecodeIntake(data map[string]any) (*Intake, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var intake Intake
	if err := json.Unmarshal(raw, &intake); err != nil {
		return nil, err
	}
	return &intake, nil
}
