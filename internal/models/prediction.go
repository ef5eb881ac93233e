// internal/models/prediction.go
package models

import "strings"

// FormPayload carries the job, post and education facts shared by every request of a batch.
type FormPayload struct {
	JobTitle            string   `json:"job_title"`
	JobDescription      string   `json:"job_description,omitempty"`
	Query               string   `json:"query,omitempty"`
	SoftSkills          []string `json:"soft_skills,omitempty"`
	HardSkills          []string `json:"hard_skills,omitempty"`
	LocationFlexibility string   `json:"location_flexibility,omitempty"`
	ContractType        string   `json:"contract_type,omitempty"`
	EducationLevel      string   `json:"education_level,omitempty"`
	Seniority           string   `json:"seniority,omitempty"`
	MinYearsExperience  float64  `json:"min_years_experience"`
	FieldOfStudy        []string `json:"field_of_study,omitempty"`
}

type RegionSelection struct {
	RegionCode string   `json:"regionCode"`
	Locations  []string `json:"locations"`
}

// PredictionRequest is one atomic unit of a batch. An empty SubLocation targets the whole region.
type PredictionRequest struct {
	RegionCode  string      `json:"regionCode"`
	SubLocation string      `json:"subLocation,omitempty"`
	Payload     FormPayload `json:"payload"`
}

// Key is the identity of the request within its batch.
func (r PredictionRequest) Key() string {
	return IdentityKey(r.RegionCode, r.SubLocation)
}

func IdentityKey(regionCode, subLocation string) string {
	if strings.TrimSpace(subLocation) == "" {
		return regionCode
	}
	return regionCode + "-" + subLocation
}

type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is either a success with a value and timings or a failure with a reason.
type Outcome struct {
	Kind               OutcomeKind `json:"kind"`
	Value              float64     `json:"value,omitempty"`
	DurationMs         int64       `json:"durationMs,omitempty"`
	RelativeDurationMs int64       `json:"relativeDurationMs,omitempty"`
	Reason             string      `json:"reason,omitempty"`
}

func Success(value float64) Outcome {
	return Outcome{Kind: OutcomeSuccess, Value: value}
}

func Failure(reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason}
}

func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}
