package gateway

import "work-advisor/internal/models"

// wireRequest is the body sent to the prediction endpoint: the form fields plus the target.
type wireRequest struct {
	models.FormPayload
	CountryCode string `json:"country_code"`
	Location    string `json:"location,omitempty"`
}

// valueFields are checked in order for the predicted number.
var valueFields = []string{"prediction", "predicted_salary", "salary"}

const (
	ReasonTimeout   = "timeout"
	ReasonCancelled = "cancelled"
)
