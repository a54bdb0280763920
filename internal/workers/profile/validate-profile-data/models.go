// internal/workers/profile/validate-profile-data/models.go
package validateprofiledata

import "venture-workers/internal/common/validation"

type Input struct {
	ProfileType string                 `json:"profileType"`
	ProfileData map[string]interface{} `json:"profileData"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ProfileType      string                       `json:"profileType"`
	ValidatedData    map[string]interface{}       `json:"validatedData,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors,omitempty"`
}
