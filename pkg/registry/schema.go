// pkg/registry/schema.go
package registry

import (
	"encoding/json"
	"fmt"

	"mock-data-forge/internal/common/validation"
)

// ActivityRegistry describes the job types the worker manager can serve.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Tags                 []string               `json:"tags"`
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputValidator compiles the activity's input schema. An activity without
// one yields a nil validator.
func (a *Activity) InputValidator() (*validation.Validator, error) {
	if len(a.InputSchema) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(a.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", a.ID, err)
	}
	v, err := validation.Compile(string(data))
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", a.ID, err)
	}
	return v, nil
}
