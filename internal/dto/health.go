package dto

// HealthResponse is the envelope for the liveness and readiness probes
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
