package domain

// ============================================================
// Health & generic API response wrappers
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status  string `json:"status"` // healthy, degraded
	Version string `json:"version,omitempty"`
}

// APIResponse is the envelope every endpoint responds with.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps paginated list results.
type ListResponse[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}
