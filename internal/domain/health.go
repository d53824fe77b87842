package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// ClientMetrics is returned by GET /v1/metrics/client.
type ClientMetrics struct {
	TotalLoads        int64   `json:"totalLoads"`
	FailedLoads       int64   `json:"failedLoads"`
	SupersededLoads   int64   `json:"supersededLoads"`
	OptimisticReverts int64   `json:"optimisticReverts"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	ErrorRate         float64 `json:"errorRate"`
	Period            string  `json:"period"`
}
