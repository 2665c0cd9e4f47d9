package api

type HealthDTO struct {
	Status  string   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`
}

type RandomKeyDTO struct {
	Role  string `json:"role"`
	Key   string `json:"key,omitempty"`
	Found bool   `json:"found"`
}

// StructureDTO describes a handle and the record behind it. TTL follows the
// store convention: -1 no expiry, -2 missing.
type StructureDTO struct {
	Kind             string `json:"kind"`
	Key              string `json:"key"`
	ConfiguredTTLSec int64  `json:"configured_ttl_s"`
	Pooled           bool   `json:"pooled"`
	Exists           bool   `json:"exists"`
	TTLSec           int64  `json:"ttl_s"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
