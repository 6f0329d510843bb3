package models

// These structs define the JSON payloads exchanged over the HTTP API.

// LoginRequest is the input for POST /auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is the output of POST /auth/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// ConfigEntry is the output of GET /config/{key}.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ConfigUpdateRequest is the input for POST /config.
type ConfigUpdateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SocialNetworkInput is one element of the POST /social-networks payload.
type SocialNetworkInput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

// BusinessGroupInput is one element of the POST /business-groups payload.
type BusinessGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// PDFUploadResponse is the output of POST /pdf/upload.
type PDFUploadResponse struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	Products        []CandidateProduct `json:"products"`
	TotalTextLength int                `json:"total_text_length"`
	Filename        string             `json:"filename"`
}

// SaveFailure describes one record of a bulk save that could not be persisted.
type SaveFailure struct {
	Index int    `json:"index"`
	Title string `json:"titulo"`
	Error string `json:"error"`
}

// SaveProductsResponse is the output of POST /pdf/save-products.
type SaveProductsResponse struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	SavedCount int           `json:"saved_count"`
	Products   []Product     `json:"products"`
	Failed     []SaveFailure `json:"failed,omitempty"`
}

// BulkCreateResponse is the output of POST /products/bulk.
type BulkCreateResponse struct {
	Message  string    `json:"message"`
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is written for every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// IngestReport is the JSON document written to the reports bucket after a
// bucket-triggered extraction.
type IngestReport struct {
	BatchID         string             `json:"batch_id"`
	Filename        string             `json:"filename"`
	TotalTextLength int                `json:"total_text_length"`
	Products        []CandidateProduct `json:"products"`
}
