package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// Page wraps cursor-paginated list results. Next is empty on the last page.
type Page struct {
	Results interface{} `json:"results"`
	Next    string      `json:"next,omitempty"`
}
