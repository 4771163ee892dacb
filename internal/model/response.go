package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type SessionData struct {
	Authenticated bool      `json:"authenticated"`
	User          *AuthUser `json:"user"`
}

type AdminSessionData struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}
