package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// CSRFToken mirrors the X-CSRF-Token header for clients that echo the
	// token in the body too; verification reads the header.
	CSRFToken string `json:"csrfToken"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContentQuery struct {
	Page     int
	PageSize int
	Search   string
}
