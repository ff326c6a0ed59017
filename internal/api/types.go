package api

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserEmail   string `json:"userEmail"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email   string `json:"email"`
	PinCode string `json:"pin_code"`
}

// ResetRequest is the body of POST /reset-password.
type ResetRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// File is one upload. Only Name and Type outlive the request.
type File struct {
	Name string
	Type string
	Data []byte
}

// UploadResponse is the body returned by POST /chat/upload/{email}.
type UploadResponse struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by GET /chat/create.
type ChatResponse struct {
	Responses []string `json:"responses"`
}
