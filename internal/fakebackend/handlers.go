package fakebackend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserName string `json:"userName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.UserName == "" || payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	email := normalize(payload.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		respondError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.users[email] = &user{userName: payload.UserName, email: email, password: hashPassword(payload.Password)}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	email := normalize(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok || !u.checkPassword(password) {
		respondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := s.issueToken(u.email)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	first, last := splitName(u.userName)
	respondJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
		"userEmail":    u.email,
		"firstName":    first,
		"lastName":     last,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalize(payload.Email)

	pin, err := newPin()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not generate OTP")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	u.verified = false
	s.otps[email] = pin
	s.logger.Info("otp issued", zap.String("email", email), zap.String("pin", pin))

	respondJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to your email"})
}

func (s *Server) handlePinVerification(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email   string `json:"email"`
		PinCode string `json:"pin_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalize(payload.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	pin, ok := s.otps[email]
	if !ok || pin != payload.PinCode {
		respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	if u, ok := s.users[email]; ok {
		u.verified = true
	}
	delete(s.otps, email)

	respondJSON(w, http.StatusOK, map[string]string{"message": "OTP verified"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email           string `json:"email"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.NewPassword != payload.ConfirmPassword {
		respondError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[normalize(payload.Email)]
	if !ok || !u.verified {
		respondError(w, http.StatusBadRequest, "OTP not verified")
		return
	}
	u.password = hashPassword(payload.NewPassword)
	u.verified = false

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	email := normalize(chi.URLParam(r, "email"))
	if email != subjectFrom(r.Context()) {
		respondError(w, http.StatusForbidden, "Not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "too large")
			return
		}
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		respondError(w, http.StatusBadRequest, "Could not read file")
		return
	}

	s.mu.Lock()
	s.uploads[email] = append(s.uploads[email], header.Filename)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{"message": "File " + header.Filename + " uploaded successfully"})
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	email := normalize(r.URL.Query().Get("email"))
	prompt := r.URL.Query().Get("prompt")
	if email != subjectFrom(r.Context()) {
		respondError(w, http.StatusForbidden, "Not allowed")
		return
	}
	if prompt == "" {
		respondError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	s.mu.Lock()
	s.history[email] = append(s.history[email], prompt)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string][]string{"responses": s.respond(email, prompt)})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	email := normalize(chi.URLParam(r, "email"))
	if email != subjectFrom(r.Context()) {
		respondError(w, http.StatusForbidden, "Not allowed")
		return
	}

	s.mu.Lock()
	delete(s.history, email)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
