package httpapi

import (
	"net/http"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := s.services.Auth.Login(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "Autenticación exitosa",
		Token:   token,
	})
}
