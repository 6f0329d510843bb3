package httpapi

import (
	"net/http"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	entry, err := s.services.SiteConfig.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req models.ConfigUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := s.services.SiteConfig.Set(r.Context(), req.Key, req.Value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleListSocialNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := s.services.Storefront.SocialNetworks(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, networks)
}

func (s *Server) handleReplaceSocialNetworks(w http.ResponseWriter, r *http.Request) {
	var inputs []models.SocialNetworkInput
	if !decodeJSON(w, r, &inputs) {
		return
	}
	if _, err := s.services.Storefront.ReplaceSocialNetworks(r.Context(), inputs); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Redes sociales actualizadas exitosamente"})
}

func (s *Server) handleListBusinessGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.services.Storefront.BusinessGroups(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleReplaceBusinessGroups(w http.ResponseWriter, r *http.Request) {
	var inputs []models.BusinessGroupInput
	if !decodeJSON(w, r, &inputs) {
		return
	}
	if _, err := s.services.Storefront.ReplaceBusinessGroups(r.Context(), inputs); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Grupos de negocio actualizados exitosamente"})
}
