package httpapi

import (
	"fmt"
	"net/http"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Category:    q.Get("categoria"),
		Subcategory: q.Get("subcategoria"),
		Search:      q.Get("search"),
	}
	products, err := s.services.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := s.services.Catalog.CreateProduct(r.Context(), input)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleBulkCreateProducts(w http.ResponseWriter, r *http.Request) {
	var inputs []models.ProductInput
	if !decodeJSON(w, r, &inputs) {
		return
	}
	products, err := s.services.Catalog.CreateProducts(r.Context(), inputs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.BulkCreateResponse{
		Message:  fmt.Sprintf("Se crearon %d productos exitosamente", len(products)),
		Products: products,
		Count:    len(products),
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch models.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	product, err := s.services.Catalog.UpdateProduct(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Producto eliminado exitosamente"})
}
