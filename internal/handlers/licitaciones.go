package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"licitaciones/models"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams parsea limit y offset del query, con defaults y topes.
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 20, Offset: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}

func parseLicID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "licId"), 10, 64)
	return id, err == nil && id > 0
}

// GetLicitacionesHandler lista licitaciones, con filtro opcional por estado.
func (h *Handler) GetLicitacionesHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	estado := r.URL.Query().Get("estado")

	lics, err := h.Store.GetLicitaciones(r.Context(), estado, params.Limit, params.Offset)
	if err != nil {
		http.Error(w, "Failed to get licitaciones", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lics)
}

// GetLicitacionHandler devuelve una licitación con su grafo completo.
func (h *Handler) GetLicitacionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLicID(r)
	if !ok {
		http.Error(w, "Invalid licId", http.StatusBadRequest)
		return
	}

	lic, err := h.Store.GetLicitacion(r.Context(), id)
	if err != nil {
		http.Error(w, "Licitacion not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lic)
}

// EditLicitacionHandler aplica cambios parciales sobre la cabecera del
// proceso; el grafo anidado se edita con sus endpoints propios.
func (h *Handler) EditLicitacionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLicID(r)
	if !ok {
		http.Error(w, "Invalid licId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		NombreProceso       *string  `json:"nombre_proceso"`
		NumeroProceso       *string  `json:"numero_proceso"`
		Institucion         *string  `json:"institucion"`
		AdjudicadaA         *string  `json:"adjudicada_a"`
		Adjudicada          *bool    `json:"adjudicada"`
		Ganada              *bool    `json:"ganada"`
		DocsCompletosManual *bool    `json:"docs_completos_manual"`
		EmpresasNuestras    []string `json:"empresas_nuestras"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	lic, err := h.Store.GetLicitacion(r.Context(), id)
	if err != nil {
		http.Error(w, "Licitacion not found", http.StatusNotFound)
		return
	}

	if input.NombreProceso != nil {
		lic.NombreProceso = *input.NombreProceso
	}
	if input.NumeroProceso != nil {
		lic.NumeroProceso = *input.NumeroProceso
	}
	if input.Institucion != nil {
		lic.Institucion = *input.Institucion
	}
	if input.AdjudicadaA != nil {
		lic.AdjudicadaA = *input.AdjudicadaA
	}
	if input.Adjudicada != nil {
		lic.Adjudicada = *input.Adjudicada
	}
	if input.Ganada != nil {
		lic.Ganada = input.Ganada
	}
	if input.DocsCompletosManual != nil {
		lic.DocsCompletosManual = *input.DocsCompletosManual
	}
	if input.EmpresasNuestras != nil {
		lic.EmpresasNuestras = input.EmpresasNuestras
	}

	if err := h.Store.UpdateLicitacion(r.Context(), lic); err != nil {
		http.Error(w, "Failed to update licitacion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lic)
}

// ChangeEstadoHandler cambia el estado crudo del proceso. El estado es texto
// libre de categoría; solo se exige no vacío.
func (h *Handler) ChangeEstadoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLicID(r)
	if !ok {
		http.Error(w, "Invalid licId", http.StatusBadRequest)
		return
	}

	estado := r.URL.Query().Get("estado")
	if estado == "" {
		http.Error(w, "Missing estado", http.StatusBadRequest)
		return
	}

	lic, err := h.Store.GetLicitacion(r.Context(), id)
	if err != nil {
		http.Error(w, "Licitacion not found", http.StatusNotFound)
		return
	}

	lic.Estado = estado
	if err := h.Store.UpdateLicitacion(r.Context(), lic); err != nil {
		http.Error(w, "Failed to update estado", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lic)
}

// DeleteLicitacionHandler elimina el proceso y todo su grafo.
func (h *Handler) DeleteLicitacionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLicID(r)
	if !ok {
		http.Error(w, "Invalid licId", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteLicitacion(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete licitacion", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceOferentesHandler reemplaza la lista completa de competidores.
func (h *Handler) ReplaceOferentesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLicID(r)
	if !ok {
		http.Error(w, "Invalid licId", http.StatusBadRequest)
		return
	}

	var oferentes []models.Oferente
	if err := json.NewDecoder(r.Body).Decode(&oferentes); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	lic, err := h.Store.GetLicitacion(r.Context(), id)
	if err != nil {
		http.Error(w, "Licitacion not found", http.StatusNotFound)
		return
	}

	lic.Oferentes = oferentes
	if err := h.Store.UpdateLicitacion(r.Context(), lic); err != nil {
		http.Error(w, "Failed to update oferentes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lic)
}
