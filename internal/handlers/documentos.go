package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// EditDocumentoHandler actualiza el estado de checklist de un documento del
// expediente: presentado, revisado, subsanación pendiente y anotaciones.
func (h *Handler) EditDocumentoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLicID(r)
	if !ok {
		http.Error(w, "Invalid licId", http.StatusBadRequest)
		return
	}
	docID, err := strconv.ParseInt(chi.URLParam(r, "docId"), 10, 64)
	if err != nil || docID <= 0 {
		http.Error(w, "Invalid docId", http.StatusBadRequest)
		return
	}

	var input struct {
		Presentado          *bool   `json:"presentado"`
		Revisado            *bool   `json:"revisado"`
		RequiereSubsanacion *bool   `json:"requiere_subsanacion"`
		Comentario          *string `json:"comentario"`
		RutaArchivo         *string `json:"ruta_archivo"`
		Responsable         *string `json:"responsable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	lic, err := h.Store.GetLicitacion(r.Context(), id)
	if err != nil {
		http.Error(w, "Licitacion not found", http.StatusNotFound)
		return
	}

	idx := -1
	for i := range lic.Documentos {
		if lic.Documentos[i].ID == docID {
			idx = i
			break
		}
	}
	if idx < 0 {
		http.Error(w, "Documento not found", http.StatusNotFound)
		return
	}

	doc := &lic.Documentos[idx]
	if input.Presentado != nil {
		doc.Presentado = *input.Presentado
	}
	if input.Revisado != nil {
		doc.Revisado = *input.Revisado
	}
	if input.RequiereSubsanacion != nil {
		doc.RequiereSubsanacion = *input.RequiereSubsanacion
	}
	if input.Comentario != nil {
		doc.Comentario = *input.Comentario
	}
	if input.RutaArchivo != nil {
		doc.RutaArchivo = *input.RutaArchivo
	}
	if input.Responsable != nil {
		doc.Responsable = *input.Responsable
	}

	if err := h.Store.UpdateLicitacion(r.Context(), lic); err != nil {
		http.Error(w, "Failed to update documento", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
