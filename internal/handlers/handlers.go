package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"licitaciones/models"
)

// Handler envuelve el Storage para exponer la API.
type Handler struct {
	Store StorageInterface
}

// NewHandler crea un nuevo Handler.
func NewHandler(store StorageInterface) *Handler {
	return &Handler{Store: store}
}

// PingHandler responde "ok" para chequear el servidor.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// CreateLicitacionHandler procesa POST /api/licitaciones/new.
func (h *Handler) CreateLicitacionHandler(w http.ResponseWriter, r *http.Request) {
	// Límite de tamaño del cuerpo para evitar abusos
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var lic models.Licitacion
	if err := json.Unmarshal(body, &lic); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateLicitacionRequest(&lic); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if lic.Estado == "" {
		lic.Estado = "Iniciada"
	}
	// Números de lote siempre en forma canónica al entrar al sistema
	for i := range lic.Lotes {
		lic.Lotes[i].Numero = models.NormalizeLoteNumero(lic.Lotes[i].Numero)
	}

	if err := h.Store.CreateLicitacion(r.Context(), &lic); err != nil {
		http.Error(w, "Failed to create licitacion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(lic)
}

// validateLicitacionRequest verifica los campos mínimos de un alta.
func validateLicitacionRequest(l *models.Licitacion) error {
	if l.NombreProceso == "" || len(l.NombreProceso) > 200 {
		return errors.New("nombre_proceso is required and max length 200")
	}
	if len(l.NumeroProceso) > 100 {
		return errors.New("numero_proceso max length 100")
	}
	seen := make(map[string]bool, len(l.Lotes))
	for _, lote := range l.Lotes {
		num := models.NormalizeLoteNumero(lote.Numero)
		if num == "" {
			return errors.New("every lote needs a numero")
		}
		if seen[num] {
			return errors.New("lote numero duplicated: " + num)
		}
		seen[num] = true
		if lote.MontoBase < 0 || lote.MontoBasePersonal < 0 || lote.MontoOfertado < 0 {
			return errors.New("lote amounts must be non-negative")
		}
	}
	return nil
}
