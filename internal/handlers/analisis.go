package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"licitaciones/internal/cronograma"
	"licitaciones/internal/kpi"
	"licitaciones/internal/paquetes"
	"licitaciones/internal/status"
)

// AnalisisPaquetes agrupa los dos paquetes hipotéticos de adjudicación.
type AnalisisPaquetes struct {
	PaqueteIndividual paquetes.PaqueteIndividual `json:"paquete_individual"`
	PaqueteCompleto   *paquetes.PaqueteCompleto  `json:"paquete_completo"`
}

// ResumenLicitacion es la vista calculada de un proceso: totales, diferencia
// contra el presupuesto, avance documental, categoría y próximo vencimiento.
type ResumenLicitacion struct {
	ID                   int64    `json:"id"`
	NombreProceso        string   `json:"nombre_proceso"`
	MontoBaseTotal       float64  `json:"monto_base_total"`
	OfertaTotal          float64  `json:"oferta_total"`
	DiferenciaPorcentual float64  `json:"diferencia_porcentual"`
	DocsCompletados      float64  `json:"docs_completados"`
	Estado               string   `json:"estado"`
	Finalizada           bool     `json:"finalizada"`
	ProximoHito          *HitoDTO `json:"proximo_hito"`
}

// HitoDTO es el próximo vencimiento serializado para la API.
type HitoDTO struct {
	Clave         string `json:"clave"`
	Etiqueta      string `json:"etiqueta"`
	Fecha         string `json:"fecha"`
	DiasRestantes int    `json:"dias_restantes"`
	Urgencia      string `json:"urgencia"`
}

// AnalisisPaquetesHandler calcula los paquetes sobre la matriz de ofertas.
func (h *Handler) AnalisisPaquetesHandler(w http.ResponseWriter, r *http.Request) {
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

	analisis := AnalisisPaquetes{
		PaqueteIndividual: paquetes.MejorPaqueteIndividual(lic),
		PaqueteCompleto:   paquetes.MejorPaquetePorOferente(lic),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analisis)
}

// ResumenHandler arma la vista calculada de un proceso. Acepta los flags
// solo_participados y base_personal para variar la diferencia porcentual.
func (h *Handler) ResumenHandler(w http.ResponseWriter, r *http.Request) {
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

	soloParticipados := r.URL.Query().Get("solo_participados") == "true"
	basePersonal := r.URL.Query().Get("base_personal") == "true"

	c := status.Clasificar(lic)
	resumen := ResumenLicitacion{
		ID:                   lic.ID,
		NombreProceso:        lic.NombreProceso,
		MontoBaseTotal:       lic.MontoBaseTotal(soloParticipados),
		OfertaTotal:          lic.OfertaTotal(soloParticipados),
		DiferenciaPorcentual: lic.DiferenciaPorcentual(soloParticipados, basePersonal),
		DocsCompletados:      lic.PorcentajeCompletado(),
		Estado:               c.Etiqueta,
		Finalizada:           status.EsFinalizada(lic),
	}

	if v := cronograma.ProximoVencimiento(lic, time.Now()); v != nil {
		resumen.ProximoHito = &HitoDTO{
			Clave:         v.Clave,
			Etiqueta:      v.Etiqueta,
			Fecha:         v.Fecha.Format("2006-01-02"),
			DiasRestantes: v.DiasRestantes,
			Urgencia:      cronograma.ClasificarUrgencia(v.DiasRestantes).String(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resumen)
}

// KPIsHandler agrega los indicadores de toda la cartera. Pagina por dentro
// para no cargar la tabla entera en una sola consulta.
func (h *Handler) KPIsHandler(w http.ResponseWriter, r *http.Request) {
	const pagina = 200

	resumen := kpi.Resumen{}
	offset := 0
	for {
		lics, err := h.Store.GetLicitaciones(r.Context(), "", pagina, offset)
		if err != nil {
			http.Error(w, "Failed to get licitaciones", http.StatusInternalServerError)
			return
		}
		parcial := kpi.Resumir(lics)
		resumen.Ganadas += parcial.Ganadas
		resumen.Perdidas += parcial.Perdidas
		resumen.LotesGanados += parcial.LotesGanados
		if len(lics) < pagina {
			break
		}
		offset += pagina
	}
	if total := resumen.Ganadas + resumen.Perdidas; total > 0 {
		resumen.TasaExito = float64(resumen.Ganadas) / float64(total) * 100.0
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resumen)
}
