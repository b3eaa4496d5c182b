// Package kpi agrega resultados de clasificación y montos sobre una cartera
// de licitaciones, limitado a aquellas donde tenemos empresa participante.
package kpi

import (
	"strings"

	"licitaciones/internal/paquetes"
	"licitaciones/internal/status"
	"licitaciones/models"
)

// Estados que cuentan como pérdida directa sin mirar lotes. Se comparan por
// igualdad exacta de categoría, no por subcadena.
var perdidasDirectas = map[string]bool{
	"Descalificado Fase A": true,
	"Descalificado Fase B": true,
	"Desierta":             true,
	"Cancelada":            true,
}

// Resumen de cartera: licitaciones que no calzan en ganada/perdida (p. ej.
// activas sin adjudicar) no aportan a ningún contador.
type Resumen struct {
	Ganadas      int     `json:"ganadas"`
	Perdidas     int     `json:"perdidas"`
	LotesGanados int     `json:"lotes_ganados"`
	TasaExito    float64 `json:"tasa_exito"`
}

// NormalizarNombre deja un nombre de empresa comparable: sin espacios en los
// extremos, sin el marcador de oferta propia ni su paréntesis, espacios
// repetidos colapsados y en mayúsculas. Se aplica simétricamente a ganador y
// a nuestras empresas antes de comparar.
func NormalizarNombre(s string) string {
	s = strings.ReplaceAll(s, paquetes.MarcadorNuestro, "")
	s = strings.ReplaceAll(s, "(Nuestra Oferta)", "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToUpper(s)
}

// loteGanado: el flag explícito manda; si no, el nombre del ganador debe
// calzar con alguna de nuestras empresas tras normalizar.
func loteGanado(lote models.Lote, nuestras map[string]bool) bool {
	if lote.GanadoPorNosotros {
		return true
	}
	ganador := NormalizarNombre(lote.GanadorNombre)
	return ganador != "" && nuestras[ganador]
}

// Resumir recorre la cartera y cuenta ganadas, perdidas y lotes ganados.
func Resumir(lics []*models.Licitacion) Resumen {
	var r Resumen
	for _, lic := range lics {
		empresas := paquetes.EmpresasNuestras(lic)
		if len(empresas) == 0 {
			continue
		}
		nuestras := make(map[string]bool, len(empresas))
		for _, n := range empresas {
			nuestras[NormalizarNombre(n)] = true
		}

		c := status.Clasificar(lic)
		switch c.Estado {
		case status.AdjudicadaGanada, status.AdjudicadaPerdida, status.AdjudicadaEnProceso:
			ganados := 0
			for _, lote := range lic.Lotes {
				if loteGanado(lote, nuestras) {
					ganados++
				}
			}
			if ganados > 0 {
				r.Ganadas++
				r.LotesGanados += ganados
			} else {
				r.Perdidas++
			}
		default:
			if perdidasDirectas[strings.TrimSpace(lic.Estado)] {
				r.Perdidas++
			}
		}
	}
	if total := r.Ganadas + r.Perdidas; total > 0 {
		r.TasaExito = float64(r.Ganadas) / float64(total) * 100.0
	}
	return r
}
