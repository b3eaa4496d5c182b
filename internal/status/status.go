// Package status traduce el estado crudo de una licitación a una categoría
// canónica. El matching por subcadenas sobre texto libre vive solo aquí; el
// resto del código consume el enum, nunca re-deriva categorías del texto.
package status

import (
	"strings"

	"licitaciones/models"
)

// Estado es la categoría canónica de una licitación.
type Estado int

const (
	EnCurso Estado = iota
	SobreBEntregado
	FasesCumplidas
	AdjudicadaGanada
	AdjudicadaPerdida
	AdjudicadaEnProceso
	Descalificada
	Desierta
	Cancelada
	// Otro: texto de estado que no calza con ninguna regla; la etiqueta
	// conserva el texto crudo.
	Otro
)

var etiquetas = map[Estado]string{
	EnCurso:             "En curso",
	SobreBEntregado:     "Sobre B Entregado",
	FasesCumplidas:      "Fases cumplidas",
	AdjudicadaGanada:    "Adjudicada (Ganada)",
	AdjudicadaPerdida:   "Adjudicada (Perdida)",
	AdjudicadaEnProceso: "Adjudicada",
	Descalificada:       "Descalificada",
	Desierta:            "Desierta",
	Cancelada:           "Cancelada",
}

func (e Estado) String() string {
	if s, ok := etiquetas[e]; ok {
		return s
	}
	return "Otro"
}

// EsTerminal indica si la categoría cierra el ciclo de vida. Adjudicada sin
// resultado conocido no es terminal: falta saber si se ganó o perdió.
func (e Estado) EsTerminal() bool {
	switch e {
	case AdjudicadaGanada, AdjudicadaPerdida, Descalificada, Desierta, Cancelada:
		return true
	default:
		return false
	}
}

// Clasificacion es el resultado del clasificador: categoría más etiqueta
// para mostrar (el texto crudo cuando la categoría es Otro).
type Clasificacion struct {
	Estado   Estado
	Etiqueta string
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Clasificar aplica las reglas en orden fijo; la primera que calza gana.
// Las categorías no son excluyentes en el texto crudo ("Adjudicada - antes
// Cancelada" clasifica como adjudicada, no como cancelada).
func Clasificar(lic *models.Licitacion) Clasificacion {
	est := norm(lic.Estado)

	if lic.Adjudicada || strings.Contains(est, "adjudicad") {
		switch {
		case lic.Ganada != nil && *lic.Ganada:
			return Clasificacion{AdjudicadaGanada, etiquetas[AdjudicadaGanada]}
		case lic.Ganada != nil && !*lic.Ganada:
			return Clasificacion{AdjudicadaPerdida, etiquetas[AdjudicadaPerdida]}
		default:
			return Clasificacion{AdjudicadaEnProceso, etiquetas[AdjudicadaEnProceso]}
		}
	}
	if strings.Contains(est, "descalificad") {
		return Clasificacion{Descalificada, etiquetas[Descalificada]}
	}
	if strings.Contains(est, "desierta") {
		return Clasificacion{Desierta, etiquetas[Desierta]}
	}
	if strings.Contains(est, "cancelada") {
		return Clasificacion{Cancelada, etiquetas[Cancelada]}
	}
	if strings.Contains(est, "fases cumplidas") || strings.Contains(est, "fases") {
		return Clasificacion{FasesCumplidas, etiquetas[FasesCumplidas]}
	}
	for _, k := range []string{"sobre b", "apertura", "presentación", "presentacion"} {
		if strings.Contains(est, k) {
			return Clasificacion{SobreBEntregado, etiquetas[SobreBEntregado]}
		}
	}
	if est == "" || strings.Contains(est, "en curso") || strings.Contains(est, "iniciada") {
		return Clasificacion{EnCurso, etiquetas[EnCurso]}
	}
	return Clasificacion{Otro, lic.Estado}
}

// EsFinalizada es un predicado más laxo que Clasificar: todo estado que el
// clasificador resuelve a categoría terminal también devuelve true aquí.
func EsFinalizada(lic *models.Licitacion) bool {
	if lic.Adjudicada {
		return true
	}
	est := norm(lic.Estado)
	for _, k := range []string{"adjudicad", "desierta", "cancelada", "descalificad"} {
		if strings.Contains(est, k) {
			return true
		}
	}
	return lic.Ganada != nil && *lic.Ganada
}
