package models

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var loteNumeroRe = regexp.MustCompile(`\d+`)

// NormalizeLoteNumero lleva cualquier escritura de número de lote a la forma
// canónica "LOTE N". Entradas sin dígitos se devuelven en mayúsculas tal cual.
func NormalizeLoteNumero(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	m := loteNumeroRe.FindString(s)
	if m == "" {
		return s
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return s
	}
	return "LOTE " + strconv.Itoa(n)
}

// Lote es una partida de la licitación que se oferta de forma independiente.
type Lote struct {
	ID                int64   `db:"id" json:"id"`
	Numero            string  `db:"numero" json:"numero"`
	Nombre            string  `db:"nombre" json:"nombre"`
	MontoBase         float64 `db:"monto_base" json:"monto_base"`
	MontoBasePersonal float64 `db:"monto_base_personal" json:"monto_base_personal"`
	MontoOfertado     float64 `db:"monto_ofertado" json:"monto_ofertado"`
	Participamos      bool    `db:"participamos" json:"participamos"`
	FaseASuperada     bool    `db:"fase_a_superada" json:"fase_A_superada"`
	GanadorNombre     string  `db:"ganador_nombre" json:"ganador_nombre"`
	GanadoPorNosotros bool    `db:"ganado_por_nosotros" json:"ganado_por_nosotros"`
	EmpresaNuestra    string  `db:"empresa_nuestra" json:"empresa_nuestra,omitempty"`
}

// OfertaLote es la oferta de un competidor sobre un lote concreto.
type OfertaLote struct {
	LoteNumero    string  `json:"lote_numero"`
	Monto         float64 `json:"monto"`
	PasoFaseA     bool    `json:"paso_fase_A"`
	DiasEntrega   int     `json:"dias_entrega,omitempty"`
	GarantiaMeses int     `json:"garantia_meses,omitempty"`
}

// Oferente es una empresa competidora con sus ofertas por lote.
type Oferente struct {
	Nombre         string       `json:"nombre"`
	Comentario     string       `json:"comentario,omitempty"`
	OfertasPorLote []OfertaLote `json:"ofertas_por_lote"`
}

// Subsanabilidad de un documento: vacío = sin definir.
const (
	SubsanableSi = "Subsanable"
	SubsanableNo = "No Subsanable"
)

// Documento es un requisito documental del pliego.
type Documento struct {
	ID                  int64  `json:"id"`
	Codigo              string `json:"codigo"`
	Nombre              string `json:"nombre"`
	Categoria           string `json:"categoria,omitempty"`
	Comentario          string `json:"comentario,omitempty"`
	Presentado          bool   `json:"presentado"`
	Subsanable          string `json:"subsanable,omitempty"`
	RutaArchivo         string `json:"ruta_archivo,omitempty"`
	Responsable         string `json:"responsable,omitempty"`
	Revisado            bool   `json:"revisado"`
	Obligatorio         bool   `json:"obligatorio"`
	OrdenPliego         *int   `json:"orden_pliego,omitempty"`
	RequiereSubsanacion bool   `json:"requiere_subsanacion"`
}

// Hito es una entrada del cronograma. En datos históricos el valor puede ser
// una fecha suelta ("2025-01-10") o un registro con fecha y estado; el campo
// de fecha aparece como fecha_limite, fecha, date o deadline.
type Hito struct {
	Fecha  string `json:"fecha_limite,omitempty"`
	Estado string `json:"estado,omitempty"`
}

func (h *Hito) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		h.Fecha = plain
		h.Estado = ""
		return nil
	}
	var aux struct {
		FechaLimite string `json:"fecha_limite"`
		Fecha       string `json:"fecha"`
		Date        string `json:"date"`
		Deadline    string `json:"deadline"`
		Estado      string `json:"estado"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	for _, f := range []string{aux.FechaLimite, aux.Fecha, aux.Date, aux.Deadline} {
		if strings.TrimSpace(f) != "" {
			h.Fecha = f
			break
		}
	}
	h.Estado = aux.Estado
	return nil
}

// Licitacion es el proceso de compra completo con su grafo resuelto en
// memoria: lotes, oferentes competidores y documentos solicitados.
type Licitacion struct {
	ID                    int64     `db:"id" json:"id"`
	NombreProceso         string    `db:"nombre_proceso" json:"nombre_proceso"`
	NumeroProceso         string    `db:"numero_proceso" json:"numero_proceso"`
	Institucion           string    `db:"institucion" json:"institucion"`
	Estado                string    `db:"estado" json:"estado"`
	FaseASuperada         bool      `db:"fase_a_superada" json:"fase_A_superada"`
	FaseBSuperada         bool      `db:"fase_b_superada" json:"fase_B_superada"`
	Adjudicada            bool      `db:"adjudicada" json:"adjudicada"`
	AdjudicadaA           string    `db:"adjudicada_a" json:"adjudicada_a,omitempty"`
	Ganada                *bool     `db:"ganada" json:"ganada"`
	MotivoDescalificacion string    `db:"motivo_descalificacion" json:"motivo_descalificacion,omitempty"`
	DocsCompletosManual   bool      `db:"docs_completos_manual" json:"docs_completos_manual"`
	FechaCreacion         time.Time `db:"fecha_creacion" json:"fecha_creacion"`

	EmpresasNuestras     []string        `json:"empresas_nuestras"`
	Cronograma           map[string]Hito `json:"cronograma"`
	ParametrosEvaluacion map[string]any  `json:"parametros_evaluacion,omitempty"`

	Lotes      []Lote      `json:"lotes"`
	Oferentes  []Oferente  `json:"oferentes_participantes"`
	Documentos []Documento `json:"documentos_solicitados"`
}

// MontoBaseTotal suma los montos base públicos de los lotes.
func (l *Licitacion) MontoBaseTotal(soloParticipados bool) float64 {
	var total float64
	for _, lote := range l.Lotes {
		if soloParticipados && !lote.Participamos {
			continue
		}
		total += lote.MontoBase
	}
	return total
}

// OfertaTotal suma nuestros montos ofertados.
func (l *Licitacion) OfertaTotal(soloParticipados bool) float64 {
	var total float64
	for _, lote := range l.Lotes {
		if soloParticipados && !lote.Participamos {
			continue
		}
		total += lote.MontoOfertado
	}
	return total
}

// MontoBasePersonalTotal suma la base personal por lote; cuando la base
// personal es <= 0 cae a la base pública de ese lote.
func (l *Licitacion) MontoBasePersonalTotal(soloParticipados bool) float64 {
	var total float64
	for _, lote := range l.Lotes {
		if soloParticipados && !lote.Participamos {
			continue
		}
		personal := lote.MontoBasePersonal
		if personal <= 0 {
			personal = lote.MontoBase
		}
		total += personal
	}
	return total
}

// DiferenciaPorcentual devuelve ((oferta - base) / base) * 100 sobre los
// totales agregados. Con base cero devuelve 0.0. El filtro de participación
// incluye además cualquier lote con oferta positiva aunque el flag de
// participación esté apagado.
func (l *Licitacion) DiferenciaPorcentual(soloParticipados, usarBasePersonal bool) float64 {
	var baseTotal, ofertaTotal float64
	for _, lote := range l.Lotes {
		if soloParticipados && !lote.Participamos && lote.MontoOfertado <= 0 {
			continue
		}
		base := lote.MontoBase
		if usarBasePersonal && lote.MontoBasePersonal > 0 {
			base = lote.MontoBasePersonal
		}
		baseTotal += base
		ofertaTotal += lote.MontoOfertado
	}
	if baseTotal == 0 {
		return 0.0
	}
	return ((ofertaTotal - baseTotal) / baseTotal) * 100.0
}

// PorcentajeCompletado devuelve el avance documental: presentado y sin
// subsanación pendiente. Sin documentos solicitados vale 100 solo si el
// expediente fue marcado completo a mano.
func (l *Licitacion) PorcentajeCompletado() float64 {
	total := len(l.Documentos)
	if total == 0 {
		if l.DocsCompletosManual {
			return 100.0
		}
		return 0.0
	}
	completados := 0
	for _, d := range l.Documentos {
		if d.Presentado && !d.RequiereSubsanacion {
			completados++
		}
	}
	return float64(completados) / float64(total) * 100.0
}

// MatrizOfertas arma numero de lote -> oferente -> oferta, solo con ofertas
// habilitadas de competidores: fase A superada, número de lote no vacío y
// monto > 0. No incluye nuestra propia oferta. Entradas duplicadas de un
// mismo oferente sobre un lote: gana la última.
func (l *Licitacion) MatrizOfertas() map[string]map[string]OfertaLote {
	matriz := make(map[string]map[string]OfertaLote)
	for _, of := range l.Oferentes {
		if of.Nombre == "" {
			continue
		}
		for _, oferta := range of.OfertasPorLote {
			num := strings.TrimSpace(oferta.LoteNumero)
			if !oferta.PasoFaseA || num == "" || oferta.Monto <= 0 {
				continue
			}
			if matriz[num] == nil {
				matriz[num] = make(map[string]OfertaLote)
			}
			matriz[num][of.Nombre] = oferta
		}
	}
	return matriz
}
