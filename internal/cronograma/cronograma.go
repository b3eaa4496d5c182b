// Package cronograma busca el próximo hito accionable dentro del cronograma
// de una licitación y clasifica su urgencia.
package cronograma

import (
	"strings"
	"time"

	"licitaciones/models"
)

// Formatos de fecha aceptados, probados en este orden.
var formatosFecha = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// Hitos con etiqueta conocida, en orden de prioridad para desempatar cuando
// dos claves conocidas caen en la misma fecha.
var hitosConocidos = []string{
	"presentacion_ofertas",
	"apertura_ofertas",
	"notificacion",
	"adjudicacion",
	"firma_contrato",
}

var etiquetasConocidas = map[string]string{
	"presentacion_ofertas": "Presentación de Ofertas",
	"apertura_ofertas":     "Apertura de Ofertas",
	"notificacion":         "Notificación",
	"adjudicacion":         "Adjudicación",
	"firma_contrato":       "Firma de Contrato",
}

// Vencimiento es el hito seleccionado: clave cruda, etiqueta para mostrar,
// fecha y días restantes con signo (negativo = vencido, cero = hoy).
type Vencimiento struct {
	Clave         string
	Etiqueta      string
	Fecha         time.Time
	DiasRestantes int
}

// ParseFecha intenta los formatos aceptados en orden; el primero que calza
// gana. Devuelve false si ninguno aplica.
func ParseFecha(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) > 10 {
		s = s[:10]
	}
	for _, fmt := range formatosFecha {
		if t, err := time.Parse(fmt, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncar(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func prioridad(clave string) int {
	k := strings.ToLower(clave)
	for i, conocido := range hitosConocidos {
		if strings.Contains(k, conocido) {
			return i
		}
	}
	return len(hitosConocidos)
}

// Etiqueta humana para una clave de cronograma: las conocidas tienen nombre
// fijo; el resto se reformatea (guiones bajos a espacios, inicial mayúscula).
func etiqueta(clave string) string {
	k := strings.ToLower(clave)
	for _, conocido := range hitosConocidos {
		if strings.Contains(k, conocido) {
			return etiquetasConocidas[conocido]
		}
	}
	s := strings.ReplaceAll(strings.TrimSpace(clave), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type candidato struct {
	clave string
	fecha time.Time
	orden int // posición de llegada, para desempate estable
}

// ProximoVencimiento recorre todas las entradas del cronograma, descarta las
// que no traen fecha parseable y elige la fecha más cercana >= hoy. Si todas
// quedaron en el pasado cae a la más reciente de ellas. Devuelve nil con
// cronograma vacío o sin fechas.
func ProximoVencimiento(lic *models.Licitacion, hoy time.Time) *Vencimiento {
	hoy = truncar(hoy)

	candidatos := make([]candidato, 0, len(lic.Cronograma))
	orden := 0
	// Recorremos primero las claves conocidas en su orden de prioridad para
	// que el desempate por fecha igual sea determinista.
	vistas := make(map[string]bool)
	for _, conocido := range hitosConocidos {
		for clave, hito := range lic.Cronograma {
			if vistas[clave] || !strings.Contains(strings.ToLower(clave), conocido) {
				continue
			}
			if f, ok := ParseFecha(hito.Fecha); ok {
				candidatos = append(candidatos, candidato{clave, truncar(f), orden})
				orden++
			}
			vistas[clave] = true
		}
	}
	for clave, hito := range lic.Cronograma {
		if vistas[clave] {
			continue
		}
		if f, ok := ParseFecha(hito.Fecha); ok {
			candidatos = append(candidatos, candidato{clave, truncar(f), orden})
			orden++
		}
	}
	if len(candidatos) == 0 {
		return nil
	}

	mejor := -1
	for i, c := range candidatos {
		if c.fecha.Before(hoy) {
			continue
		}
		if mejor < 0 || mejorQue(c, candidatos[mejor]) {
			mejor = i
		}
	}
	if mejor < 0 {
		// Sin hitos futuros: la fecha pasada más reciente.
		for i, c := range candidatos {
			if mejor < 0 || c.fecha.After(candidatos[mejor].fecha) {
				mejor = i
			}
		}
	}

	sel := candidatos[mejor]
	dias := int(sel.fecha.Sub(hoy).Hours() / 24)
	return &Vencimiento{
		Clave:         sel.clave,
		Etiqueta:      etiqueta(sel.clave),
		Fecha:         sel.fecha,
		DiasRestantes: dias,
	}
}

// mejorQue: fecha menor gana; a igual fecha gana la clave de mayor prioridad
// conocida y, en su defecto, la vista primero.
func mejorQue(a, b candidato) bool {
	if !a.fecha.Equal(b.fecha) {
		return a.fecha.Before(b.fecha)
	}
	pa, pb := prioridad(a.clave), prioridad(b.clave)
	if pa != pb {
		return pa < pb
	}
	return a.orden < b.orden
}

// Urgencia clasifica los días restantes para el coloreado de listados.
type Urgencia int

const (
	Vencida Urgencia = iota
	Hoy
	Manana
	Critica
	Proxima
	Normal
)

func (u Urgencia) String() string {
	switch u {
	case Vencida:
		return "vencida"
	case Hoy:
		return "hoy"
	case Manana:
		return "mañana"
	case Critica:
		return "critica"
	case Proxima:
		return "proxima"
	default:
		return "normal"
	}
}

// ClasificarUrgencia es función determinista de los días restantes. En cada
// umbral el valor exacto pertenece al bucket de menor urgencia: 5 es crítica,
// 30 es próxima.
func ClasificarUrgencia(dias int) Urgencia {
	switch {
	case dias < 0:
		return Vencida
	case dias == 0:
		return Hoy
	case dias == 1:
		return Manana
	case dias <= 5:
		return Critica
	case dias <= 30:
		return Proxima
	default:
		return Normal
	}
}
