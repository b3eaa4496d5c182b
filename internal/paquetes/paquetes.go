// Package paquetes calcula los paquetes hipotéticos de adjudicación sobre la
// matriz de ofertas habilitadas: la oferta más baja lote a lote y el oferente
// más barato que cubre la licitación completa.
package paquetes

import (
	"strings"

	"licitaciones/models"
)

// MarcadorNuestro antecede al nombre de nuestra empresa en los resultados
// para distinguir nuestra oferta de las de competidores.
const MarcadorNuestro = "➡️"

// EtiquetaOfertaPropia se usa cuando el lote no tiene empresa asignada.
const EtiquetaOfertaPropia = "Nuestra Oferta"

// OfertaGanadora es la oferta mínima seleccionada para un lote.
type OfertaGanadora struct {
	Oferente string  `json:"oferente"`
	Monto    float64 `json:"monto"`
}

// PaqueteIndividual es el paquete armado con la oferta más baja de cada lote
// sin importar el oferente. Lotes sin candidato elegible quedan fuera del
// total y del detalle.
type PaqueteIndividual struct {
	MontoTotal float64                   `json:"monto_total"`
	PorLote    map[string]OfertaGanadora `json:"detalles_por_lote"`
}

// PaqueteCompleto es el paquete de un único oferente que ofertó por todos
// los lotes de la licitación.
type PaqueteCompleto struct {
	Oferente       string  `json:"oferente"`
	MontoTotal     float64 `json:"monto_total"`
	LotesOfertados int     `json:"lotes_ofertados"`
}

func etiquetaNuestra(empresa string) string {
	if strings.TrimSpace(empresa) == "" {
		empresa = EtiquetaOfertaPropia
	}
	return MarcadorNuestro + " " + empresa
}

// ofertaNuestraElegible: participamos, fase A superada y monto positivo.
func ofertaNuestraElegible(lote models.Lote) bool {
	return lote.Participamos && lote.FaseASuperada && lote.MontoOfertado > 0
}

// EmpresasNuestras resuelve los nombres de nuestras empresas con fallback de
// dos niveles: primero la empresa asignada en cada lote donde participamos;
// si ningún lote aporta, la lista a nivel de licitación (descartando vacíos
// y "none").
func EmpresasNuestras(lic *models.Licitacion) []string {
	var nombres []string
	vistos := make(map[string]bool)
	agregar := func(n string) {
		n = strings.TrimSpace(n)
		if n == "" || strings.EqualFold(n, "none") || vistos[n] {
			return
		}
		vistos[n] = true
		nombres = append(nombres, n)
	}

	for _, lote := range lic.Lotes {
		if lote.Participamos {
			agregar(lote.EmpresaNuestra)
		}
	}
	if len(nombres) > 0 {
		return nombres
	}
	for _, n := range lic.EmpresasNuestras {
		agregar(n)
	}
	return nombres
}

// MejorPaqueteIndividual selecciona por lote la oferta habilitada más baja.
// Nuestra oferta se evalúa primero y la comparación es estricta (<): en
// empate exacto se queda el candidato visto primero.
func MejorPaqueteIndividual(lic *models.Licitacion) PaqueteIndividual {
	matriz := lic.MatrizOfertas()
	resultado := PaqueteIndividual{PorLote: make(map[string]OfertaGanadora)}

	for _, lote := range lic.Lotes {
		num := lote.Numero
		var mejor *OfertaGanadora

		if ofertaNuestraElegible(lote) {
			mejor = &OfertaGanadora{
				Oferente: etiquetaNuestra(lote.EmpresaNuestra),
				Monto:    lote.MontoOfertado,
			}
		}
		// Competidores en orden de lista para que el desempate sea estable.
		ofertasLote := matriz[num]
		for _, of := range lic.Oferentes {
			oferta, ok := ofertasLote[of.Nombre]
			if !ok {
				continue
			}
			if mejor == nil || oferta.Monto < mejor.Monto {
				mejor = &OfertaGanadora{Oferente: of.Nombre, Monto: oferta.Monto}
			}
		}

		if mejor != nil {
			resultado.MontoTotal += mejor.Monto
			resultado.PorLote[num] = *mejor
		}
	}
	return resultado
}

// MejorPaquetePorOferente devuelve el oferente con el menor monto total que
// ofertó por TODOS los lotes, o nil si nadie cubre la licitación completa o
// no hay lotes. Nuestra candidatura exige además una única empresa nuestra
// resuelta; la ambigüedad de empresa solo nos descarta a nosotros, nunca a
// los competidores.
func MejorPaquetePorOferente(lic *models.Licitacion) *PaqueteCompleto {
	totalLotes := len(lic.Lotes)
	if totalLotes == 0 {
		return nil
	}
	matriz := lic.MatrizOfertas()

	var candidatos []PaqueteCompleto

	empresas := EmpresasNuestras(lic)
	if len(empresas) == 1 {
		var monto float64
		cubiertos := 0
		for _, lote := range lic.Lotes {
			if ofertaNuestraElegible(lote) {
				monto += lote.MontoOfertado
				cubiertos++
			}
		}
		if cubiertos == totalLotes {
			candidatos = append(candidatos, PaqueteCompleto{
				Oferente:       etiquetaNuestra(empresas[0]),
				MontoTotal:     monto,
				LotesOfertados: cubiertos,
			})
		}
	}

	for _, of := range lic.Oferentes {
		if of.Nombre == "" {
			continue
		}
		var monto float64
		cubiertos := 0
		for _, lote := range lic.Lotes {
			if oferta, ok := matriz[lote.Numero][of.Nombre]; ok {
				monto += oferta.Monto
				cubiertos++
			}
		}
		if cubiertos == totalLotes {
			candidatos = append(candidatos, PaqueteCompleto{
				Oferente:       of.Nombre,
				MontoTotal:     monto,
				LotesOfertados: cubiertos,
			})
		}
	}

	if len(candidatos) == 0 {
		return nil
	}
	mejor := candidatos[0]
	for _, c := range candidatos[1:] {
		if c.MontoTotal < mejor.MontoTotal {
			mejor = c
		}
	}
	return &mejor
}
