package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"licitaciones/internal/handlers"
	"licitaciones/internal/handlers/testutils"
	"licitaciones/models"
)

// MockStorage implementa StorageInterface sobre datos en memoria.
type MockStorage struct {
	licitacion          *models.Licitacion
	licitaciones        []*models.Licitacion
	createErr           error
	updated             *models.Licitacion
	deletedID           int64
	GetLicitacionesFunc func(ctx context.Context, estado string, limit, offset int) ([]*models.Licitacion, error)
}

func (m *MockStorage) CreateLicitacion(ctx context.Context, l *models.Licitacion) error {
	if m.createErr != nil {
		return m.createErr
	}
	l.ID = 1
	return nil
}

func (m *MockStorage) GetLicitacion(ctx context.Context, id int64) (*models.Licitacion, error) {
	if m.licitacion == nil {
		return nil, errors.New("not found")
	}
	return m.licitacion, nil
}

func (m *MockStorage) GetLicitaciones(ctx context.Context, estado string, limit, offset int) ([]*models.Licitacion, error) {
	if m.GetLicitacionesFunc != nil {
		return m.GetLicitacionesFunc(ctx, estado, limit, offset)
	}
	return m.licitaciones, nil
}

func (m *MockStorage) UpdateLicitacion(ctx context.Context, l *models.Licitacion) error {
	m.updated = l
	return nil
}

func (m *MockStorage) DeleteLicitacion(ctx context.Context, id int64) error {
	m.deletedID = id
	return nil
}

func boolPtr(b bool) *bool { return &b }

func licitacionDePrueba() *models.Licitacion {
	return &models.Licitacion{
		ID:            7,
		NombreProceso: "Equipamiento Hospitalario",
		Estado:        "Apertura de Sobre B",
		Lotes: []models.Lote{
			{
				Numero: "LOTE 1", MontoBase: 1000, MontoOfertado: 900,
				Participamos: true, FaseASuperada: true, EmpresaNuestra: "Nosotros SRL",
			},
			{
				Numero: "LOTE 2", MontoBase: 500, MontoOfertado: 550,
				Participamos: true, FaseASuperada: true, EmpresaNuestra: "Nosotros SRL",
			},
		},
		Oferentes: []models.Oferente{
			{Nombre: "Acme Corp", OfertasPorLote: []models.OfertaLote{
				{LoteNumero: "LOTE 1", Monto: 850, PasoFaseA: true},
				{LoteNumero: "LOTE 2", Monto: 600, PasoFaseA: true},
			}},
		},
		Documentos: []models.Documento{
			{ID: 11, Nombre: "Garantía de seriedad", Presentado: true},
			{ID: 12, Nombre: "Poder del representante"},
		},
		Cronograma: map[string]models.Hito{
			"apertura_ofertas": {Fecha: "2030-05-20"},
		},
	}
}

func TestCreateLicitacionHandler(t *testing.T) {
	mockStore := &MockStorage{}
	handler := handlers.NewHandler(mockStore)

	reqBody := `{
        "nombre_proceso": "Suministro de Insumos",
        "numero_proceso": "LPN-01-2026",
        "lotes": [{"numero": "lote 01", "monto_base": 1000}]
    }`
	req := httptest.NewRequest(http.MethodPost, "/api/licitaciones/new", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.CreateLicitacionHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "Suministro de Insumos")
	// El número de lote sale en forma canónica y el estado toma el default.
	require.Contains(t, string(body), "LOTE 1")
	require.Contains(t, string(body), "Iniciada")
}

func TestCreateLicitacionHandlerValidation(t *testing.T) {
	mockStore := &MockStorage{}
	handler := handlers.NewHandler(mockStore)

	casos := map[string]string{
		"sin nombre":     `{"numero_proceso": "X"}`,
		"lote sin num":   `{"nombre_proceso": "P", "lotes": [{"monto_base": 10}]}`,
		"lote duplicado": `{"nombre_proceso": "P", "lotes": [{"numero": "Lote 1"}, {"numero": "LOTE 01"}]}`,
		"monto negativo": `{"nombre_proceso": "P", "lotes": [{"numero": "1", "monto_base": -5}]}`,
	}
	for nombre, cuerpo := range casos {
		t.Run(nombre, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/licitaciones/new", strings.NewReader(cuerpo))
			w := httptest.NewRecorder()
			handler.CreateLicitacionHandler(w, req)
			require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
		})
	}
}

func TestGetLicitacionesHandler(t *testing.T) {
	mockStore := &MockStorage{
		licitaciones: []*models.Licitacion{{ID: 1, NombreProceso: "Proceso Uno"}},
	}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/licitaciones", nil)
	w := httptest.NewRecorder()

	handler.GetLicitacionesHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "Proceso Uno")
}

func TestGetLicitacionesHandlerFiltroEstado(t *testing.T) {
	var gotEstado string
	var gotLimit int
	mockStore := &MockStorage{
		GetLicitacionesFunc: func(ctx context.Context, estado string, limit, offset int) ([]*models.Licitacion, error) {
			gotEstado = estado
			gotLimit = limit
			return nil, nil
		},
	}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/licitaciones?estado=Iniciada&limit=5", nil)
	w := httptest.NewRecorder()
	handler.GetLicitacionesHandler(w, req)

	require.Equal(t, "Iniciada", gotEstado)
	require.Equal(t, 5, gotLimit)
}

func TestGetLicitacionHandlerNotFound(t *testing.T) {
	mockStore := &MockStorage{}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/licitaciones/99", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "99"})
	w := httptest.NewRecorder()

	handler.GetLicitacionHandler(w, req)
	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestEditLicitacionHandler(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	reqBody := `{"nombre_proceso": "Nombre Corregido", "ganada": true}`
	req := httptest.NewRequest(http.MethodPatch, "/api/licitaciones/7/edit", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.EditLicitacionHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "Nombre Corregido")
	require.NotNil(t, mockStore.updated)
	require.NotNil(t, mockStore.updated.Ganada)
	require.True(t, *mockStore.updated.Ganada)
	// Los campos no enviados quedan como estaban.
	require.Equal(t, "Apertura de Sobre B", mockStore.updated.Estado)
}

func TestChangeEstadoHandler(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodPut, "/api/licitaciones/7/estado?estado=Adjudicada", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.ChangeEstadoHandler(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.NotNil(t, mockStore.updated)
	require.Equal(t, "Adjudicada", mockStore.updated.Estado)
}

func TestChangeEstadoHandlerVacio(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodPut, "/api/licitaciones/7/estado", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.ChangeEstadoHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestDeleteLicitacionHandler(t *testing.T) {
	mockStore := &MockStorage{}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodDelete, "/api/licitaciones/7", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.DeleteLicitacionHandler(w, req)

	require.Equal(t, http.StatusNoContent, w.Result().StatusCode)
	require.Equal(t, int64(7), mockStore.deletedID)
}

func TestReplaceOferentesHandler(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	reqBody := `[{"nombre": "Beta SA", "ofertas_por_lote": [{"lote_numero": "LOTE 1", "monto": 800, "paso_fase_A": true}]}]`
	req := httptest.NewRequest(http.MethodPut, "/api/licitaciones/7/oferentes", strings.NewReader(reqBody))
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.ReplaceOferentesHandler(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.NotNil(t, mockStore.updated)
	require.Len(t, mockStore.updated.Oferentes, 1)
	require.Equal(t, "Beta SA", mockStore.updated.Oferentes[0].Nombre)
}

func TestAnalisisPaquetesHandler(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/licitaciones/7/analisis/paquetes", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.AnalisisPaquetesHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out struct {
		PaqueteIndividual struct {
			MontoTotal float64                       `json:"monto_total"`
			PorLote    map[string]map[string]any     `json:"detalles_por_lote"`
		} `json:"paquete_individual"`
		PaqueteCompleto *struct {
			Oferente   string  `json:"oferente"`
			MontoTotal float64 `json:"monto_total"`
		} `json:"paquete_completo"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))

	// Lote 1 lo gana Acme (850 < 900), lote 2 nosotros (550 < 600).
	require.Equal(t, 1400.0, out.PaqueteIndividual.MontoTotal)
	// Acme cubre ambos lotes con 1450; nosotros con 1450 pero evaluados
	// primero, así que el paquete completo es nuestro.
	require.NotNil(t, out.PaqueteCompleto)
	require.Equal(t, "➡️ Nosotros SRL", out.PaqueteCompleto.Oferente)
	require.Equal(t, 1450.0, out.PaqueteCompleto.MontoTotal)
}

func TestResumenHandler(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/licitaciones/7/resumen", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7"})
	w := httptest.NewRecorder()

	handler.ResumenHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out struct {
		MontoBaseTotal       float64 `json:"monto_base_total"`
		OfertaTotal          float64 `json:"oferta_total"`
		DiferenciaPorcentual float64 `json:"diferencia_porcentual"`
		DocsCompletados      float64 `json:"docs_completados"`
		Estado               string  `json:"estado"`
		ProximoHito          *struct {
			Etiqueta string `json:"etiqueta"`
			Urgencia string `json:"urgencia"`
		} `json:"proximo_hito"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))

	require.Equal(t, 1500.0, out.MontoBaseTotal)
	require.Equal(t, 1450.0, out.OfertaTotal)
	require.InDelta(t, -3.33, out.DiferenciaPorcentual, 0.01)
	require.Equal(t, 50.0, out.DocsCompletados)
	require.Equal(t, "Sobre B Entregado", out.Estado)
	require.NotNil(t, out.ProximoHito)
	require.Equal(t, "Apertura de Ofertas", out.ProximoHito.Etiqueta)
}

func TestKPIsHandler(t *testing.T) {
	ganada := licitacionDePrueba()
	ganada.Estado = "Adjudicada"
	ganada.Adjudicada = true
	ganada.Ganada = boolPtr(true)
	ganada.Lotes[0].GanadoPorNosotros = true

	perdida := licitacionDePrueba()
	perdida.Estado = "Desierta"

	mockStore := &MockStorage{
		licitaciones: []*models.Licitacion{ganada, perdida},
	}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	w := httptest.NewRecorder()

	handler.KPIsHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out struct {
		Ganadas      int     `json:"ganadas"`
		Perdidas     int     `json:"perdidas"`
		LotesGanados int     `json:"lotes_ganados"`
		TasaExito    float64 `json:"tasa_exito"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))

	require.Equal(t, 1, out.Ganadas)
	require.Equal(t, 1, out.Perdidas)
	require.Equal(t, 1, out.LotesGanados)
	require.Equal(t, 50.0, out.TasaExito)
}

func TestEditDocumentoHandler(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	reqBody := `{"presentado": true, "revisado": true}`
	req := httptest.NewRequest(http.MethodPatch, "/api/licitaciones/7/documentos/12", strings.NewReader(reqBody))
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7", "docId": "12"})
	w := httptest.NewRecorder()

	handler.EditDocumentoHandler(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.NotNil(t, mockStore.updated)
	require.True(t, mockStore.updated.Documentos[1].Presentado)
	require.True(t, mockStore.updated.Documentos[1].Revisado)
	// El otro documento no se toca.
	require.False(t, mockStore.updated.Documentos[0].Revisado)
}

func TestEditDocumentoHandlerNotFound(t *testing.T) {
	mockStore := &MockStorage{licitacion: licitacionDePrueba()}
	handler := handlers.NewHandler(mockStore)

	req := httptest.NewRequest(http.MethodPatch, "/api/licitaciones/7/documentos/999", strings.NewReader(`{}`))
	req = testutils.WithChiURLParams(req, map[string]string{"licId": "7", "docId": "999"})
	w := httptest.NewRecorder()

	handler.EditDocumentoHandler(w, req)
	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}
