package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"licitaciones/models"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// licRow es la fila plana de la tabla licitaciones: el grafo anidado (lotes,
// oferentes, documentos, cronograma, empresas, parámetros) viaja en columnas
// JSONB, igual que serializaba la aplicación original.
type licRow struct {
	ID                    int64          `db:"id"`
	NombreProceso         string         `db:"nombre_proceso"`
	NumeroProceso         string         `db:"numero_proceso"`
	Institucion           string         `db:"institucion"`
	Estado                string         `db:"estado"`
	FaseASuperada         bool           `db:"fase_a_superada"`
	FaseBSuperada         bool           `db:"fase_b_superada"`
	Adjudicada            bool           `db:"adjudicada"`
	AdjudicadaA           string         `db:"adjudicada_a"`
	Ganada                *bool          `db:"ganada"`
	MotivoDescalificacion string         `db:"motivo_descalificacion"`
	DocsCompletosManual   bool           `db:"docs_completos_manual"`
	FechaCreacion         time.Time      `db:"fecha_creacion"`
	EmpresasNuestras      types.JSONText `db:"empresas_nuestras"`
	Cronograma            types.JSONText `db:"cronograma"`
	ParametrosEvaluacion  types.JSONText `db:"parametros_evaluacion"`
	Lotes                 types.JSONText `db:"lotes"`
	Oferentes             types.JSONText `db:"oferentes"`
	Documentos            types.JSONText `db:"documentos"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func marshalCol(v any) (types.JSONText, error) {
	if v == nil {
		return types.JSONText("null"), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

func rowFromLicitacion(l *models.Licitacion) (*licRow, error) {
	row := &licRow{
		ID:                    l.ID,
		NombreProceso:         l.NombreProceso,
		NumeroProceso:         l.NumeroProceso,
		Institucion:           l.Institucion,
		Estado:                l.Estado,
		FaseASuperada:         l.FaseASuperada,
		FaseBSuperada:         l.FaseBSuperada,
		Adjudicada:            l.Adjudicada,
		AdjudicadaA:           l.AdjudicadaA,
		Ganada:                l.Ganada,
		MotivoDescalificacion: l.MotivoDescalificacion,
		DocsCompletosManual:   l.DocsCompletosManual,
		FechaCreacion:         l.FechaCreacion,
	}
	var err error
	if row.EmpresasNuestras, err = marshalCol(l.EmpresasNuestras); err != nil {
		return nil, fmt.Errorf("serializando empresas_nuestras: %w", err)
	}
	if row.Cronograma, err = marshalCol(l.Cronograma); err != nil {
		return nil, fmt.Errorf("serializando cronograma: %w", err)
	}
	if row.ParametrosEvaluacion, err = marshalCol(l.ParametrosEvaluacion); err != nil {
		return nil, fmt.Errorf("serializando parametros_evaluacion: %w", err)
	}
	if row.Lotes, err = marshalCol(l.Lotes); err != nil {
		return nil, fmt.Errorf("serializando lotes: %w", err)
	}
	if row.Oferentes, err = marshalCol(l.Oferentes); err != nil {
		return nil, fmt.Errorf("serializando oferentes: %w", err)
	}
	if row.Documentos, err = marshalCol(l.Documentos); err != nil {
		return nil, fmt.Errorf("serializando documentos: %w", err)
	}
	return row, nil
}

func unmarshalCol(raw types.JSONText, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (r *licRow) toLicitacion() (*models.Licitacion, error) {
	l := &models.Licitacion{
		ID:                    r.ID,
		NombreProceso:         r.NombreProceso,
		NumeroProceso:         r.NumeroProceso,
		Institucion:           r.Institucion,
		Estado:                r.Estado,
		FaseASuperada:         r.FaseASuperada,
		FaseBSuperada:         r.FaseBSuperada,
		Adjudicada:            r.Adjudicada,
		AdjudicadaA:           r.AdjudicadaA,
		Ganada:                r.Ganada,
		MotivoDescalificacion: r.MotivoDescalificacion,
		DocsCompletosManual:   r.DocsCompletosManual,
		FechaCreacion:         r.FechaCreacion,
	}
	if err := unmarshalCol(r.EmpresasNuestras, &l.EmpresasNuestras); err != nil {
		return nil, fmt.Errorf("leyendo empresas_nuestras: %w", err)
	}
	if err := unmarshalCol(r.Cronograma, &l.Cronograma); err != nil {
		return nil, fmt.Errorf("leyendo cronograma: %w", err)
	}
	if err := unmarshalCol(r.ParametrosEvaluacion, &l.ParametrosEvaluacion); err != nil {
		return nil, fmt.Errorf("leyendo parametros_evaluacion: %w", err)
	}
	if err := unmarshalCol(r.Lotes, &l.Lotes); err != nil {
		return nil, fmt.Errorf("leyendo lotes: %w", err)
	}
	if err := unmarshalCol(r.Oferentes, &l.Oferentes); err != nil {
		return nil, fmt.Errorf("leyendo oferentes: %w", err)
	}
	if err := unmarshalCol(r.Documentos, &l.Documentos); err != nil {
		return nil, fmt.Errorf("leyendo documentos: %w", err)
	}
	return l, nil
}

func (s *Storage) CreateLicitacion(ctx context.Context, l *models.Licitacion) error {
	if l.FechaCreacion.IsZero() {
		l.FechaCreacion = time.Now().UTC()
	}
	row, err := rowFromLicitacion(l)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO licitaciones
            (nombre_proceso, numero_proceso, institucion, estado,
             fase_a_superada, fase_b_superada, adjudicada, adjudicada_a, ganada,
             motivo_descalificacion, docs_completos_manual, fecha_creacion,
             empresas_nuestras, cronograma, parametros_evaluacion,
             lotes, oferentes, documentos)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		row.NombreProceso, row.NumeroProceso, row.Institucion, row.Estado,
		row.FaseASuperada, row.FaseBSuperada, row.Adjudicada, row.AdjudicadaA, row.Ganada,
		row.MotivoDescalificacion, row.DocsCompletosManual, row.FechaCreacion,
		row.EmpresasNuestras, row.Cronograma, row.ParametrosEvaluacion,
		row.Lotes, row.Oferentes, row.Documentos).
		Scan(&l.ID)
}

func (s *Storage) GetLicitacion(ctx context.Context, id int64) (*models.Licitacion, error) {
	var row licRow
	query := `SELECT * FROM licitaciones WHERE id=$1`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toLicitacion()
}

func (s *Storage) GetLicitaciones(ctx context.Context, estado string, limit, offset int) ([]*models.Licitacion, error) {
	query := `SELECT * FROM licitaciones`
	args := []interface{}{}
	if estado != "" {
		query += ` WHERE estado = $1`
		args = append(args, estado)
	}
	query += ` ORDER BY fecha_creacion DESC, id DESC`
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows := []licRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	lics := make([]*models.Licitacion, 0, len(rows))
	for i := range rows {
		l, err := rows[i].toLicitacion()
		if err != nil {
			return nil, err
		}
		lics = append(lics, l)
	}
	return lics, nil
}

func (s *Storage) UpdateLicitacion(ctx context.Context, l *models.Licitacion) error {
	row, err := rowFromLicitacion(l)
	if err != nil {
		return err
	}
	query := `
        UPDATE licitaciones
        SET nombre_proceso=$1, numero_proceso=$2, institucion=$3, estado=$4,
            fase_a_superada=$5, fase_b_superada=$6, adjudicada=$7, adjudicada_a=$8,
            ganada=$9, motivo_descalificacion=$10, docs_completos_manual=$11,
            empresas_nuestras=$12, cronograma=$13, parametros_evaluacion=$14,
            lotes=$15, oferentes=$16, documentos=$17, updated_at=NOW()
        WHERE id=$18`
	_, err = s.db.ExecContext(ctx, query,
		row.NombreProceso, row.NumeroProceso, row.Institucion, row.Estado,
		row.FaseASuperada, row.FaseBSuperada, row.Adjudicada, row.AdjudicadaA,
		row.Ganada, row.MotivoDescalificacion, row.DocsCompletosManual,
		row.EmpresasNuestras, row.Cronograma, row.ParametrosEvaluacion,
		row.Lotes, row.Oferentes, row.Documentos, row.ID)
	return err
}

func (s *Storage) DeleteLicitacion(ctx context.Context, id int64) error {
	query := `DELETE FROM licitaciones WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}
