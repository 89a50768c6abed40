package demanda

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de demandas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const demandaColunas = "id, evento_id, titulo, assunto, data, concluida, criado_em"

// List devolve todas as demandas ordenadas por data ascendente.
func (r *Repository) List(ctx context.Context) ([]Demanda, error) {
	const query = `
        SELECT ` + demandaColunas + `
        FROM demandas
        ORDER BY data ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demandas []Demanda
	for rows.Next() {
		d, err := scanDemanda(rows)
		if err != nil {
			return nil, err
		}
		demandas = append(demandas, *d)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return demandas, nil
}

// Create insere uma nova demanda vinculada a um evento.
func (r *Repository) Create(ctx context.Context, input CreateDemandaInput) (*Demanda, error) {
	const query = `
        INSERT INTO demandas (evento_id, titulo, assunto, data, concluida)
        VALUES ($1, $2, $3, $4, FALSE)
        RETURNING ` + demandaColunas + `
    `

	row := r.pool.QueryRow(ctx, query,
		input.EventoID,
		strings.TrimSpace(input.Titulo),
		strings.TrimSpace(input.Assunto),
		input.Data,
	)

	return scanDemanda(row)
}

// Update aplica atualização parcial sobre a demanda.
func (r *Repository) Update(ctx context.Context, input UpdateDemandaInput) (*Demanda, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Titulo != nil {
		setParts = append(setParts, fmt.Sprintf("titulo = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Titulo))
		idx++
	}
	if input.Assunto != nil {
		setParts = append(setParts, fmt.Sprintf("assunto = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Assunto))
		idx++
	}
	if input.Data != nil {
		setParts = append(setParts, fmt.Sprintf("data = $%d", idx))
		args = append(args, *input.Data)
		idx++
	}
	if input.Concluida != nil {
		setParts = append(setParts, fmt.Sprintf("concluida = $%d", idx))
		args = append(args, *input.Concluida)
		idx++
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE demandas
        SET %s
        WHERE id = $%d
        RETURNING `+demandaColunas+`
    `, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanDemanda(row)
}

// Get busca uma demanda específica.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Demanda, error) {
	const query = `
        SELECT ` + demandaColunas + `
        FROM demandas
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanDemanda(row)
}

// Delete remove a demanda.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM demandas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDemanda(row pgx.Row) (*Demanda, error) {
	var d Demanda
	if err := row.Scan(&d.ID, &d.EventoID, &d.Titulo, &d.Assunto, &d.Data, &d.Concluida, &d.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
