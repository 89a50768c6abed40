package evento

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopalco/painel/internal/db"
)

// Repository provê acesso à tabela de eventos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventoColunas = "id, nome, data, logo_url, arquivado, criado_em"

// List devolve todos os eventos ordenados por data ascendente.
func (r *Repository) List(ctx context.Context) ([]Evento, error) {
	const query = `
        SELECT ` + eventoColunas + `
        FROM eventos
        ORDER BY data ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eventos []Evento
	for rows.Next() {
		ev, err := scanEvento(rows)
		if err != nil {
			return nil, err
		}
		eventos = append(eventos, *ev)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return eventos, nil
}

// Create insere um novo evento. Arquivado nasce sempre falso.
func (r *Repository) Create(ctx context.Context, input CreateEventoInput) (*Evento, error) {
	const query = `
        INSERT INTO eventos (nome, data, logo_url, arquivado)
        VALUES ($1, $2, $3, FALSE)
        RETURNING ` + eventoColunas + `
    `

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome),
		input.Data,
		input.LogoURL,
	)

	return scanEvento(row)
}

// Update aplica atualização parcial sobre o evento.
func (r *Repository) Update(ctx context.Context, input UpdateEventoInput) (*Evento, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Nome != nil {
		setParts = append(setParts, fmt.Sprintf("nome = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Nome))
		idx++
	}
	if input.Data != nil {
		setParts = append(setParts, fmt.Sprintf("data = $%d", idx))
		args = append(args, *input.Data)
		idx++
	}
	if input.LogoURL != nil {
		setParts = append(setParts, fmt.Sprintf("logo_url = $%d", idx))
		args = append(args, *input.LogoURL)
		idx++
	} else if input.ClearLogo {
		setParts = append(setParts, "logo_url = NULL")
	}
	if input.Arquivado != nil {
		setParts = append(setParts, fmt.Sprintf("arquivado = $%d", idx))
		args = append(args, *input.Arquivado)
		idx++
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE eventos
        SET %s
        WHERE id = $%d
        RETURNING `+eventoColunas+`
    `, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanEvento(row)
}

// Get busca um evento específico.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Evento, error) {
	const query = `
        SELECT ` + eventoColunas + `
        FROM eventos
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanEvento(row)
}

// Delete remove o evento e as demandas que pertencem a ele.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM demandas WHERE evento_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM eventos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func scanEvento(row pgx.Row) (*Evento, error) {
	var ev Evento
	if err := row.Scan(&ev.ID, &ev.Nome, &ev.Data, &ev.LogoURL, &ev.Arquivado, &ev.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}
