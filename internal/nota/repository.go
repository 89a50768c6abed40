package nota

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de notas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notaColunas = "id, titulo, assunto, data, autor, criado_em"

// List devolve todas as notas, da mais recente para a mais antiga.
func (r *Repository) List(ctx context.Context) ([]Nota, error) {
	const query = `
        SELECT ` + notaColunas + `
        FROM notas
        ORDER BY data DESC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notas []Nota
	for rows.Next() {
		n, err := scanNota(rows)
		if err != nil {
			return nil, err
		}
		notas = append(notas, *n)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return notas, nil
}

// Create insere uma nova nota.
func (r *Repository) Create(ctx context.Context, input CreateNotaInput) (*Nota, error) {
	const query = `
        INSERT INTO notas (titulo, assunto, data, autor)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + notaColunas + `
    `

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Titulo),
		strings.TrimSpace(input.Assunto),
		input.Data,
		strings.TrimSpace(input.Autor),
	)

	return scanNota(row)
}

// Update aplica atualização parcial sobre a nota.
func (r *Repository) Update(ctx context.Context, input UpdateNotaInput) (*Nota, error) {
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
	if input.Autor != nil {
		setParts = append(setParts, fmt.Sprintf("autor = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Autor))
		idx++
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE notas
        SET %s
        WHERE id = $%d
        RETURNING `+notaColunas+`
    `, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanNota(row)
}

// Get busca uma nota específica.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Nota, error) {
	const query = `
        SELECT ` + notaColunas + `
        FROM notas
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanNota(row)
}

// Delete remove a nota.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNota(row pgx.Row) (*Nota, error) {
	var n Nota
	if err := row.Scan(&n.ID, &n.Titulo, &n.Assunto, &n.Data, &n.Autor, &n.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
