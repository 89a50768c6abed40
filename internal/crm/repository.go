package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de registros de CRM.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const registroColunas = "id, nome, contato, email, assunto, arquivo_url, data, concluido, status, criado_em"

// List devolve todos os registros ordenados por data ascendente.
func (r *Repository) List(ctx context.Context) ([]Registro, error) {
	const query = `
        SELECT ` + registroColunas + `
        FROM crm_registros
        ORDER BY data ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registros []Registro
	for rows.Next() {
		reg, err := scanRegistro(rows)
		if err != nil {
			return nil, err
		}
		registros = append(registros, *reg)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return registros, nil
}

// Create insere um novo registro de CRM.
func (r *Repository) Create(ctx context.Context, input CreateRegistroInput) (*Registro, error) {
	const query = `
        INSERT INTO crm_registros (nome, contato, email, assunto, arquivo_url, data, concluido, status)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
        RETURNING ` + registroColunas + `
    `

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome),
		strings.TrimSpace(input.Contato),
		strings.TrimSpace(input.Email),
		strings.TrimSpace(input.Assunto),
		input.ArquivoURL,
		input.Data,
		input.Status,
	)

	return scanRegistro(row)
}

// Update aplica atualização parcial sobre o registro.
func (r *Repository) Update(ctx context.Context, input UpdateRegistroInput) (*Registro, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Nome != nil {
		setParts = append(setParts, fmt.Sprintf("nome = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Nome))
		idx++
	}
	if input.Contato != nil {
		setParts = append(setParts, fmt.Sprintf("contato = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Contato))
		idx++
	}
	if input.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Email))
		idx++
	}
	if input.Assunto != nil {
		setParts = append(setParts, fmt.Sprintf("assunto = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Assunto))
		idx++
	}
	if input.ArquivoURL != nil {
		setParts = append(setParts, fmt.Sprintf("arquivo_url = $%d", idx))
		args = append(args, *input.ArquivoURL)
		idx++
	} else if input.ClearArquivo {
		setParts = append(setParts, "arquivo_url = NULL")
	}
	if input.Data != nil {
		setParts = append(setParts, fmt.Sprintf("data = $%d", idx))
		args = append(args, *input.Data)
		idx++
	}
	if input.Concluido != nil {
		setParts = append(setParts, fmt.Sprintf("concluido = $%d", idx))
		args = append(args, *input.Concluido)
		idx++
	}
	if input.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, *input.Status)
		idx++
	} else if input.ClearStatus {
		setParts = append(setParts, "status = NULL")
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE crm_registros
        SET %s
        WHERE id = $%d
        RETURNING `+registroColunas+`
    `, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanRegistro(row)
}

// Get busca um registro específico.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Registro, error) {
	const query = `
        SELECT ` + registroColunas + `
        FROM crm_registros
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanRegistro(row)
}

// Delete remove o registro.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crm_registros WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRegistro(row pgx.Row) (*Registro, error) {
	var reg Registro
	if err := row.Scan(&reg.ID, &reg.Nome, &reg.Contato, &reg.Email, &reg.Assunto, &reg.ArquivoURL, &reg.Data, &reg.Concluido, &reg.Status, &reg.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}
