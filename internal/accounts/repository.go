package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andes-erp/cobranzas/internal/platform/db"
	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// ErrNotFound indicates the account does not exist.
var ErrNotFound = fmt.Errorf("accounts: %w", httpx.ErrNotFound)

// Repository provides PostgreSQL backed persistence for bank accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = "id_cuenta, nombre_cuenta, entidad_bancaria, descripcion, estado"

func scanAccount(row pgx.Row) (*BankAccount, error) {
	var acc BankAccount
	var descripcion pgtype.Text
	if err := row.Scan(&acc.ID, &acc.Nombre, &acc.Entidad, &descripcion, &acc.Estado); err != nil {
		return nil, err
	}
	if descripcion.Valid {
		acc.Descripcion = &descripcion.String
	}
	return &acc, nil
}

// GetAll returns every account.
func (r *Repository) GetAll(ctx context.Context) ([]BankAccount, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+accountColumns+" FROM cuentas_bancarias ORDER BY id_cuenta")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []BankAccount{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// GetByID returns one account or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*BankAccount, error) {
	acc, err := scanAccount(r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM cuentas_bancarias WHERE id_cuenta = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return acc, err
}

// Create inserts a new account and returns the stored row.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*BankAccount, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		INSERT INTO cuentas_bancarias (nombre_cuenta, entidad_bancaria, descripcion, estado)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		input.Nombre, input.Entidad, input.Descripcion, *input.Estado))
}

// Update merges the patch onto the stored row inside a transaction so the
// read-modify-write is atomic.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*BankAccount, error) {
	var updated *BankAccount
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanAccount(tx.QueryRow(ctx,
			"SELECT "+accountColumns+" FROM cuentas_bancarias WHERE id_cuenta = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if patch.Nombre.Set && patch.Nombre.Valid {
			current.Nombre = patch.Nombre.Value
		}
		if patch.Entidad.Set && patch.Entidad.Valid {
			current.Entidad = patch.Entidad.Value
		}
		if patch.Descripcion.Set {
			if patch.Descripcion.Valid {
				current.Descripcion = &patch.Descripcion.Value
			} else {
				current.Descripcion = nil
			}
		}
		if patch.Estado.Set && patch.Estado.Valid {
			current.Estado = patch.Estado.Value
		}

		updated, err = scanAccount(tx.QueryRow(ctx, `
			UPDATE cuentas_bancarias
			SET nombre_cuenta = $1, entidad_bancaria = $2, descripcion = $3, estado = $4
			WHERE id_cuenta = $5
			RETURNING `+accountColumns,
			current.Nombre, current.Entidad, current.Descripcion, current.Estado, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an account and returns the deleted row, or ErrNotFound
// when there was nothing to delete.
func (r *Repository) Delete(ctx context.Context, id int64) (*BankAccount, error) {
	acc, err := scanAccount(r.pool.QueryRow(ctx,
		"DELETE FROM cuentas_bancarias WHERE id_cuenta = $1 RETURNING "+accountColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return acc, err
}
