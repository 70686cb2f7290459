package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/andes-erp/cobranzas/internal/platform/db"
	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// Sentinel errors for payment persistence.
var (
	ErrNotFound         = fmt.Errorf("payments: pago: %w", httpx.ErrNotFound)
	ErrLineItemNotFound = fmt.Errorf("payments: detalle: %w", httpx.ErrNotFound)
)

const foreignKeyViolation = "23503"

// Repository provides PostgreSQL backed persistence for payments and
// their line items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = "id_pago, numero_pago, descripcion, fecha, id_cuenta, id_cliente, pdf_generado"
const lineItemColumns = "id_detalle, id_pago, id_factura, monto_pagado::text"

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var descripcion pgtype.Text
	var fecha time.Time
	if err := row.Scan(&p.ID, &p.Numero, &descripcion, &fecha, &p.IDCuenta, &p.IDCliente, &p.PDFGenerado); err != nil {
		return nil, err
	}
	if descripcion.Valid {
		p.Descripcion = &descripcion.String
	}
	p.Fecha = Date{fecha}
	p.Detalles = []LineItem{}
	return &p, nil
}

func scanLineItem(row pgx.Row) (*LineItem, error) {
	var li LineItem
	var monto string
	if err := row.Scan(&li.ID, &li.IDPago, &li.IDFactura, &monto); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(monto)
	if err != nil {
		return nil, fmt.Errorf("payments: parse monto_pagado %q: %w", monto, err)
	}
	li.MontoPagado = parsed
	return &li, nil
}

func collectLineItems(rows pgx.Rows) ([]LineItem, error) {
	defer rows.Close()
	items := []LineItem{}
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *li)
	}
	return items, rows.Err()
}

// GetAll returns every payment with its line items hydrated. Details for
// all headers are fetched with a single ANY($1) query.
func (r *Repository) GetAll(ctx context.Context) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+paymentColumns+" FROM pagos ORDER BY id_pago DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []Payment{}
	ids := []int64{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return payments, nil
	}

	detailRows, err := r.pool.Query(ctx,
		"SELECT "+lineItemColumns+" FROM pagos_detalle WHERE id_pago = ANY($1) ORDER BY id_detalle", ids)
	if err != nil {
		return nil, err
	}
	details, err := collectLineItems(detailRows)
	if err != nil {
		return nil, err
	}

	byPayment := make(map[int64][]LineItem, len(payments))
	for _, li := range details {
		byPayment[li.IDPago] = append(byPayment[li.IDPago], li)
	}
	for i := range payments {
		if items, ok := byPayment[payments[i].ID]; ok {
			payments[i].Detalles = items
		}
	}
	return payments, nil
}

// GetByID returns one payment with its line items, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Payment, error) {
	return r.getByID(ctx, r.pool, id)
}

func (r *Repository) getByID(ctx context.Context, q queryer, id int64) (*Payment, error) {
	p, err := scanPayment(q.QueryRow(ctx, "SELECT "+paymentColumns+" FROM pagos WHERE id_pago = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx,
		"SELECT "+lineItemColumns+" FROM pagos_detalle WHERE id_pago = $1 ORDER BY id_detalle", id)
	if err != nil {
		return nil, err
	}
	p.Detalles, err = collectLineItems(rows)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a payment header.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `
		INSERT INTO pagos (numero_pago, descripcion, fecha, id_cuenta, id_cliente, pdf_generado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+paymentColumns,
		input.Numero, input.Descripcion, input.Fecha.Time, input.IDCuenta, input.IDCliente, input.PDFGenerado))
	if err != nil {
		return nil, translateConstraint(err, "id_cuenta inexistente")
	}
	return p, nil
}

// Update merges the patch onto the stored header inside a transaction.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Payment, error) {
	var updated *Payment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanPayment(tx.QueryRow(ctx,
			"SELECT "+paymentColumns+" FROM pagos WHERE id_pago = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if patch.Numero.Set && patch.Numero.Valid {
			current.Numero = patch.Numero.Value
		}
		if patch.Descripcion.Set {
			if patch.Descripcion.Valid {
				current.Descripcion = &patch.Descripcion.Value
			} else {
				current.Descripcion = nil
			}
		}
		if patch.Fecha.Set && patch.Fecha.Valid {
			current.Fecha = patch.Fecha.Value
		}
		if patch.IDCuenta.Set && patch.IDCuenta.Valid {
			current.IDCuenta = patch.IDCuenta.Value
		}
		if patch.IDCliente.Set && patch.IDCliente.Valid {
			current.IDCliente = patch.IDCliente.Value
		}
		if patch.PDFGenerado.Set && patch.PDFGenerado.Valid {
			current.PDFGenerado = patch.PDFGenerado.Value
		}

		updated, err = scanPayment(tx.QueryRow(ctx, `
			UPDATE pagos
			SET numero_pago = $1, descripcion = $2, fecha = $3, id_cuenta = $4, id_cliente = $5, pdf_generado = $6
			WHERE id_pago = $7
			RETURNING `+paymentColumns,
			current.Numero, current.Descripcion, current.Fecha.Time, current.IDCuenta,
			current.IDCliente, current.PDFGenerado, id))
		if err != nil {
			return translateConstraint(err, "id_cuenta inexistente")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, updated.ID)
}

// Delete removes a payment and its line items as a single atomic unit:
// the dependent rows go first, then the header, both or neither.
func (r *Repository) Delete(ctx context.Context, id int64) (*Payment, error) {
	var deleted *Payment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		p, err := r.getByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM pagos_detalle WHERE id_pago = $1", id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM pagos WHERE id_pago = $1", id); err != nil {
			return err
		}
		deleted = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// MarkPDFGenerated flips the receipt flag after a successful download.
func (r *Repository) MarkPDFGenerated(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "UPDATE pagos SET pdf_generado = true WHERE id_pago = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Line item operations ---

// ListLineItems returns every line item.
func (r *Repository) ListLineItems(ctx context.Context) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+lineItemColumns+" FROM pagos_detalle ORDER BY id_detalle")
	if err != nil {
		return nil, err
	}
	return collectLineItems(rows)
}

// ListLineItemsByPayment returns the line items owned by one payment.
func (r *Repository) ListLineItemsByPayment(ctx context.Context, paymentID int64) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+lineItemColumns+" FROM pagos_detalle WHERE id_pago = $1 ORDER BY id_detalle", paymentID)
	if err != nil {
		return nil, err
	}
	return collectLineItems(rows)
}

// GetLineItem returns one line item or ErrLineItemNotFound.
func (r *Repository) GetLineItem(ctx context.Context, id int64) (*LineItem, error) {
	li, err := scanLineItem(r.pool.QueryRow(ctx,
		"SELECT "+lineItemColumns+" FROM pagos_detalle WHERE id_detalle = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLineItemNotFound
	}
	return li, err
}

// GetPaymentLineItem returns one line item scoped to its owning payment.
func (r *Repository) GetPaymentLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error) {
	li, err := scanLineItem(r.pool.QueryRow(ctx,
		"SELECT "+lineItemColumns+" FROM pagos_detalle WHERE id_pago = $1 AND id_detalle = $2", paymentID, lineID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLineItemNotFound
	}
	return li, err
}

// CreateLineItem inserts a line item.
func (r *Repository) CreateLineItem(ctx context.Context, input CreateLineItemInput) (*LineItem, error) {
	li, err := scanLineItem(r.pool.QueryRow(ctx, `
		INSERT INTO pagos_detalle (id_pago, id_factura, monto_pagado)
		VALUES ($1, $2, $3)
		RETURNING `+lineItemColumns,
		input.IDPago, input.IDFactura, input.MontoPagado))
	if err != nil {
		return nil, translateConstraint(err, "id_pago inexistente")
	}
	return li, nil
}

// UpdateLineItem merges the patch onto one line item. When paymentID is
// nonzero the update is scoped to that owning payment.
func (r *Repository) UpdateLineItem(ctx context.Context, paymentID, lineID int64, patch LineItemPatch) (*LineItem, error) {
	var updated *LineItem
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := "SELECT " + lineItemColumns + " FROM pagos_detalle WHERE id_detalle = $1"
		args := []any{lineID}
		if paymentID != 0 {
			query += " AND id_pago = $2"
			args = append(args, paymentID)
		}
		current, err := scanLineItem(tx.QueryRow(ctx, query+" FOR UPDATE", args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLineItemNotFound
		}
		if err != nil {
			return err
		}

		if patch.IDPago.Set && patch.IDPago.Valid {
			current.IDPago = patch.IDPago.Value
		}
		if patch.IDFactura.Set && patch.IDFactura.Valid {
			current.IDFactura = patch.IDFactura.Value
		}
		if patch.MontoPagado.Set && patch.MontoPagado.Valid {
			current.MontoPagado = patch.MontoPagado.Value
		}

		updated, err = scanLineItem(tx.QueryRow(ctx, `
			UPDATE pagos_detalle
			SET id_pago = $1, id_factura = $2, monto_pagado = $3
			WHERE id_detalle = $4
			RETURNING `+lineItemColumns,
			current.IDPago, current.IDFactura, current.MontoPagado, lineID))
		if err != nil {
			return translateConstraint(err, "id_pago inexistente")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLineItem removes one line item, optionally scoped to its payment.
func (r *Repository) DeleteLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error) {
	query := "DELETE FROM pagos_detalle WHERE id_detalle = $1"
	args := []any{lineID}
	if paymentID != 0 {
		query += " AND id_pago = $2"
		args = append(args, paymentID)
	}
	li, err := scanLineItem(r.pool.QueryRow(ctx, query+" RETURNING "+lineItemColumns, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLineItemNotFound
	}
	return li, err
}

// translateConstraint maps foreign key violations to validation errors so
// they surface as 400, not 500.
func translateConstraint(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, message)
	}
	return err
}
