// Package accounts implements CRUD over bank accounts
// (cuentas_bancarias). Accounts have no cross-entity invariants.
package accounts

import "github.com/andes-erp/cobranzas/internal/platform/httpx"

// BankAccount model.
type BankAccount struct {
	ID          int64   `json:"id_cuenta"`
	Nombre      string  `json:"nombre_cuenta"`
	Entidad     string  `json:"entidad_bancaria"`
	Descripcion *string `json:"descripcion"`
	Estado      bool    `json:"estado"`
}

// CreateInput is the fully-populated command for account creation. Estado
// is a pointer so an absent flag fails validation instead of defaulting.
type CreateInput struct {
	Nombre      string  `json:"nombre_cuenta" validate:"required"`
	Entidad     string  `json:"entidad_bancaria" validate:"required"`
	Descripcion *string `json:"descripcion"`
	Estado      *bool   `json:"estado" validate:"required"`
}

// Patch distinguishes absent fields (keep stored value) from explicit
// nulls (clear nullable columns) on update.
type Patch struct {
	Nombre      httpx.Field[string] `json:"nombre_cuenta"`
	Entidad     httpx.Field[string] `json:"entidad_bancaria"`
	Descripcion httpx.Field[string] `json:"descripcion"`
	Estado      httpx.Field[bool]   `json:"estado"`
}
