package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/andes-erp/cobranzas/internal/audit"
	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// RepositoryPort defines data access methods for bank accounts.
type RepositoryPort interface {
	GetAll(ctx context.Context) ([]BankAccount, error)
	GetByID(ctx context.Context, id int64) (*BankAccount, error)
	Create(ctx context.Context, input CreateInput) (*BankAccount, error)
	Update(ctx context.Context, id int64, patch Patch) (*BankAccount, error)
	Delete(ctx context.Context, id int64) (*BankAccount, error)
}

// Service handles bank account business logic.
type Service struct {
	repo  RepositoryPort
	audit *audit.Dispatcher
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, dispatcher *audit.Dispatcher) *Service {
	return &Service{repo: repo, audit: dispatcher}
}

const auditTable = "cuentas_bancarias"

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]BankAccount, error) {
	return s.repo.GetAll(ctx)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*BankAccount, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new account.
func (s *Service) Create(ctx context.Context, input CreateInput) (*BankAccount, error) {
	if strings.TrimSpace(input.Nombre) == "" {
		return nil, fmt.Errorf("%w: nombre_cuenta es requerido", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.Entidad) == "" {
		return nil, fmt.Errorf("%w: entidad_bancaria es requerida", httpx.ErrValidation)
	}
	if input.Estado == nil {
		return nil, fmt.Errorf("%w: estado es requerido", httpx.ErrValidation)
	}
	acc, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionInsert, auditTable, map[string]any{
		"id_cuenta":     acc.ID,
		"nombre_cuenta": acc.Nombre,
	}))
	return acc, nil
}

// Update merges the patch onto the stored account.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*BankAccount, error) {
	acc, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionUpdate, auditTable, map[string]any{
		"id_cuenta": acc.ID,
	}))
	return acc, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	acc, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionDelete, auditTable, map[string]any{
		"id_cuenta": acc.ID,
	}))
	return nil
}
