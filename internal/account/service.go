package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByCode(ctx context.Context, code string) (*Account, error)
	ListAccounts(ctx context.Context, filter ListFilter) ([]*Account, error)
	UpdateAccount(ctx context.Context, a *Account) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	CountPostedReferences(ctx context.Context, id uuid.UUID) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Code        string
	Name        string
	Type        Type
	Subtype     Subtype
	ParentID    *uuid.UUID
	Description string
}

type ListFilter struct {
	Type   *Type
	Active *bool
	Search string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Account, error) {
	if strings.TrimSpace(params.Code) == "" {
		return nil, &ValidationError{Field: "code", Reason: "required"}
	}

	if strings.TrimSpace(params.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	if !ValidType(params.Type) {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown account type %q", params.Type)}
	}

	if !ValidSubtype(params.Type, params.Subtype) {
		return nil, &ValidationError{Field: "subtype", Reason: fmt.Sprintf("%q is not a %s subtype", params.Subtype, params.Type)}
	}

	existing, err := s.repo.GetAccountByCode(ctx, params.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking code: %w", err)
	}

	if existing != nil {
		return nil, ErrCodeExists
	}

	if params.ParentID != nil {
		if _, err := s.repo.GetAccount(ctx, *params.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, &ValidationError{Field: "parent", Reason: "parent account does not exist"}
			}

			return nil, fmt.Errorf("resolving parent: %w", err)
		}
	}

	a := &Account{
		Code:        strings.TrimSpace(params.Code),
		Name:        strings.TrimSpace(params.Name),
		Type:        params.Type,
		Subtype:     params.Subtype,
		ParentID:    params.ParentID,
		Description: params.Description,
		IsActive:    true,
	}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Account, error) {
	return s.repo.GetAccountByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, filter)
}

type UpdateParams struct {
	Name        *string
	Subtype     *Subtype
	ParentID    *uuid.UUID
	ClearParent bool
	Description *string
}

// Update applies the mutable fields. Balance and code are not updatable;
// balance belongs to the posting engine and code is the account's identity.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Account, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, &ValidationError{Field: "name", Reason: "required"}
		}

		a.Name = strings.TrimSpace(*params.Name)
	}

	if params.Subtype != nil {
		if !ValidSubtype(a.Type, *params.Subtype) {
			return nil, &ValidationError{Field: "subtype", Reason: fmt.Sprintf("%q is not a %s subtype", *params.Subtype, a.Type)}
		}

		a.Subtype = *params.Subtype
	}

	if params.Description != nil {
		a.Description = *params.Description
	}

	switch {
	case params.ClearParent:
		a.ParentID = nil
	case params.ParentID != nil:
		if err := s.checkParent(ctx, id, *params.ParentID); err != nil {
			return nil, err
		}

		a.ParentID = params.ParentID
	}

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// checkParent walks the ancestor chain from the proposed parent and rejects
// the update if it would make the account its own ancestor.
func (s *Service) checkParent(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return ErrParentCycle
	}

	seen := map[uuid.UUID]bool{id: true}

	current := parentID
	for {
		if seen[current] {
			return ErrParentCycle
		}

		seen[current] = true

		ancestor, err := s.repo.GetAccount(ctx, current)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return &ValidationError{Field: "parent", Reason: "parent account does not exist"}
			}

			return fmt.Errorf("walking ancestors: %w", err)
		}

		if ancestor.ParentID == nil {
			return nil
		}

		current = *ancestor.ParentID
	}
}

// Deactivate soft-deletes an account. Accounts referenced by posted
// transactions are protected unless force is set.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, force bool) error {
	if _, err := s.repo.GetAccount(ctx, id); err != nil {
		return err
	}

	if !force {
		refs, err := s.repo.CountPostedReferences(ctx, id)
		if err != nil {
			return fmt.Errorf("counting references: %w", err)
		}

		if refs > 0 {
			return ErrInUse
		}
	}

	return s.repo.SetActive(ctx, id, false)
}
