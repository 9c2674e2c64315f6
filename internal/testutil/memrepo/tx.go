package memrepo

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// TxRunner emula la transacción de usuario: si fn falla, restaura usuarios, grupos y membresías.
type TxRunner struct{ S *Store }

func (t TxRunner) RunUserTx(_ context.Context, fn func(
	users repository.UserRepository,
	memberships repository.CompanyUserRepository,
) error) error {
	t.S.mu.Lock()
	users := make(map[string]*entity.User, len(t.S.users))
	for k, v := range t.S.users {
		users[k] = v
	}
	memberships := make(map[string]*entity.CompanyUser, len(t.S.memberships))
	for k, v := range t.S.memberships {
		memberships[k] = v
	}
	userGroups := make(map[string]map[string]struct{}, len(t.S.userGroups))
	for k, v := range t.S.userGroups {
		userGroups[k] = v
	}
	t.S.mu.Unlock()

	if err := fn(t.S.Users(), t.S.Memberships()); err != nil {
		t.S.mu.Lock()
		t.S.users = users
		t.S.memberships = memberships
		t.S.userGroups = userGroups
		t.S.mu.Unlock()
		return err
	}
	return nil
}
