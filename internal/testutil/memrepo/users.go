package memrepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.UserRepository  = (*UserRepo)(nil)
	_ repository.GroupRepository = (*GroupRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Create"); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrUsernameAlreadyExists
		}
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepo) get(match func(*entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			c := cloneUser(u)
			c.Groups = r.s.groupNames(u.ID)
			return c
		}
	}
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Update"); err != nil {
		return err
	}
	cur, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	next := cloneUser(user)
	next.Username = cur.Username
	next.PasswordHash = cur.PasswordHash
	next.LastLogin = cur.LastLogin
	next.CreatedAt = cur.CreatedAt
	r.s.users[user.ID] = next
	return nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.UpdatePassword"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		t := at
		u.LastLogin = &t
	}
	return nil
}

func (r *UserRepo) List(_ context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.List"); err != nil {
		return nil, err
	}
	// Igual que pgx: un id que no es UUID no se puede codificar en el filtro.
	for _, id := range filter.CompanyIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list users: company id %q: %w", id, err)
		}
	}
	list := []*entity.User{}
	for _, u := range r.s.users {
		if filter.CompanyIDs != nil && !r.s.memberOfAny(u.ID, filter.CompanyIDs) {
			continue
		}
		c := cloneUser(u)
		c.Groups = r.s.groupNames(u.ID)
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Username < list[j].Username
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// memberOfAny requiere s.mu tomado.
func (s *Store) memberOfAny(userID string, companyIDs []string) bool {
	for _, m := range s.memberships {
		if m.UserID == userID && contains(companyIDs, m.CompanyID) {
			return true
		}
	}
	return false
}

func (r *UserRepo) SetGroups(_ context.Context, userID string, groupIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.SetGroups"); err != nil {
		return err
	}
	set := map[string]struct{}{}
	for _, id := range groupIDs {
		if _, ok := r.s.groups[id]; !ok {
			return domain.ErrNotFound
		}
		set[id] = struct{}{}
	}
	r.s.userGroups[userID] = set
	return nil
}

// Delete elimina el usuario y en cascada sus membresías, grupos y registros.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	delete(r.s.userGroups, id)
	for mid, m := range r.s.memberships {
		if m.UserID == id {
			delete(r.s.memberships, mid)
		}
	}
	kept := r.s.logs[:0]
	for _, l := range r.s.logs {
		if l.UserID != id {
			kept = append(kept, l)
		}
	}
	r.s.logs = kept
	return nil
}

// GroupRepo grupos en memoria.
type GroupRepo struct{ s *Store }

func (r *GroupRepo) Create(_ context.Context, group *entity.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.groups {
		if g.Name == group.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *group
	r.s.groups[group.ID] = &cp
	return nil
}

// userCount requiere s.mu tomado.
func (s *Store) userCount(groupID string) int {
	n := 0
	for _, set := range s.userGroups {
		if _, ok := set[groupID]; ok {
			n++
		}
	}
	return n
}

func (r *GroupRepo) GetByID(_ context.Context, id string) (*entity.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.UserCount = r.s.userCount(id)
	return &cp, nil
}

func (r *GroupRepo) GetByNames(_ context.Context, names []string) ([]*entity.Group, error) {
	all, _ := r.List(context.Background())
	out := []*entity.Group{}
	for _, g := range all {
		if contains(names, g.Name) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *GroupRepo) Update(_ context.Context, group *entity.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.groups[group.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, g := range r.s.groups {
		if g.ID != group.ID && g.Name == group.Name {
			return domain.ErrDuplicate
		}
	}
	cur.Name = group.Name
	return nil
}

func (r *GroupRepo) List(_ context.Context) ([]*entity.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.Group{}
	for _, g := range r.s.groups {
		cp := *g
		cp.UserCount = r.s.userCount(g.ID)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *GroupRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.groups, id)
	for _, set := range r.s.userGroups {
		delete(set, id)
	}
	return nil
}
