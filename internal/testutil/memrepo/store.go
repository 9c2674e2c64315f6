// Package memrepo implementa en memoria los puertos de repository para las pruebas de
// casos de uso y de la capa HTTP. Respeta las mismas reglas que el adaptador PostgreSQL:
// unicidad, cascadas, filtros por empresa y (nil, nil) cuando no existe el registro.
package memrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// Store contiene el estado compartido por todos los repositorios en memoria.
type Store struct {
	mu          sync.Mutex
	users       map[string]*entity.User
	groups      map[string]*entity.Group
	userGroups  map[string]map[string]struct{} // user id -> group ids
	companies   map[string]*entity.Company
	memberships map[string]*entity.CompanyUser
	modules     map[string]*entity.CompanyModule
	logs        []*entity.ActivityLog
	categories  map[string]*entity.Category
	products    map[string]*entity.Product
	failures    map[string]error
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		users:       map[string]*entity.User{},
		groups:      map[string]*entity.Group{},
		userGroups:  map[string]map[string]struct{}{},
		companies:   map[string]*entity.Company{},
		memberships: map[string]*entity.CompanyUser{},
		modules:     map[string]*entity.CompanyModule{},
		categories:  map[string]*entity.Category{},
		products:    map[string]*entity.Product{},
		failures:    map[string]error{},
	}
}

// FailOn hace que la operación op (p. ej. "users.UpdatePassword") devuelva err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Groups repositorio de grupos.
func (s *Store) Groups() *GroupRepo { return &GroupRepo{s: s} }

// Companies repositorio de empresas.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s: s} }

// Memberships repositorio de membresías.
func (s *Store) Memberships() *CompanyUserRepo { return &CompanyUserRepo{s: s} }

// Modules repositorio de módulos por empresa.
func (s *Store) Modules() *CompanyModuleRepo { return &CompanyModuleRepo{s: s} }

// ActivityLogs repositorio del registro de actividad.
func (s *Store) ActivityLogs() *ActivityLogRepo { return &ActivityLogRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Logs devuelve una copia de los registros de actividad en orden de inserción.
func (s *Store) Logs() []entity.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ActivityLog, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, *l)
	}
	return out
}

// LogsOfType devuelve los registros del tipo indicado.
func (s *Store) LogsOfType(t entity.ActivityType) []entity.ActivityLog {
	var out []entity.ActivityLog
	for _, l := range s.Logs() {
		if l.ActivityType == t {
			out = append(out, l)
		}
	}
	return out
}

// MembershipCount cantidad de membresías (activas o no) para el par.
func (s *Store) MembershipCount(userID, companyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.memberships {
		if m.UserID == userID && m.CompanyID == companyID {
			n++
		}
	}
	return n
}

// ── Semillas ─────────────────────────────────────────────────────────────────

// AddUser inserta un usuario sin validar unicidad. Completa timestamps vacíos.
func (s *Store) AddUser(u *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&u.CreatedAt, &u.UpdatedAt)
	c := cloneUser(u)
	s.users[u.ID] = c
	return u
}

// AddCompany inserta una empresa.
func (s *Store) AddCompany(c *entity.Company) *entity.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&c.CreatedAt, &c.UpdatedAt)
	cp := *c
	s.companies[c.ID] = &cp
	return c
}

// AddMembership inserta una membresía.
func (s *Store) AddMembership(m *entity.CompanyUser) *entity.CompanyUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&m.CreatedAt, &m.UpdatedAt)
	s.memberships[m.ID] = cloneMembership(m)
	return m
}

// AddModule inserta un módulo.
func (s *Store) AddModule(m *entity.CompanyModule) *entity.CompanyModule {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&m.CreatedAt, &m.UpdatedAt)
	s.modules[m.ID] = cloneModule(m)
	return m
}

// AddGroup inserta un grupo.
func (s *Store) AddGroup(g *entity.Group) *entity.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	cp := *g
	s.groups[g.ID] = &cp
	return g
}

func stamp(created, updated *time.Time) {
	if created.IsZero() {
		*created = time.Now()
	}
	if updated.IsZero() {
		*updated = *created
	}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Groups = append([]string(nil), u.Groups...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func cloneMembership(m *entity.CompanyUser) *entity.CompanyUser {
	c := *m
	c.Company = nil
	c.User = nil
	return &c
}

func cloneModule(m *entity.CompanyModule) *entity.CompanyModule {
	c := *m
	c.Config = append([]byte(nil), m.Config...)
	if m.ExpirationDate != nil {
		t := *m.ExpirationDate
		c.ExpirationDate = &t
	}
	return &c
}

// groupNames nombres ordenados de los grupos del usuario. Requiere s.mu tomado.
func (s *Store) groupNames(userID string) []string {
	names := []string{}
	for gid := range s.userGroups[userID] {
		if g, ok := s.groups[gid]; ok {
			names = append(names, g.Name)
		}
	}
	sort.Strings(names)
	return names
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
