package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	users       repository.UserRepository
	groups      repository.GroupRepository
	memberships repository.CompanyUserRepository
	checker     authz.Checker
	tx          UserTxRunner
	audit       audit.Recorder
}

// NewUserUseCase construye el caso de uso con sus puertos.
func NewUserUseCase(
	users repository.UserRepository,
	groups repository.GroupRepository,
	memberships repository.CompanyUserRepository,
	checker authz.Checker,
	tx UserTxRunner,
	recorder audit.Recorder,
) *UserUseCase {
	return &UserUseCase{users: users, groups: groups, memberships: memberships, checker: checker, tx: tx, audit: recorder}
}

func toUserList(list []*entity.User) *dto.UserListResponse {
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, dto.UserFromEntity(u))
	}
	return &dto.UserListResponse{Items: items, Total: len(items)}
}

// List usuarios de la empresa seleccionada (regla 2) o todos para usuarios privilegiados.
func (uc *UserUseCase) List(ctx context.Context, c Caller) (*dto.UserListResponse, error) {
	if err := require(uc.checker.Authorize(ctx, c.User, c.Tenant, authz.LevelCompanyAdmin)); err != nil {
		return nil, err
	}
	filter := repository.UserFilter{}
	if !c.User.IsPrivileged() || c.Tenant.Valid() {
		filter.CompanyIDs = []string{c.CompanyID()}
	} else if c.Tenant.Selected() {
		// Privilegiado con selector inválido: nada que listar.
		filter.CompanyIDs = []string{}
	}
	list, err := uc.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toUserList(list), nil
}

// Manage usuarios de todas las empresas que el llamador administra (regla 4),
// opcionalmente restringidos a la empresa seleccionada.
func (uc *UserUseCase) Manage(ctx context.Context, c Caller) (*dto.UserListResponse, error) {
	scope, err := uc.checker.AdminScope(ctx, c.User)
	if err != nil {
		return nil, err
	}
	switch {
	case c.Tenant.Valid():
		scope = scope.Narrow(c.CompanyID())
	case c.Tenant.Selected():
		// Selector ilegible o empresa inexistente: nada que listar.
		scope = authz.Scope{CompanyIDs: []string{}}
	}
	list, err := uc.users.List(ctx, repository.UserFilter{CompanyIDs: scope.Filter()})
	if err != nil {
		return nil, err
	}
	return toUserList(list), nil
}

// validateNewUser normaliza y valida la entrada de creación.
func validateNewUser(in *dto.CreateUserRequest) error {
	in.Username = entity.NormalizeUsername(in.Username)
	in.Email = entity.NormalizeEmail(in.Email)
	v := &domain.ValidationError{}
	if msg := entity.ValidateUsername(in.Username); msg != "" {
		v.Add("username", msg)
	}
	if msg := entity.ValidateEmail(in.Email); msg != "" {
		v.Add("email", msg)
	}
	if msg := entity.ValidatePassword(in.Password); msg != "" {
		v.Add("password", msg)
	}
	if in.Role != "" && !entity.IsValidRole(in.Role) {
		v.Add("role", "debe ser admin, manager o staff")
	}
	if len(in.Phone) > 20 {
		v.Add("phone", "máximo 20 caracteres")
	}
	return v.OrNil()
}

func wantsPrivilegedFields(flags ...*bool) bool {
	for _, f := range flags {
		if f != nil {
			return true
		}
	}
	return false
}

// resolveGroups traduce nombres de grupo a ids. Un nombre desconocido es error de validación.
func (uc *UserUseCase) resolveGroups(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}
	found, err := uc.groups.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(found))
	for _, g := range found {
		byName[g.Name] = g.ID
	}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			return nil, domain.NewValidationError("groups", fmt.Sprintf("el grupo %q no existe", n))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Create crea un usuario. Con empresa seleccionada exige regla 2 y crea la membresía en la misma transacción.
// Sin empresa, solo usuarios privilegiados.
func (uc *UserUseCase) Create(ctx context.Context, c Caller, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := require(uc.checker.Authorize(ctx, c.User, c.Tenant, authz.LevelCompanyAdmin)); err != nil {
		return nil, err
	}
	if c.Tenant.Selected() && !c.Tenant.Valid() {
		return nil, domain.Denied(authz.ReasonNotMember)
	}
	privileged := c.User.IsPrivileged()
	if !privileged && (wantsPrivilegedFields(in.IsStaff, in.IsSuperuser, in.IsSystemAdmin) || len(in.Groups) > 0) {
		return nil, domain.Denied("solo un superusuario o administrador del sistema puede asignar privilegios o grupos")
	}
	if err := validateNewUser(&in); err != nil {
		return nil, err
	}
	groupIDs, err := uc.resolveGroups(ctx, in.Groups)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if privileged {
		user.IsStaff = boolOr(in.IsStaff, false)
		user.IsSuperuser = boolOr(in.IsSuperuser, false)
		user.IsSystemAdmin = boolOr(in.IsSystemAdmin, false)
	}
	user.IsActive = boolOr(in.IsActive, true)

	companyID := c.CompanyID()
	err = uc.tx.RunUserTx(ctx, func(users repository.UserRepository, memberships repository.CompanyUserRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			if err := users.SetGroups(ctx, user.ID, groupIDs); err != nil {
				return err
			}
		}
		if companyID == "" {
			return nil
		}
		role := in.Role
		if role == "" {
			role = entity.RoleStaff
		}
		return memberships.Create(ctx, &entity.CompanyUser{
			ID:             uuid.New().String(),
			UserID:         user.ID,
			CompanyID:      companyID,
			Role:           role,
			IsCompanyAdmin: in.IsCompanyAdmin,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	})
	if err != nil {
		return nil, mapUserConflict(err)
	}

	uc.audit.Record(ctx, c.entry(entity.ActivityUserCreated, "usuario creado: "+user.Username))
	created, err := uc.users.GetByID(ctx, user.ID)
	if err != nil || created == nil {
		out := dto.UserFromEntity(user)
		return &out, nil
	}
	out := dto.UserFromEntity(created)
	return &out, nil
}

// mapUserConflict traduce duplicados a errores de validación por campo.
func mapUserConflict(err error) error {
	switch {
	case errors.Is(err, domain.ErrUsernameAlreadyExists):
		return domain.NewValidationError("username", "ya existe un usuario con ese nombre")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return domain.NewValidationError("email", "ya existe un usuario con ese email")
	}
	return err
}

// access resuelve el usuario objetivo y verifica que el llamador pueda verlo:
// él mismo, un usuario privilegiado o el administrador de una empresa del objetivo.
// manage indica si además puede modificarlo: nunca sobre un usuario privilegiado si el llamador no lo es.
func (uc *UserUseCase) access(ctx context.Context, c Caller, id string) (target *entity.User, manage bool, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		if c.User.IsPrivileged() {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, errNoAccess
	}
	target, err = uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if target == nil {
		if c.User.IsPrivileged() {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, errNoAccess
	}
	if c.User.IsPrivileged() {
		return target, true, nil
	}
	shared, err := sharesAdminCompany(ctx, uc.checker, uc.memberships, c.User, target.ID)
	if err != nil {
		return nil, false, err
	}
	if shared {
		return target, !target.IsPrivileged(), nil
	}
	if target.ID == c.User.ID {
		return target, false, nil
	}
	return nil, false, errNoAccess
}

// Get obtiene un usuario si el llamador tiene acceso.
func (uc *UserUseCase) Get(ctx context.Context, c Caller, id string) (*dto.UserResponse, error) {
	target, _, err := uc.access(ctx, c, id)
	if err != nil {
		return nil, err
	}
	out := dto.UserFromEntity(target)
	return &out, nil
}

// Update aplica los campos permitidos. Flags y grupos solo para usuarios privilegiados;
// is_active para quien administra al usuario (no sobre sí mismo).
func (uc *UserUseCase) Update(ctx context.Context, c Caller, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	target, manage, err := uc.access(ctx, c, id)
	if err != nil {
		return nil, err
	}
	privileged := c.User.IsPrivileged()
	if !privileged && !manage && target.ID != c.User.ID {
		return nil, errNoManage
	}
	if !privileged && (wantsPrivilegedFields(in.IsStaff, in.IsSuperuser, in.IsSystemAdmin) || in.Groups != nil) {
		return nil, domain.Denied("solo un superusuario o administrador del sistema puede modificar privilegios o grupos")
	}
	if in.IsActive != nil && !privileged && (!manage || target.ID == c.User.ID) {
		return nil, domain.Denied("no puedes cambiar el estado de este usuario")
	}

	changed := applyProfile(target, in.Email, in.FirstName, in.LastName, in.Phone)
	if err := validateProfile(target); err != nil {
		return nil, err
	}
	if privileged {
		if in.IsStaff != nil {
			target.IsStaff = *in.IsStaff
			changed = append(changed, "is_staff")
		}
		if in.IsSuperuser != nil {
			target.IsSuperuser = *in.IsSuperuser
			changed = append(changed, "is_superuser")
		}
		if in.IsSystemAdmin != nil {
			target.IsSystemAdmin = *in.IsSystemAdmin
			changed = append(changed, "is_system_admin")
		}
	}
	if in.IsActive != nil {
		target.IsActive = *in.IsActive
		changed = append(changed, "is_active")
	}
	var groupIDs []string
	if in.Groups != nil {
		if groupIDs, err = uc.resolveGroups(ctx, *in.Groups); err != nil {
			return nil, err
		}
		changed = append(changed, "groups")
	}

	target.UpdatedAt = time.Now()
	err = uc.tx.RunUserTx(ctx, func(users repository.UserRepository, _ repository.CompanyUserRepository) error {
		if err := users.Update(ctx, target); err != nil {
			return err
		}
		if in.Groups == nil {
			return nil
		}
		return users.SetGroups(ctx, target.ID, groupIDs)
	})
	if err != nil {
		return nil, mapUserConflict(err)
	}

	sort.Strings(changed)
	uc.audit.Record(ctx, c.entry(entity.ActivityUserUpdated,
		fmt.Sprintf("usuario actualizado: %s (%s)", target.Username, strings.Join(changed, ", "))))
	return uc.reload(ctx, target)
}

// Delete elimina un usuario. El registro se atribuye al llamador: los del eliminado se borran en cascada.
// Sin privilegios, para eliminar a otro el llamador debe administrar todas las empresas del objetivo.
func (uc *UserUseCase) Delete(ctx context.Context, c Caller, id string) error {
	target, manage, err := uc.access(ctx, c, id)
	if err != nil {
		return err
	}
	if !c.User.IsPrivileged() && target.ID != c.User.ID {
		if !manage {
			return errNoManage
		}
		covered, err := adminCoversAll(ctx, uc.checker, uc.memberships, c.User, target.ID)
		if err != nil {
			return err
		}
		if !covered {
			return domain.Denied("el usuario pertenece a empresas que no administras")
		}
	}
	if err := uc.users.Delete(ctx, target.ID); err != nil {
		return err
	}
	uc.audit.Record(ctx, c.entry(entity.ActivityUserDeleted, "usuario eliminado: "+target.Username))
	return nil
}

// Me devuelve el perfil del llamador.
func (uc *UserUseCase) Me(ctx context.Context, c Caller) (*dto.UserResponse, error) {
	me, err := uc.users.GetByID(ctx, c.User.ID)
	if err != nil || me == nil {
		uc.audit.Record(ctx, c.entry(entity.ActivityProfileFetchFailed, "no se pudo obtener el perfil"))
		if err == nil {
			err = domain.ErrUserNotFound
		}
		return nil, err
	}
	uc.audit.Record(ctx, c.entry(entity.ActivityProfileFetch, "perfil consultado"))
	out := dto.UserFromEntity(me)
	return &out, nil
}

// UpdateProfile edita los datos personales del llamador.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, c Caller, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	me, err := uc.users.GetByID(ctx, c.User.ID)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, domain.ErrUserNotFound
	}
	changed := applyProfile(me, in.Email, in.FirstName, in.LastName, in.Phone)
	if err := validateProfile(me); err != nil {
		return nil, err
	}
	me.UpdatedAt = time.Now()
	if err := uc.users.Update(ctx, me); err != nil {
		return nil, mapUserConflict(err)
	}
	sort.Strings(changed)
	uc.audit.Record(ctx, c.entry(entity.ActivityProfileUpdate, "perfil actualizado: "+strings.Join(changed, ", ")))
	return uc.reload(ctx, me)
}

// Companies membresías activas de un usuario (él mismo o usuarios privilegiados).
func (uc *UserUseCase) Companies(ctx context.Context, c Caller, id string) ([]dto.MembershipResponse, error) {
	if id != c.User.ID && !c.User.IsPrivileged() {
		return nil, errNoAccess
	}
	target, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.memberships.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MembershipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MembershipFromEntity(m))
	}
	return out, nil
}

func (uc *UserUseCase) reload(ctx context.Context, u *entity.User) (*dto.UserResponse, error) {
	fresh, err := uc.users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		fresh = u
	}
	out := dto.UserFromEntity(fresh)
	return &out, nil
}

// applyProfile asigna los campos de perfil presentes y devuelve sus nombres.
func applyProfile(u *entity.User, email, first, last, phone *string) []string {
	changed := []string{}
	if email != nil {
		u.Email = entity.NormalizeEmail(*email)
		changed = append(changed, "email")
	}
	if first != nil {
		u.FirstName = strings.TrimSpace(*first)
		changed = append(changed, "first_name")
	}
	if last != nil {
		u.LastName = strings.TrimSpace(*last)
		changed = append(changed, "last_name")
	}
	if phone != nil {
		u.Phone = strings.TrimSpace(*phone)
		changed = append(changed, "phone")
	}
	return changed
}

func validateProfile(u *entity.User) error {
	v := &domain.ValidationError{}
	if msg := entity.ValidateEmail(u.Email); msg != "" {
		v.Add("email", msg)
	}
	if len(u.FirstName) > 150 {
		v.Add("first_name", "máximo 150 caracteres")
	}
	if len(u.LastName) > 150 {
		v.Add("last_name", "máximo 150 caracteres")
	}
	if len(u.Phone) > 20 {
		v.Add("phone", "máximo 20 caracteres")
	}
	return v.OrNil()
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
