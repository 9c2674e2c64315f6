package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret            string
	ExpMinutes        int
	RefreshExpMinutes int
	Issuer            string
}

// ModuleLister módulos habilitados hoy por empresa (lo implementa usecase.ModuleService).
type ModuleLister interface {
	EnabledByCompany(ctx context.Context, companyIDs []string) (map[string][]*entity.CompanyModule, error)
}

// AuthUseCase casos de uso de autenticación: login, registro, tokens y cambio de contraseña.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	memberships repository.CompanyUserRepository
	modules     ModuleLister
	audit       audit.Recorder
	jwtCfg      JWTConfig
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	memberships repository.CompanyUserRepository,
	modules ModuleLister,
	recorder audit.Recorder,
	jwtCfg JWTConfig,
) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, memberships: memberships, modules: modules, audit: recorder, jwtCfg: jwtCfg, now: time.Now}
}

func (uc *AuthUseCase) record(ctx context.Context, userID string, t entity.ActivityType, details, ip string) {
	uc.audit.Record(ctx, audit.Entry{UserID: userID, Type: t, Details: details, IP: ip})
}

// Login verifica usuario/contraseña y devuelve el par de tokens, el usuario y sus empresas
// activas con los módulos habilitados. Un usuario inexistente no deja registro.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	username := entity.NormalizeUsername(in.Username)
	v := &domain.ValidationError{}
	if username == "" {
		v.Add("username", "es obligatorio")
	}
	if in.Password == "" {
		v.Add("password", "es obligatorio")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.record(ctx, user.ID, entity.ActivityFailedLogin, "contraseña incorrecta", ip)
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		uc.record(ctx, user.ID, entity.ActivityFailedLogin, "usuario inactivo", ip)
		return nil, domain.ErrInvalidCredentials
	}

	companies, err := uc.loginCompanies(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	access, refresh, err := uc.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.TouchLastLogin(ctx, user.ID, uc.now()); err != nil {
		return nil, err
	}
	uc.record(ctx, user.ID, entity.ActivityLogin, "inicio de sesión", ip)

	groups := user.Groups
	if groups == nil {
		groups = []string{}
	}
	return &dto.LoginResponse{
		Access:  access,
		Refresh: refresh,
		User: dto.LoginUser{
			ID:            user.ID,
			Username:      user.Username,
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			IsSuperuser:   user.IsSuperuser,
			IsSystemAdmin: user.IsSystemAdmin,
			Groups:        groups,
		},
		Companies: companies,
	}, nil
}

// loginCompanies membresías activas en empresas activas, cada una con sus módulos vigentes.
func (uc *AuthUseCase) loginCompanies(ctx context.Context, userID string) ([]dto.LoginCompany, error) {
	list, err := uc.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.CompanyID)
	}
	enabled, err := uc.modules.EnabledByCompany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LoginCompany, 0, len(list))
	for _, m := range list {
		if m.Company == nil {
			continue
		}
		out = append(out, dto.LoginCompany{
			CompanyResponse: dto.CompanyFromEntity(m.Company),
			Role:            m.Role,
			IsAdmin:         m.IsCompanyAdmin,
			Modules:         dto.ModulesFromEntities(enabled[m.CompanyID]),
		})
	}
	return out, nil
}

func (uc *AuthUseCase) issuePair(user *entity.User) (string, string, error) {
	access, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, jwt.TokenAccess, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", "", err
	}
	refresh, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, jwt.TokenRefresh, uc.jwtCfg.Issuer, uc.jwtCfg.RefreshExpMinutes)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// RegisterUser auto-registro: crea un usuario activo sin privilegios ni membresías.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest, ip string) (*dto.UserResponse, error) {
	username := entity.NormalizeUsername(in.Username)
	email := entity.NormalizeEmail(in.Email)
	v := &domain.ValidationError{}
	if msg := entity.ValidateUsername(username); msg != "" {
		v.Add("username", msg)
	}
	if msg := entity.ValidateEmail(email); msg != "" {
		v.Add("email", msg)
	}
	if msg := entity.ValidatePassword(in.Password); msg != "" {
		v.Add("password", msg)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameAlreadyExists):
			return nil, domain.NewValidationError("username", "ya existe un usuario con ese nombre")
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			return nil, domain.NewValidationError("email", "ya existe un usuario con ese email")
		}
		return nil, err
	}
	uc.record(ctx, user.ID, entity.ActivityUserCreated, "auto-registro", ip)
	out := dto.UserFromEntity(user)
	return &out, nil
}

// activeUser carga el usuario de unos claims; nil si no existe o está inactivo.
func (uc *AuthUseCase) activeUser(ctx context.Context, claims *jwt.Claims) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// Refresh emite un nuevo token de acceso a partir de un refresh válido.
func (uc *AuthUseCase) Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.RefreshResponse, error) {
	if in.Refresh == "" {
		return nil, domain.NewValidationError("refresh", "es obligatorio")
	}
	claims, err := jwt.ParseType(uc.jwtCfg.Secret, in.Refresh, jwt.TokenRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.activeUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	access, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, jwt.TokenAccess, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshResponse{Access: access}, nil
}

// Verify valida un token de acceso. Solo un token auténtico (firma válida) que resulte vencido
// o de otro tipo deja token_validation_failed; un token falsificado no tiene sujeto atribuible.
func (uc *AuthUseCase) Verify(ctx context.Context, in dto.VerifyRequest, ip string) (*dto.VerifyResponse, error) {
	if in.Token == "" {
		return nil, domain.NewValidationError("token", "es obligatorio")
	}
	claims, err := jwt.ParseType(uc.jwtCfg.Secret, in.Token, jwt.TokenAccess)
	if err != nil {
		if claims != nil {
			if user, lerr := uc.userRepo.GetByID(ctx, claims.UserID); lerr == nil && user != nil {
				reason := "token de tipo incorrecto"
				if jwt.IsExpired(err) {
					reason = "token vencido"
				}
				uc.record(ctx, user.ID, entity.ActivityTokenValidationFailed, reason, ip)
			}
		}
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.activeUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	uc.record(ctx, user.ID, entity.ActivityTokenValidation, "token verificado", ip)
	return &dto.VerifyResponse{Valid: true, UserID: user.ID, Username: user.Username}, nil
}

// Logout registra el cierre de sesión. Los tokens no tienen estado en el servidor:
// el cliente los descarta y vencen solos.
func (uc *AuthUseCase) Logout(ctx context.Context, c usecase.Caller) {
	uc.audit.Record(ctx, audit.Entry{UserID: c.User.ID, CompanyID: c.CompanyID(), Type: entity.ActivityLogout, Details: "cierre de sesión", IP: c.IP})
}

// ChangePassword cambia la contraseña del llamador. Cada intento con datos completos deja
// exactamente un registro: password_change_failed, password_change o password_change_error.
// Las contraseñas nunca se registran.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, c usecase.Caller, in dto.ChangePasswordRequest) error {
	v := &domain.ValidationError{}
	if in.CurrentPassword == "" {
		v.Add("current_password", "es obligatorio")
	}
	if in.NewPassword == "" {
		v.Add("new_password", "es obligatorio")
	}
	if err := v.OrNil(); err != nil {
		return err
	}
	entry := func(t entity.ActivityType, details string) audit.Entry {
		return audit.Entry{UserID: c.User.ID, CompanyID: c.CompanyID(), Type: t, Details: details, IP: c.IP}
	}

	user, err := uc.userRepo.GetByID(ctx, c.User.ID)
	if err != nil {
		uc.audit.Record(ctx, entry(entity.ActivityPasswordChangeError, "error al leer el usuario: "+err.Error()))
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		uc.audit.Record(ctx, entry(entity.ActivityPasswordChangeFailed, "contraseña actual incorrecta"))
		return domain.ErrInvalidCurrentPassword
	}
	if msg := entity.ValidatePassword(in.NewPassword); msg != "" {
		uc.audit.Record(ctx, entry(entity.ActivityPasswordChangeFailed, "nueva contraseña inválida"))
		return domain.NewValidationError("new_password", msg)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		uc.audit.Record(ctx, entry(entity.ActivityPasswordChangeError, "error al generar el hash: "+err.Error()))
		return err
	}
	if err := uc.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		uc.audit.Record(ctx, entry(entity.ActivityPasswordChangeError, "error al guardar la contraseña: "+err.Error()))
		return err
	}
	uc.audit.Record(ctx, entry(entity.ActivityPasswordChange, "contraseña actualizada"))
	return nil
}
