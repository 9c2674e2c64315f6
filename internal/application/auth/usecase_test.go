package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/testutil/memrepo"
	"github.com/jhoicas/Gestion-api/pkg/jwt"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

const (
	company1 = "11111111-1111-1111-1111-111111111111"
	company2 = "22222222-2222-2222-2222-222222222222"
	userID   = "aaaaaaaa-0000-0000-0000-000000000001"
	password = "clave-segura-1"
	secret   = "test-secret-key-for-unit-tests"
)

type env struct {
	store *memrepo.Store
	uc    *auth.AuthUseCase
	user  *entity.User
	today time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	s := memrepo.New()
	today := time.Now().UTC()
	user := s.AddUser(&entity.User{ID: userID, Username: "ana", Email: "ana@example.com", PasswordHash: string(hash), IsActive: true})
	eval := authz.NewEvaluator(s.Memberships(), s.Modules())
	modules := usecase.NewModuleService(s.Modules(), s.Companies(), eval).WithClock(func() time.Time { return today })
	uc := auth.NewAuthUseCase(s.Users(), s.Memberships(), modules, audit.NewLogger(s.ActivityLogs(), logger.Nop(), 0), auth.JWTConfig{
		Secret: secret, ExpMinutes: 15, RefreshExpMinutes: 60, Issuer: "gestion-api-test",
	})
	return &env{store: s, uc: uc, user: user, today: today}
}

func (e *env) caller() usecase.Caller {
	return usecase.Caller{User: e.user, IP: "192.0.2.10"}
}

func TestLogin_EmpresasConModulosVigentes(t *testing.T) {
	e := newEnv(t)
	yesterday := e.today.AddDate(0, 0, -1)
	e.store.AddCompany(&entity.Company{ID: company1, Name: "C1", TaxID: "1", IsActive: true})
	e.store.AddCompany(&entity.Company{ID: company2, Name: "C2", TaxID: "2", IsActive: true})
	e.store.AddMembership(&entity.CompanyUser{ID: "m1", UserID: userID, CompanyID: company1, Role: entity.RoleStaff, IsActive: true})
	e.store.AddMembership(&entity.CompanyUser{ID: "m2", UserID: userID, CompanyID: company2, Role: entity.RoleAdmin, IsCompanyAdmin: true, IsActive: true})
	e.store.AddModule(&entity.CompanyModule{ID: "mod1", CompanyID: company1, Name: entity.ModuleInventory, IsActive: true})
	e.store.AddModule(&entity.CompanyModule{ID: "mod2", CompanyID: company2, Name: entity.ModuleSales, IsActive: true, ExpirationDate: &yesterday})

	out, err := e.uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: password}, "192.0.2.10")
	require.NoError(t, err)

	require.Len(t, out.Companies, 2)
	byID := map[string]dto.LoginCompany{}
	for _, c := range out.Companies {
		byID[c.ID] = c
	}
	require.Len(t, byID[company1].Modules, 1)
	assert.Equal(t, entity.ModuleInventory, byID[company1].Modules[0].Name)
	assert.Empty(t, byID[company2].Modules, "sales vencido ayer")
	assert.True(t, byID[company2].IsAdmin)

	claims, err := jwt.ParseType(secret, out.Access, jwt.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	_, err = jwt.ParseType(secret, out.Refresh, jwt.TokenRefresh)
	require.NoError(t, err)

	logs := e.store.LogsOfType(entity.ActivityLogin)
	require.Len(t, logs, 1)
	assert.Equal(t, "192.0.2.10", logs[0].IPAddress)
	u, _ := e.store.Users().GetByID(context.Background(), userID)
	assert.NotNil(t, u.LastLogin)
}

func TestLogin_Fallos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: password}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, e.store.Logs(), "usuario inexistente no deja registro")

	_, err = e.uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "otra"}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Len(t, e.store.LogsOfType(entity.ActivityFailedLogin), 1)

	_, err = e.uc.Login(ctx, dto.LoginRequest{}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChangePassword_UnRegistroPorIntento(t *testing.T) {
	cases := []struct {
		name    string
		current string
		next    string
		failOn  bool
		want    entity.ActivityType
		wantErr error
	}{
		{name: "actual incorrecta", current: "otra", next: "nueva-clave-1", want: entity.ActivityPasswordChangeFailed, wantErr: domain.ErrInvalidCurrentPassword},
		{name: "nueva muy corta", current: password, next: "corta", want: entity.ActivityPasswordChangeFailed, wantErr: domain.ErrInvalidInput},
		{name: "nueva excede 72 bytes", current: password, next: strings.Repeat("n", 80), want: entity.ActivityPasswordChangeFailed, wantErr: domain.ErrInvalidInput},
		{name: "exito", current: password, next: "nueva-clave-1", want: entity.ActivityPasswordChange},
		{name: "fallo al guardar", current: password, next: "nueva-clave-1", failOn: true, want: entity.ActivityPasswordChangeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			if tc.failOn {
				e.store.FailOn("users.UpdatePassword", errors.New("disco lleno"))
			}

			err := e.uc.ChangePassword(context.Background(), e.caller(), dto.ChangePasswordRequest{CurrentPassword: tc.current, NewPassword: tc.next})

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.failOn:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			logs := e.store.Logs()
			require.Len(t, logs, 1)
			assert.Equal(t, tc.want, logs[0].ActivityType)
			assert.NotContains(t, logs[0].Details, tc.current)
			assert.NotContains(t, logs[0].Details, tc.next)
		})
	}
}

func TestChangePassword_NuevaContraseñaFunciona(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.uc.ChangePassword(ctx, e.caller(), dto.ChangePasswordRequest{CurrentPassword: password, NewPassword: "nueva-clave-1"}))

	_, err := e.uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "nueva-clave-1"}, "")
	assert.NoError(t, err)
}

func TestChangePassword_CamposFaltantesSinRegistro(t *testing.T) {
	e := newEnv(t)

	err := e.uc.ChangePassword(context.Background(), e.caller(), dto.ChangePasswordRequest{CurrentPassword: password})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, e.store.Logs())
}

func TestVerify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	access, err := jwt.Generate(secret, userID, "ana", jwt.TokenAccess, "gestion-api-test", 5)
	require.NoError(t, err)
	out, err := e.uc.Verify(ctx, dto.VerifyRequest{Token: access}, "")
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Len(t, e.store.LogsOfType(entity.ActivityTokenValidation), 1)

	expired, err := jwt.Generate(secret, userID, "ana", jwt.TokenAccess, "gestion-api-test", -1)
	require.NoError(t, err)
	_, err = e.uc.Verify(ctx, dto.VerifyRequest{Token: expired}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Len(t, e.store.LogsOfType(entity.ActivityTokenValidationFailed), 1)

	_, err = e.uc.Verify(ctx, dto.VerifyRequest{Token: strings.Repeat("x", 40)}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Len(t, e.store.LogsOfType(entity.ActivityTokenValidationFailed), 1, "token falsificado no se atribuye")
}

func TestRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	refresh, err := jwt.Generate(secret, userID, "ana", jwt.TokenRefresh, "gestion-api-test", 5)
	require.NoError(t, err)
	out, err := e.uc.Refresh(ctx, dto.RefreshRequest{Refresh: refresh})
	require.NoError(t, err)
	_, err = jwt.ParseType(secret, out.Access, jwt.TokenAccess)
	assert.NoError(t, err)

	access, err := jwt.Generate(secret, userID, "ana", jwt.TokenAccess, "gestion-api-test", 5)
	require.NoError(t, err)
	_, err = e.uc.Refresh(ctx, dto.RefreshRequest{Refresh: access})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "un access no sirve como refresh")
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	out, err := e.uc.RegisterUser(ctx, dto.RegisterRequest{Username: "beto", Email: "beto@example.com", Password: "clave-segura-2"}, "")
	require.NoError(t, err)
	assert.False(t, out.IsSuperuser)
	assert.True(t, out.IsActive)

	_, err = e.uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Email: "otra@example.com", Password: "clave-segura-2"}, "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")

	_, err = e.uc.RegisterUser(ctx, dto.RegisterRequest{Username: "carla", Email: "carla@example.com", Password: strings.Repeat("c", 80)}, "")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
	u, err := e.store.Users().GetByUsername(ctx, "carla")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLogout_Registra(t *testing.T) {
	e := newEnv(t)

	e.uc.Logout(context.Background(), e.caller())

	assert.Len(t, e.store.LogsOfType(entity.ActivityLogout), 1)
}
