package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/testutil/memrepo"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

const (
	companyC = "11111111-1111-1111-1111-111111111111"
	companyE = "22222222-2222-2222-2222-222222222222"

	adminID    = "aaaaaaaa-0000-0000-0000-000000000001"
	staffID    = "aaaaaaaa-0000-0000-0000-000000000002"
	outsiderID = "aaaaaaaa-0000-0000-0000-000000000003"
	superID    = "aaaaaaaa-0000-0000-0000-000000000004"

	testPassword = "secreto-123"
)

type fixture struct {
	store    *memrepo.Store
	eval     *authz.Evaluator
	resolver *authz.TenantResolver
	recorder *audit.Logger
	today    time.Time

	admin    *entity.User // administrador de C
	staff    *entity.User // miembro de C sin administración
	outsider *entity.User // administrador de E
	super    *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	s := memrepo.New()
	s.AddCompany(&entity.Company{ID: companyC, Name: "C", BusinessName: "C S.A.S.", TaxID: "900-1", IsActive: true})
	s.AddCompany(&entity.Company{ID: companyE, Name: "E", BusinessName: "E S.A.S.", TaxID: "900-2", IsActive: true})

	user := func(id, username string, super bool) *entity.User {
		return s.AddUser(&entity.User{
			ID: id, Username: username, Email: username + "@example.com",
			PasswordHash: string(hash), IsActive: true, IsSuperuser: super,
		})
	}
	today := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		store:    s,
		eval:     authz.NewEvaluator(s.Memberships(), s.Modules()).WithClock(func() time.Time { return today }),
		resolver: authz.NewTenantResolver(s.Companies()),
		recorder: audit.NewLogger(s.ActivityLogs(), logger.Nop(), 0),
		today:    today,
		admin:    user(adminID, "admin", false),
		staff:    user(staffID, "staff", false),
		outsider: user(outsiderID, "outsider", false),
		super:    user(superID, "root", true),
	}
	s.AddMembership(&entity.CompanyUser{ID: "bbbbbbbb-0000-0000-0000-000000000001", UserID: adminID, CompanyID: companyC, Role: entity.RoleAdmin, IsCompanyAdmin: true, IsActive: true})
	s.AddMembership(&entity.CompanyUser{ID: "bbbbbbbb-0000-0000-0000-000000000002", UserID: staffID, CompanyID: companyC, Role: entity.RoleStaff, IsActive: true})
	s.AddMembership(&entity.CompanyUser{ID: "bbbbbbbb-0000-0000-0000-000000000003", UserID: outsiderID, CompanyID: companyE, Role: entity.RoleAdmin, IsCompanyAdmin: true, IsActive: true})
	return f
}

// caller arma el contexto de petición con el selector raw ("" = sin empresa).
func (f *fixture) caller(t *testing.T, u *entity.User, raw string) usecase.Caller {
	t.Helper()
	tn, err := f.resolver.Resolve(context.Background(), raw)
	require.NoError(t, err)
	return usecase.Caller{User: u, Tenant: tn, IP: "10.0.0.1"}
}

func (f *fixture) users() *usecase.UserUseCase {
	return usecase.NewUserUseCase(f.store.Users(), f.store.Groups(), f.store.Memberships(), f.eval, memrepo.TxRunner{S: f.store}, f.recorder)
}
