package entity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

func TestNormalizeUsername(t *testing.T) {
	// "ｊｕａｎ" (ancho completo) y "juan" son el mismo nombre tras NFKC.
	assert.Equal(t, "juan", entity.NormalizeUsername(" ｊｕａｎ "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Ana.Perez@example.com", entity.NormalizeEmail(" Ana.Perez@EXAMPLE.Com "))
	assert.Equal(t, "sin-arroba", entity.NormalizeEmail("sin-arroba"))
}

func TestValidateUsername(t *testing.T) {
	assert.Empty(t, entity.ValidateUsername("ana.perez+1@x"))
	assert.NotEmpty(t, entity.ValidateUsername(""))
	assert.NotEmpty(t, entity.ValidateUsername("con espacio"))
}

func TestValidateEmail(t *testing.T) {
	assert.Empty(t, entity.ValidateEmail("ana@example.com"))
	assert.NotEmpty(t, entity.ValidateEmail("Ana <ana@example.com>"))
	assert.NotEmpty(t, entity.ValidateEmail("no-es-email"))
}

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, entity.ValidatePassword("clave-segura-1"))
	assert.NotEmpty(t, entity.ValidatePassword("corta"))
	assert.Empty(t, entity.ValidatePassword(strings.Repeat("a", entity.MaxPasswordBytes)))
	assert.NotEmpty(t, entity.ValidatePassword(strings.Repeat("a", entity.MaxPasswordBytes+1)))
	// 30 runas de 3 bytes: pasa el mínimo en caracteres pero excede el límite de bcrypt.
	assert.NotEmpty(t, entity.ValidatePassword(strings.Repeat("€", 30)))
}

func TestCompanyModule_EnabledOn(t *testing.T) {
	day := time.Date(2026, 5, 20, 23, 59, 0, 0, time.UTC)
	today := entity.DateOf(day)
	yesterday := today.AddDate(0, 0, -1)

	assert.True(t, (&entity.CompanyModule{IsActive: true}).EnabledOn(day), "sin vencimiento")
	assert.True(t, (&entity.CompanyModule{IsActive: true, ExpirationDate: &today}).EnabledOn(day), "vence hoy")
	assert.False(t, (&entity.CompanyModule{IsActive: true, ExpirationDate: &yesterday}).EnabledOn(day))
	assert.False(t, (&entity.CompanyModule{IsActive: false}).EnabledOn(day))
	var nilModule *entity.CompanyModule
	assert.False(t, nilModule.EnabledOn(day))
}

func TestActivityType_Conjuntos(t *testing.T) {
	assert.Len(t, entity.ActivityTypes(), 16)
	assert.True(t, entity.ActivityLogin.Valid())
	assert.False(t, entity.ActivityPasswordChangeError.Valid(), "no se acepta desde clientes")
	assert.True(t, entity.ActivityPasswordChangeError.Recordable())
	assert.False(t, entity.ActivityType("otro").Recordable())
}

func TestUser_IsPrivileged(t *testing.T) {
	var nobody *entity.User
	assert.False(t, nobody.IsPrivileged())
	assert.True(t, (&entity.User{IsSuperuser: true}).IsPrivileged())
	assert.True(t, (&entity.User{IsSystemAdmin: true}).IsPrivileged())
	assert.False(t, (&entity.User{IsStaff: true}).IsPrivileged(), "is_staff no da privilegios de tenant")
}
