package entity

import "time"

// ActivityType tipo de evento de auditoría.
type ActivityType string

// Conjunto cerrado de tipos aceptados por la API.
const (
	ActivityLogin                 ActivityType = "login"
	ActivityLogout                ActivityType = "logout"
	ActivityPasswordChange        ActivityType = "password_change"
	ActivityPasswordChangeFailed  ActivityType = "password_change_failed"
	ActivityProfileUpdate         ActivityType = "profile_update"
	ActivityFailedLogin           ActivityType = "failed_login"
	ActivityUserCreated           ActivityType = "user_created"
	ActivityUserUpdated           ActivityType = "user_updated"
	ActivityUserDeleted           ActivityType = "user_deleted"
	ActivityTokenValidation       ActivityType = "token_validation"
	ActivityTokenValidationFailed ActivityType = "token_validation_failed"
	ActivityProfileFetch          ActivityType = "profile_fetch"
	ActivityProfileFetchFailed    ActivityType = "profile_fetch_failed"
	ActivityGroupCreated          ActivityType = "group_created"
	ActivityGroupUpdated          ActivityType = "group_updated"
	ActivityGroupDeleted          ActivityType = "group_deleted"
)

// ActivityPasswordChangeError lo registra solo el servidor cuando falla la persistencia
// del cambio de contraseña. No se acepta desde clientes.
const ActivityPasswordChangeError ActivityType = "password_change_error"

var publicActivityTypes = []ActivityType{
	ActivityLogin, ActivityLogout, ActivityPasswordChange, ActivityPasswordChangeFailed,
	ActivityProfileUpdate, ActivityFailedLogin, ActivityUserCreated, ActivityUserUpdated,
	ActivityUserDeleted, ActivityTokenValidation, ActivityTokenValidationFailed,
	ActivityProfileFetch, ActivityProfileFetchFailed, ActivityGroupCreated,
	ActivityGroupUpdated, ActivityGroupDeleted,
}

// ActivityTypes devuelve el conjunto cerrado aceptado por la API, en orden estable.
func ActivityTypes() []ActivityType {
	out := make([]ActivityType, len(publicActivityTypes))
	copy(out, publicActivityTypes)
	return out
}

// Valid informa si t pertenece al conjunto público.
func (t ActivityType) Valid() bool {
	for _, v := range publicActivityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Recordable informa si el servidor puede persistir t (públicos + internos).
func (t ActivityType) Recordable() bool {
	return t.Valid() || t == ActivityPasswordChangeError
}

// ActivityLog registro inmutable de un evento relevante para seguridad.
type ActivityLog struct {
	ID           string
	UserID       string // sujeto del registro
	CompanyID    string // vacío = sin empresa
	ActivityType ActivityType
	Details      string
	IPAddress    string // vacío = desconocida
	Timestamp    time.Time

	Username string // solo en lecturas
}
