package dto

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest entrada para el auto-registro (sin membresías ni flags).
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginUser datos del usuario incluidos en la respuesta de login.
type LoginUser struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	IsSuperuser   bool     `json:"is_superuser"`
	IsSystemAdmin bool     `json:"is_system_admin"`
	Groups        []string `json:"groups"`
}

// LoginCompany empresa con el rol del usuario y sus módulos habilitados.
type LoginCompany struct {
	CompanyResponse
	Role    string           `json:"role"`
	IsAdmin bool             `json:"is_admin"`
	Modules []ModuleResponse `json:"modules"`
}

// LoginResponse par de tokens, usuario y empresas accesibles.
type LoginResponse struct {
	Access    string         `json:"access"`
	Refresh   string         `json:"refresh"`
	User      LoginUser      `json:"user"`
	Companies []LoginCompany `json:"companies"`
}

// RefreshRequest entrada para renovar el token de acceso.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RefreshResponse nuevo token de acceso.
type RefreshResponse struct {
	Access string `json:"access"`
}

// VerifyRequest entrada para verificar un token.
type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyResponse resultado de la verificación.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}
