package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
// Los flags solo los aplica un superusuario o administrador del sistema.
type CreateUserRequest struct {
	Username      string   `json:"username" validate:"required,max=150"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=8"`
	FirstName     string   `json:"first_name" validate:"max=150"`
	LastName      string   `json:"last_name" validate:"max=150"`
	Phone         string   `json:"phone" validate:"max=20"`
	Groups        []string `json:"groups"`
	IsStaff       *bool    `json:"is_staff"`
	IsSuperuser   *bool    `json:"is_superuser"`
	IsSystemAdmin *bool    `json:"is_system_admin"`
	IsActive      *bool    `json:"is_active"`
	// Membresía inicial cuando hay empresa seleccionada.
	Role           string `json:"role" validate:"omitempty,oneof=admin manager staff"`
	IsCompanyAdmin bool   `json:"is_company_admin"`
}

// UpdateUserRequest campos editables de un usuario. nil = sin cambio.
type UpdateUserRequest struct {
	Email         *string   `json:"email" validate:"omitempty,email"`
	FirstName     *string   `json:"first_name"`
	LastName      *string   `json:"last_name"`
	Phone         *string   `json:"phone"`
	Groups        *[]string `json:"groups"`
	IsStaff       *bool     `json:"is_staff"`
	IsSuperuser   *bool     `json:"is_superuser"`
	IsSystemAdmin *bool     `json:"is_system_admin"`
	IsActive      *bool     `json:"is_active"`
}

// UpdateProfileRequest campos que el propio usuario puede editar en /users/me.
type UpdateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// ChangePasswordRequest entrada de cambio de contraseña.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Phone         string     `json:"phone"`
	IsStaff       bool       `json:"is_staff"`
	IsSuperuser   bool       `json:"is_superuser"`
	IsSystemAdmin bool       `json:"is_system_admin"`
	IsActive      bool       `json:"is_active"`
	Groups        []string   `json:"groups"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserListResponse lista de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Total int            `json:"total"`
}

// GroupRequest entrada para crear o renombrar un grupo.
type GroupRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

// GroupResponse salida de un grupo.
type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserCount int       `json:"user_count"`
	CreatedAt time.Time `json:"created_at"`
}
