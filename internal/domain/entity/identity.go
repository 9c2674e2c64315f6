package entity

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MinPasswordLength largo mínimo de contraseña.
const MinPasswordLength = 8

// MaxPasswordBytes límite de bcrypt: rechaza entradas de más de 72 bytes.
const MaxPasswordBytes = 72

// NormalizeUsername aplica NFKC y quita espacios alrededor, para que dos formas
// visualmente iguales del mismo nombre no puedan registrarse dos veces.
func NormalizeUsername(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// NormalizeEmail quita espacios y pasa el dominio a minúsculas; la parte local se conserva.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at+1] + cases.Lower(language.Und).String(s[at+1:])
}

// ValidateUsername devuelve un mensaje de error o "" si el nombre es válido:
// entre 1 y 150 caracteres, letras, dígitos y @ . + - _
func ValidateUsername(s string) string {
	if s == "" {
		return "es obligatorio"
	}
	if utf8.RuneCountInString(s) > 150 {
		return "máximo 150 caracteres"
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return "solo letras, dígitos y @/./+/-/_"
	}
	return ""
}

// ValidateEmail devuelve un mensaje de error o "" si el email es válido.
func ValidateEmail(s string) string {
	if s == "" {
		return "es obligatorio"
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "email inválido"
	}
	return ""
}

// ValidatePassword devuelve un mensaje de error o "" si la contraseña cumple el mínimo y el máximo.
func ValidatePassword(s string) string {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return "mínimo 8 caracteres"
	}
	if len(s) > MaxPasswordBytes {
		return "máximo 72 bytes"
	}
	return ""
}
