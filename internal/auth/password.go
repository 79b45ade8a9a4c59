package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrPasswordTooShort   = errors.New("This password is too short. It must contain at least 8 characters.")
	ErrPasswordNumeric    = errors.New("This password is entirely numeric.")
	ErrPasswordCommon     = errors.New("This password is too common.")
	ErrPasswordSimilarity = errors.New("The password is too similar to your personal information.")
)

// самые частые пароли из утечек, хватает для отсечения очевидного
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwertyuiop": {}, "qwerty123": {}, "azertyuiop": {}, "azerty123": {},
	"iloveyou": {}, "motdepasse": {}, "sunshine": {}, "princess": {}, "football": {},
	"abc12345": {}, "11111111": {}, "00000000": {}, "letmein1": {}, "welcome1": {},
	"baseball": {}, "dragon123": {}, "trustno1": {}, "superman": {}, "jetaime1": {},
}

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword проверяет сложность пароля. attrs - email, username,
// имя и фамилия, с которыми пароль не должен совпадать.
func ValidatePassword(password string, attrs ...string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if isNumeric(password) {
		return ErrPasswordNumeric
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return ErrPasswordCommon
	}
	for _, attr := range attrs {
		if tooSimilar(lower, strings.ToLower(attr)) {
			return ErrPasswordSimilarity
		}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tooSimilar(password, attr string) bool {
	if attr == "" {
		return false
	}
	if local, _, ok := strings.Cut(attr, "@"); ok {
		attr = local
	}
	if len(attr) < 3 {
		return false
	}
	return strings.Contains(password, attr) || strings.Contains(attr, password)
}
