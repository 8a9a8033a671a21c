package application

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultTemporaryPassword is issued to new and reset accounts.
const DefaultTemporaryPassword = "a123456!"

// MinPasswordLength is the shortest password accepted on change.
const MinPasswordLength = 8

const passwordSpecials = "!@#$%^&*()_+"

// PasswordHasher derives a storable hash from a password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// HashPassword hashes password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports ErrInvalidCredentials when password does not match hashedPassword.
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// validateNewPassword applies the password policy: not the temporary
// password, confirmed, long enough, and drawing on three of upper case,
// lower case, digits and the allowed specials.
func validateNewPassword(password, confirm, temporary string) *ValidationError {
	vErr := &ValidationError{}
	switch {
	case password == "":
		vErr.add("new_password", "new password is required")
	case password == temporary:
		vErr.add("new_password", "new password must differ from the temporary password")
	case password != confirm:
		vErr.add("confirm_password", "passwords do not match")
	case len(password) < MinPasswordLength:
		vErr.add("new_password", "password must be at least 8 characters")
	case passwordClasses(password) < 3:
		vErr.add("new_password", "password must combine at least three of upper case, lower case, digits and "+passwordSpecials)
	}
	return vErr
}

func passwordClasses(password string) int {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	count := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			count++
		}
	}
	return count
}
