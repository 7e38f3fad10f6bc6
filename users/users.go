package users

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// User is an account allowed to log in on the consent screen.
type User struct {
	Email        string `json:"email,omitempty"` // Login identity, lower-cased
	PasswordHash string `json:"-"`               // bcrypt hash - never serialize
	Blocked      bool   `json:"blocked,omitempty"`
}

// blockedPrefix marks a configured user that may not log in.
const blockedPrefix = "!"

// ParseUser reads an "email:bcrypt-hash" entry. A leading "!" keeps the user
// listed but blocked.
func ParseUser(entry string) (*User, error) {
	entry = strings.TrimSpace(entry)
	blocked := strings.HasPrefix(entry, blockedPrefix)
	entry = strings.TrimPrefix(entry, blockedPrefix)

	email, hash, ok := strings.Cut(entry, ":")
	email = NormaliseEmail(email)
	if !ok || email == "" || hash == "" {
		return nil, fmt.Errorf("user entry must be email:bcrypt-hash")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("user %s: invalid bcrypt hash: %w", email, err)
	}
	return &User{Email: email, PasswordHash: hash, Blocked: blocked}, nil
}

// NormaliseEmail trims and lower-cases an email address.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
