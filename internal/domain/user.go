package domain

import (
	"errors"
	"strings"
	"time"
)

// User-specific validation errors.
var (
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered user of the application.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only populated transiently during signup/update
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	ImageURL       string    `json:"image_url"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a new User with the given profile fields and plaintext
// password. The caller is responsible for hashing the password before the
// user is stored.
func NewUser(username, email, password, imageURL, description string) (*User, error) {
	user := &User{
		Username:    username,
		Email:       email,
		Password:    password,
		ImageURL:    imageURL,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		// Length-only policy: 8..72, the upper bound being bcrypt's
		// practical input limit.
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Users loaded from storage carry only the hash.
		return ErrEmptyHashedPassword
	}

	return nil
}

// validEmailFormat performs basic structural validation of an email address:
// a non-empty local part before the first @, and a remainder containing an
// interior dot. The API layer runs the stricter validator-tag check; this is
// a last line of defense for users constructed in code.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
