package identity

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID   string
	Name string
}

// Registry holds registered users. Usernames are matched case-sensitively
// and exactly; passwords are stored as bcrypt hashes, never plaintext.
type Registry interface {
	Create(ctx context.Context, username, password string) (User, error)
	Verify(ctx context.Context, username, password string) (User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Ping(ctx context.Context) error
}

// UsernameRule decides whether a username is acceptable at registration.
type UsernameRule func(string) bool

const maxUsernameLen = 64

// DefaultUsernameRule accepts non-empty names up to 64 runes with no
// whitespace or control characters.
func DefaultUsernameRule(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > maxUsernameLen {
		return false
	}
	if strings.TrimSpace(name) != name {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
