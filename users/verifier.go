package users

import (
	"context"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// dummyHash keeps the timing of unknown-user logins close to that of a
// wrong password.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2/1XV1CgrvgIYo0JtFSa4f."

// StaticVerifier checks consent logins against a fixed user list.
type StaticVerifier struct {
	users map[string]*User
}

// NewStaticVerifier builds a verifier from "email:bcrypt-hash" entries.
func NewStaticVerifier(entries []string) (*StaticVerifier, error) {
	v := &StaticVerifier{users: make(map[string]*User, len(entries))}
	for _, entry := range entries {
		u, err := ParseUser(entry)
		if err != nil {
			return nil, err
		}
		v.users[u.Email] = u
	}
	return v, nil
}

// Len is the number of configured users.
func (v *StaticVerifier) Len() int {
	return len(v.users)
}

// Verify returns the normalised email when the password matches.
func (v *StaticVerifier) Verify(_ context.Context, identity, credential string) (string, error) {
	email := NormaliseEmail(identity)
	u, ok := v.users[email]
	if !ok {
		CheckPasswordHash(credential, dummyHash)
		return "", errors.Wrapf(errors.ErrInvalidCredentials, "unknown user")
	}
	if u.Blocked || !u.CheckPassword(credential) {
		return "", errors.Wrapf(errors.ErrInvalidCredentials, "user %s", email)
	}
	return email, nil
}
