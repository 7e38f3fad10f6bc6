package loginsession

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
)

const (
	keyPrefix     = "login:"
	sessionIDSize = 32
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.Wrapf(errors.ErrNotFound, "login session")

// KVRepo keeps login sessions in a kv.Store. Entries expire with the
// session.
type KVRepo struct {
	store   kv.Store
	maxAge  time.Duration
	nowTime func() time.Time
}

var _ Repo = (*KVRepo)(nil)

type Option func(*KVRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *KVRepo) {
		r.nowTime = nowFunc
	}
}

func NewKVRepo(store kv.Store, maxAge time.Duration, options ...Option) *KVRepo {
	r := &KVRepo{store: store, maxAge: maxAge, nowTime: time.Now}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *KVRepo) Create(ctx context.Context, email string) (*Session, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	b := make([]byte, sessionIDSize)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrapf(err, "[loginsession.Create] generate id")
	}
	now := r.nowTime()
	s := &Session{
		ID:        base64.RawURLEncoding.EncodeToString(b),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(r.maxAge),
	}
	if err := kv.PutJSON(ctx, r.store, keyPrefix+s.ID, s, r.maxAge); err != nil {
		return nil, errors.Wrapf(err, "[loginsession.Create]")
	}
	return s, nil
}

func (r *KVRepo) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := kv.GetJSON(ctx, r.store, keyPrefix+sessionID, &s); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !r.nowTime().Before(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *KVRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return r.store.Delete(ctx, keyPrefix+sessionID)
}
