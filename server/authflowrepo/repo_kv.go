package authflowrepo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

const keyPrefix = "authreq:"

// ErrRequestNotFound is returned for unknown, expired or already used tokens.
var ErrRequestNotFound = errors.Wrapf(errors.ErrNotFound, "pending authorization request")

// KVRepo keeps pending requests in a kv.Store with a TTL.
type KVRepo struct {
	store   kv.Store
	ttl     time.Duration
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

func NewKVRepo(store kv.Store, ttl time.Duration, options ...Option) *KVRepo {
	r := &KVRepo{store: store, ttl: ttl, nowTime: time.Now}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *KVRepo) Put(ctx context.Context, req *oauthmodel.AuthorizationRequest) (string, error) {
	if req == nil {
		return "", errors.New("authorization request cannot be nil")
	}
	token := uuid.New().String()
	if err := kv.PutJSON(ctx, r.store, keyPrefix+token, &PendingRequest{
		Request:   *req,
		CreatedAt: r.nowTime(),
	}, r.ttl); err != nil {
		return "", errors.Wrapf(err, "[authflowrepo.Put]")
	}
	return token, nil
}

func (r *KVRepo) Get(ctx context.Context, token string) (*oauthmodel.AuthorizationRequest, error) {
	if token == "" {
		return nil, ErrRequestNotFound
	}
	var pending PendingRequest
	if err := kv.GetJSON(ctx, r.store, keyPrefix+token, &pending); err != nil {
		return nil, mapNotFound(err)
	}
	return &pending.Request, nil
}

func (r *KVRepo) Take(ctx context.Context, token string) (*oauthmodel.AuthorizationRequest, error) {
	if token == "" {
		return nil, ErrRequestNotFound
	}
	var pending PendingRequest
	if err := kv.TakeJSON(ctx, r.store, keyPrefix+token, &pending); err != nil {
		return nil, mapNotFound(err)
	}
	return &pending.Request, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, errors.ErrNotFound) {
		return ErrRequestNotFound
	}
	return err
}
