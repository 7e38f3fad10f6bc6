package clients

import (
	"context"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
)

var ErrClientNotFound = errors.Wrapf(errors.ErrNotFound, "client")

type Repo interface {
	Upsert(ctx context.Context, client *Client) error
	Get(ctx context.Context, clientID string) (*Client, error)
	Delete(ctx context.Context, clientID string) error
}

const keyPrefix = "client:"

// KVRepo stores clients in a kv.Store. Registrations never expire.
type KVRepo struct {
	store kv.Store
}

var _ Repo = (*KVRepo)(nil)

func NewKVRepo(store kv.Store) *KVRepo {
	return &KVRepo{store: store}
}

func (r *KVRepo) Upsert(ctx context.Context, client *Client) error {
	if client == nil || client.ID == "" {
		return errors.New("client id is required")
	}
	return kv.PutJSON(ctx, r.store, keyPrefix+client.ID, client, 0)
}

func (r *KVRepo) Get(ctx context.Context, clientID string) (*Client, error) {
	if clientID == "" {
		return nil, ErrClientNotFound
	}
	var client Client
	if err := kv.GetJSON(ctx, r.store, keyPrefix+clientID, &client); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, errors.Wrapf(err, "[clients.KVRepo.Get] %s", clientID)
	}
	return &client, nil
}

func (r *KVRepo) Delete(ctx context.Context, clientID string) error {
	return r.store.Delete(ctx, keyPrefix+clientID)
}
