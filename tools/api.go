package tools

import (
	"context"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
)

// APIClient is the upstream surface the tool handlers need. *cmp.Client
// satisfies it.
type APIClient interface {
	ListDevices(ctx context.Context, filter cmp.DeviceFilter) (*cmp.Response, error)
	DeviceDetail(ctx context.Context, iccid string) (*cmp.Response, error)
	DeviceUsage(ctx context.Context, iccid, month string) (*cmp.Response, error)
	ListEmbeddedProfiles(ctx context.Context, filter cmp.ProfileFilter) (*cmp.Response, error)
}

var _ APIClient = (*cmp.Client)(nil)
