package tools

import (
	"context"
	"encoding/json"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

const (
	defaultPageNum  = 1
	defaultPageSize = 10
)

type deviceArgs struct {
	ICCID string `json:"iccid"`
}

type usageArgs struct {
	ICCID string `json:"iccid"`
	Month string `json:"month"`
}

func decodeArgs(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(errors.ErrInvalidArguments, "%s", err)
	}
	return nil
}

func pageDefaults(num, size *int) {
	if *num <= 0 {
		*num = defaultPageNum
	}
	if *size <= 0 {
		*size = defaultPageSize
	}
}

func callListDevices(ctx context.Context, api APIClient, raw json.RawMessage) (*cmp.Response, error) {
	var filter cmp.DeviceFilter
	if err := decodeArgs(raw, &filter); err != nil {
		return nil, err
	}
	pageDefaults(&filter.PageNum, &filter.PageSize)
	return api.ListDevices(ctx, filter)
}

func callDeviceDetail(ctx context.Context, api APIClient, raw json.RawMessage) (*cmp.Response, error) {
	var args deviceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return api.DeviceDetail(ctx, args.ICCID)
}

func callDeviceUsage(ctx context.Context, api APIClient, raw json.RawMessage) (*cmp.Response, error) {
	var args usageArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return api.DeviceUsage(ctx, args.ICCID, args.Month)
}

func callListEmbeddedProfiles(ctx context.Context, api APIClient, raw json.RawMessage) (*cmp.Response, error) {
	var filter cmp.ProfileFilter
	if err := decodeArgs(raw, &filter); err != nil {
		return nil, err
	}
	pageDefaults(&filter.PageNum, &filter.PageSize)
	return api.ListEmbeddedProfiles(ctx, filter)
}

func decodeData[T any](data json.RawMessage) (*T, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return nil, errors.New("response carried no data")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func renderDeviceList(data json.RawMessage) (string, error) {
	page, err := decodeData[cmp.Page[cmp.Device]](data)
	if err != nil {
		return "", err
	}
	return formatDeviceList(page), nil
}

func renderDeviceDetail(data json.RawMessage) (string, error) {
	d, err := decodeData[cmp.Device](data)
	if err != nil {
		return "", err
	}
	return formatDeviceDetail(d), nil
}

func renderUsage(data json.RawMessage) (string, error) {
	u, err := decodeData[cmp.UsageReport](data)
	if err != nil {
		return "", err
	}
	return formatUsage(u), nil
}

func renderProfileList(data json.RawMessage) (string, error) {
	page, err := decodeData[cmp.Page[cmp.Profile]](data)
	if err != nil {
		return "", err
	}
	return formatProfileList(page), nil
}
