package cmp_test

import (
	"encoding/json"
	"testing"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	tests := []struct {
		raw     string
		want    cmp.Code
		success bool
	}{
		{`{"code":200}`, "200", true},
		{`{"code":"200"}`, "200", true},
		{`{"code":" 200 "}`, "200", true},
		{`{"code":500}`, "500", false},
		{`{"code":null}`, "", false},
		{`{}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var r cmp.Response
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))
			require.Equal(t, tt.want, r.Code)
			require.Equal(t, tt.success, r.Success())
		})
	}
}

func TestHasDataObject(t *testing.T) {
	tests := map[string]bool{
		`{"data":{"iccid":"1"}}`: true,
		`{"data":{}}`:            true,
		`{"data":[]}`:            false,
		`{"data":null}`:          false,
		`{"data":"text"}`:        false,
		`{}`:                     false,
	}
	for raw, want := range tests {
		var r cmp.Response
		require.NoError(t, json.Unmarshal([]byte(raw), &r))
		require.Equal(t, want, r.HasDataObject(), raw)
	}
	var nilResp *cmp.Response
	require.False(t, nilResp.HasDataObject())
	require.False(t, nilResp.Success())
}

func TestFlexInt(t *testing.T) {
	var fromString, fromNumber cmp.Device
	require.NoError(t, json.Unmarshal([]byte(`{"usedDataOfCurrentPeriod":"2048","status":"6"}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"usedDataOfCurrentPeriod":2048,"status":6}`), &fromNumber))
	require.Equal(t, fromNumber, fromString)
	require.Equal(t, cmp.FlexInt{Value: 2048, Valid: true}, fromNumber.UsedDataOfCurrentPeriod)

	var empty cmp.Device
	require.NoError(t, json.Unmarshal([]byte(`{"usedDataOfCurrentPeriod":"","status":null}`), &empty))
	require.False(t, empty.UsedDataOfCurrentPeriod.Valid)
	require.False(t, empty.Status.Valid)
	require.Equal(t, "", empty.Status.String())

	var fractional cmp.FlexInt
	require.NoError(t, json.Unmarshal([]byte(`12.0`), &fractional))
	require.Equal(t, int64(12), fractional.Value)
}

func TestFlexFloat(t *testing.T) {
	var r cmp.UsageReport
	require.NoError(t, json.Unmarshal([]byte(`{"totalDataAllowance":"1000.5","totalDataUsage":200}`), &r))
	require.Equal(t, "1000.5", r.TotalDataAllowance.String())
	require.Equal(t, "200", r.TotalDataUsage.String())
	require.False(t, r.RemainingData.Valid)
}

func TestFormatDataUsageBytes(t *testing.T) {
	require.Equal(t, "0 B", cmp.FormatDataUsageBytes(0))
	require.Equal(t, "0 B", cmp.FormatDataUsageBytes(-5))
	require.Equal(t, "2.0 KiB", cmp.FormatDataUsageBytes(2048))
	require.Equal(t, "1.0 MiB", cmp.FormatDataUsageBytes(1<<20))
}
