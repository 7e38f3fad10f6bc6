package tools

import (
	"fmt"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
)

var deviceStates = map[int64]string{
	1:  "Test Ready",
	2:  "Testing",
	3:  "Inventory",
	4:  "Activation Ready",
	5:  "Pending Activation",
	6:  "Active",
	7:  "Deactivated",
	8:  "Suspended",
	9:  "Retired",
	10: "Purged",
}

var profileStatuses = map[int64]string{
	1: "Available",
	2: "Allocated",
	3: "Released",
	4: "Downloaded",
	5: "Installed",
	6: "Enabled",
	7: "Disabled",
	8: "Deleted",
}

var profileTypes = map[int64]string{
	1: "Bootstrap",
	2: "Operational",
	3: "Provisioning",
	4: "Test",
}

// DeviceStateLabel maps a device state code to its display label.
func DeviceStateLabel(code int64) string {
	return lookup(deviceStates, code)
}

// ProfileStatusLabel maps an embedded profile status code to its display label.
func ProfileStatusLabel(code int64) string {
	return lookup(profileStatuses, code)
}

// ProfileTypeLabel maps an embedded profile type code to its display label.
func ProfileTypeLabel(code int64) string {
	return lookup(profileTypes, code)
}

func lookup(table map[int64]string, code int64) string {
	if label, ok := table[code]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

func flexLabel(label func(int64) string, code cmp.FlexInt) string {
	if !code.Valid {
		return "Unknown"
	}
	return label(code.Value)
}
