package tools

import (
	"fmt"
	"strings"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
)

const notAvailable = "N/A"

func writeField(b *strings.Builder, indent, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s%s: %s\n", indent, label, value)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func dataUsage(n cmp.FlexInt) string {
	if !n.Valid {
		return notAvailable
	}
	return cmp.FormatDataUsageBytes(n.Value)
}

func pageSummary[T any](b *strings.Builder, noun string, page *cmp.Page[T]) {
	total := page.Total.Value
	if !page.Total.Valid {
		total = int64(len(page.List))
	}
	fmt.Fprintf(b, "Found %d %s", total, noun)
	if page.PageNum.Valid {
		fmt.Fprintf(b, " (page %d", page.PageNum.Value)
		if page.Pages.Valid {
			fmt.Fprintf(b, " of %d", page.Pages.Value)
		}
		if page.PageSize.Valid {
			fmt.Fprintf(b, ", %d per page", page.PageSize.Value)
		}
		b.WriteString(")")
	}
	b.WriteString("\n")
}

func formatDeviceList(page *cmp.Page[cmp.Device]) string {
	var b strings.Builder
	pageSummary(&b, "devices", page)
	if len(page.List) == 0 {
		b.WriteString("\nNo devices match the given filters.\n")
		return b.String()
	}
	for i, d := range page.List {
		fmt.Fprintf(&b, "\n%d. ICCID: %s\n", i+1, orNA(d.ICCID))
		writeField(&b, "   ", "Label", d.Label)
		writeField(&b, "   ", "Status", flexLabel(DeviceStateLabel, d.Status))
		writeField(&b, "   ", "Plan", d.PlanName)
		writeField(&b, "   ", "Device Type", d.DeviceType)
		writeField(&b, "   ", "MSISDN", d.MSISDN)
		writeField(&b, "   ", "Activation Time", d.ActivationTime)
		writeField(&b, "   ", "Expiration Time", d.ExpirationTime)
		writeField(&b, "   ", "Data Used This Period", dataUsage(d.UsedDataOfCurrentPeriod))
	}
	return b.String()
}

func formatDeviceDetail(d *cmp.Device) string {
	var b strings.Builder
	b.WriteString("Device Details\n\n")
	fmt.Fprintf(&b, "ICCID: %s\n", orNA(d.ICCID))
	fmt.Fprintf(&b, "IMSI: %s\n", orNA(d.IMSI))
	fmt.Fprintf(&b, "MSISDN: %s\n", orNA(d.MSISDN))
	fmt.Fprintf(&b, "IMEI: %s\n", orNA(d.IMEI))
	fmt.Fprintf(&b, "Label: %s\n", orNA(d.Label))
	fmt.Fprintf(&b, "Status: %s\n", flexLabel(DeviceStateLabel, d.Status))
	fmt.Fprintf(&b, "Plan: %s\n", orNA(d.PlanName))
	fmt.Fprintf(&b, "Device Type: %s\n", orNA(d.DeviceType))
	fmt.Fprintf(&b, "Activation Time: %s\n", orNA(d.ActivationTime))
	fmt.Fprintf(&b, "Expiration Time: %s\n", orNA(d.ExpirationTime))
	fmt.Fprintf(&b, "Data Used This Period: %s\n", dataUsage(d.UsedDataOfCurrentPeriod))
	return b.String()
}

const noUsageDetails = "No detailed usage records for this period."

func formatUsage(u *cmp.UsageReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Data Usage for %s (%s)\n\n", orNA(u.ICCID), orNA(u.Month))
	fmt.Fprintf(&b, "Total Data Allowance: %s\n", orNA(u.TotalDataAllowance.String()))
	fmt.Fprintf(&b, "Total Data Usage: %s\n", orNA(u.TotalDataUsage.String()))
	fmt.Fprintf(&b, "Remaining Data: %s\n", orNA(u.RemainingData.String()))
	fmt.Fprintf(&b, "Outside Region Data Usage: %s\n", orNA(u.OutsideRegionDataUsage.String()))
	fmt.Fprintf(&b, "Usage Records: %d\n", len(u.DataUsageDetails))

	b.WriteString("\nUsage Details:\n")
	if len(u.DataUsageDetails) == 0 {
		b.WriteString(noUsageDetails + "\n")
		return b.String()
	}
	for i, d := range u.DataUsageDetails {
		fmt.Fprintf(&b, "%d. %s", i+1, orNA(d.Date))
		if d.Region != "" {
			fmt.Fprintf(&b, " | %s", d.Region)
		}
		if d.Operator != "" {
			fmt.Fprintf(&b, " | %s", d.Operator)
		}
		if d.UsageType != "" {
			fmt.Fprintf(&b, " | %s", d.UsageType)
		}
		fmt.Fprintf(&b, " | %s\n", orNA(d.DataUsage.String()))
	}
	return b.String()
}

func formatProfileList(page *cmp.Page[cmp.Profile]) string {
	var b strings.Builder
	pageSummary(&b, "embedded profiles", page)
	if len(page.List) == 0 {
		b.WriteString("\nNo embedded profiles match the given filters.\n")
		return b.String()
	}
	for i, p := range page.List {
		fmt.Fprintf(&b, "\n%d. ICCID: %s\n", i+1, orNA(p.ICCID))
		writeField(&b, "   ", "EID", p.EID)
		writeField(&b, "   ", "MSISDN", p.MSISDN)
		writeField(&b, "   ", "Status", flexLabel(ProfileStatusLabel, p.Status))
		writeField(&b, "   ", "Type", flexLabel(ProfileTypeLabel, p.Type))
		writeField(&b, "   ", "Enterprise", p.EnterpriseName)
		writeField(&b, "   ", "Created", p.CreateTime)
	}
	return b.String()
}
