package cmp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Code is the upstream status code. The API sends it as a number on some
// endpoints and as a string on others; Code keeps its textual form.
type Code string

const SuccessCode Code = "200"

func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("cmp: code %s is neither string nor number", b)
	}
	*c = Code(n.String())
	return nil
}

// FlexInt decodes integers that may arrive as JSON numbers, numeric strings
// or null. Valid is false when the field was null, empty or unparseable.
type FlexInt struct {
	Value int64
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt{Value: n, Valid: true}
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt{Value: int64(fl), Valid: true}
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// String renders the value, or an empty string when absent.
func (f FlexInt) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatInt(f.Value, 10)
}

// FlexFloat is FlexInt for decimal quantities such as data volumes.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexFloat{Value: fl, Valid: true}
	}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

func (f FlexFloat) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Response is the envelope every endpoint answers with. Data is left raw so
// callers decide which shape to expect.
type Response struct {
	Code Code            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Success reports whether the upstream signalled success.
func (r *Response) Success() bool {
	return r != nil && r.Code == SuccessCode
}

// HasDataObject reports whether data holds a JSON object.
func (r *Response) HasDataObject() bool {
	if r == nil {
		return false
	}
	d := bytes.TrimSpace(r.Data)
	return len(d) > 0 && d[0] == '{' && json.Valid(d)
}

// Device is one SIM as returned by the device list and detail endpoints.
type Device struct {
	ICCID                   string  `json:"iccid"`
	IMSI                    string  `json:"imsi"`
	MSISDN                  string  `json:"msisdn"`
	IMEI                    string  `json:"imei"`
	Label                   string  `json:"label"`
	Status                  FlexInt `json:"status"`
	PlanName                string  `json:"planName"`
	DeviceType              string  `json:"deviceType"`
	ActivationTime          string  `json:"activationTime"`
	ExpirationTime          string  `json:"expirationTime"`
	UsedDataOfCurrentPeriod FlexInt `json:"usedDataOfCurrentPeriod"`
}

// Page is the paginated list shape shared by the list endpoints.
type Page[T any] struct {
	Total    FlexInt `json:"total"`
	PageNum  FlexInt `json:"pageNum"`
	PageSize FlexInt `json:"pageSize"`
	Pages    FlexInt `json:"pages"`
	List     []T     `json:"list"`
}

// UsageDetail is one itemized usage record.
type UsageDetail struct {
	Date      string    `json:"date"`
	Region    string    `json:"region"`
	Operator  string    `json:"operator"`
	DataUsage FlexFloat `json:"dataUsage"`
	UsageType string    `json:"usageType"`
}

// UsageReport is the monthly usage of a single SIM.
type UsageReport struct {
	ICCID                  string        `json:"iccid"`
	Month                  string        `json:"month"`
	TotalDataAllowance     FlexFloat     `json:"totalDataAllowance"`
	TotalDataUsage         FlexFloat     `json:"totalDataUsage"`
	RemainingData          FlexFloat     `json:"remainingData"`
	OutsideRegionDataUsage FlexFloat     `json:"outsideRegionDataUsage"`
	DataUsageDetails       []UsageDetail `json:"dataUsageDetails"`
}

// Profile is an embedded SIM profile.
type Profile struct {
	ICCID          string  `json:"iccid"`
	EID            string  `json:"eid"`
	MSISDN         string  `json:"msisdn"`
	Status         FlexInt `json:"status"`
	Type           FlexInt `json:"type"`
	EnterpriseName string  `json:"enterpriseName"`
	CreateTime     string  `json:"createTime"`
}

// DeviceFilter holds the optional list-devices query fields.
type DeviceFilter struct {
	PageNum             int    `json:"pageNum,omitempty"`
	PageSize            int    `json:"pageSize,omitempty"`
	PlanName            string `json:"planName,omitempty"`
	ExpirationDateStart string `json:"expirationDateStart,omitempty"`
	ExpirationDateEnd   string `json:"expirationDateEnd,omitempty"`
	ICCIDStart          string `json:"iccidStart,omitempty"`
	ICCIDEnd            string `json:"iccidEnd,omitempty"`
	Label               string `json:"label,omitempty"`
	Status              *int   `json:"status,omitempty"`
	DeviceType          string `json:"deviceType,omitempty"`
}

// ProfileFilter holds the optional embedded-profile-list query fields.
type ProfileFilter struct {
	PageNum           int    `json:"pageNum,omitempty"`
	PageSize          int    `json:"pageSize,omitempty"`
	ChildEnterpriseID *int64 `json:"childEnterpriseId,omitempty"`
	ICCID             string `json:"iccid,omitempty"`
	Status            *int   `json:"status,omitempty"`
}
