package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

const (
	ToolListDevices          = "list-devices"
	ToolDeviceDetail         = "device-detail"
	ToolDeviceUsage          = "device-usage"
	ToolListEmbeddedProfiles = "embedded-profile-list"

	iccidPattern = `^[0-9]{18,22}F?$`
	monthPattern = `^[0-9]{4}(0[1-9]|1[0-2])$`
	datePattern  = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`

	maxPageSize = 100
)

type callFunc func(ctx context.Context, api APIClient, args json.RawMessage) (*cmp.Response, error)

type renderFunc func(data json.RawMessage) (string, error)

// Definition binds a tool's advertised shape to its compiled input schema
// and handler.
type Definition struct {
	Tool mcp.Tool

	schema  *jsonschema.Schema
	lenient bool
	call    callFunc
	render  renderFunc
}

// Name is the unique tool name.
func (d *Definition) Name() string {
	return d.Tool.Name
}

// Registry is the fixed set of tools. It is built once and never mutated, so
// a single Registry can be shared by every session.
type Registry struct {
	order  []string
	byName map[string]*Definition
}

// NewRegistry compiles every tool's input schema.
func NewRegistry() (*Registry, error) {
	r := &Registry{byName: map[string]*Definition{}}
	for _, d := range definitions() {
		if _, dup := r.byName[d.Name()]; dup {
			return nil, errors.Wrapf(errors.ErrInternal, "duplicate tool %s", d.Name())
		}
		schema, err := compileInputSchema(d.Tool)
		if err != nil {
			return nil, err
		}
		d.schema = schema
		r.byName[d.Name()] = d
		r.order = append(r.order, d.Name())
	}
	return r, nil
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Definitions returns the tools in registration order.
func (r *Registry) Definitions() []*Definition {
	defs := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.byName[name])
	}
	return defs
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func compileInputSchema(tool mcp.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal input schema for %s", tool.Name)
	}

	url := "mem://tools/" + tool.Name + ".json"
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, errors.Wrapf(err, "add input schema for %s", tool.Name)
	}
	schema, err := c.Compile(url)
	if err != nil {
		return nil, errors.Wrapf(err, "compile input schema for %s", tool.Name)
	}
	return schema, nil
}

func definitions() []*Definition {
	return []*Definition{
		{
			Tool: mcp.NewTool(ToolListDevices,
				mcp.WithDescription("List SIM devices in the CMP account with optional filters and pagination."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(true),
				mcp.WithNumber("pageNum", mcp.Description("Page number, starting at 1"), mcp.Min(1)),
				mcp.WithNumber("pageSize", mcp.Description("Results per page (1-100)"), mcp.Min(1), mcp.Max(maxPageSize)),
				mcp.WithString("planName", mcp.Description("Filter by data plan name")),
				mcp.WithString("expirationDateStart", mcp.Description("Expiry range start (yyyy-MM-dd)"), mcp.Pattern(datePattern)),
				mcp.WithString("expirationDateEnd", mcp.Description("Expiry range end (yyyy-MM-dd)"), mcp.Pattern(datePattern)),
				mcp.WithString("iccidStart", mcp.Description("ICCID range start"), mcp.Pattern(iccidPattern)),
				mcp.WithString("iccidEnd", mcp.Description("ICCID range end"), mcp.Pattern(iccidPattern)),
				mcp.WithString("label", mcp.Description("Filter by device label")),
				mcp.WithNumber("status", mcp.Description("Device state code (1-10)"), mcp.Min(1), mcp.Max(10)),
				mcp.WithString("deviceType", mcp.Description("Filter by device type")),
			),
			call:   callListDevices,
			render: renderDeviceList,
		},
		{
			Tool: mcp.NewTool(ToolDeviceDetail,
				mcp.WithDescription("Get the full record of a single SIM device by ICCID."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(true),
				mcp.WithString("iccid", mcp.Required(), mcp.Description("Device ICCID (18-22 digits)"), mcp.Pattern(iccidPattern)),
			),
			lenient: true,
			call:    callDeviceDetail,
			render:  renderDeviceDetail,
		},
		{
			Tool: mcp.NewTool(ToolDeviceUsage,
				mcp.WithDescription("Get the data usage of a SIM device for one billing month."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(true),
				mcp.WithString("iccid", mcp.Required(), mcp.Description("Device ICCID (18-22 digits)"), mcp.Pattern(iccidPattern)),
				mcp.WithString("month", mcp.Required(), mcp.Description("Billing month (yyyyMM)"), mcp.Pattern(monthPattern)),
			),
			lenient: true,
			call:    callDeviceUsage,
			render:  renderUsage,
		},
		{
			Tool: mcp.NewTool(ToolListEmbeddedProfiles,
				mcp.WithDescription("List eSIM profiles with optional filters and pagination."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(true),
				mcp.WithNumber("pageNum", mcp.Description("Page number, starting at 1"), mcp.Min(1)),
				mcp.WithNumber("pageSize", mcp.Description("Results per page (1-100)"), mcp.Min(1), mcp.Max(maxPageSize)),
				mcp.WithNumber("childEnterpriseId", mcp.Description("Restrict to a child enterprise"), mcp.Min(1)),
				mcp.WithString("iccid", mcp.Description("Filter by profile ICCID"), mcp.Pattern(iccidPattern)),
				mcp.WithNumber("status", mcp.Description("Profile status code (1-8)"), mcp.Min(1), mcp.Max(8)),
			),
			call:   callListEmbeddedProfiles,
			render: renderProfileList,
		},
	}
}
