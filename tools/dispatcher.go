package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// Dispatcher runs tool invocations against one API client. It is immutable
// and safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	api      APIClient
}

func NewDispatcher(registry *Registry, api APIClient) *Dispatcher {
	return &Dispatcher{registry: registry, api: api}
}

// Dispatch validates rawArgs against the named tool's schema and runs its
// handler. Every failure, including a handler panic, comes back as a failed
// Result; Dispatch never returns a Go error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs any) (result Result) {
	logger := log.With().Str("tool", name).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("tool handler panicked")
			result = failure(errors.ErrInternal, "internal error while running %s", name)
		}
	}()

	def, ok := d.registry.Lookup(name)
	if !ok {
		return invalidArguments("unknown tool %q", name)
	}

	args, raw, err := normalizeArgs(rawArgs)
	if err != nil {
		return invalidArguments("%s", err)
	}
	if err := def.schema.Validate(args); err != nil {
		return invalidArguments("%s", describeValidation(err))
	}

	resp, err := def.call(ctx, d.api, raw)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidArguments) {
			return invalidArguments("%s", err)
		}
		logger.Warn().Err(err).Msg("upstream call failed")
		return upstreamFailure("CMP API request failed: %s", err)
	}

	v := classify(resp, def.lenient)
	logger.Debug().Stringer("variant", v).Str("code", string(resp.Code)).Msg("upstream response")
	if v == variantError {
		return upstreamError(resp)
	}

	text, err := def.render(resp.Data)
	if err != nil {
		return upstreamFailure("unexpected CMP API response: %s", err)
	}
	return success(text)
}

// normalizeArgs round-trips the arguments through JSON so maps, raw
// messages and structs validate the same way. Missing arguments are an empty
// object.
func normalizeArgs(rawArgs any) (map[string]any, json.RawMessage, error) {
	var raw json.RawMessage
	switch v := rawArgs.(type) {
	case nil:
		raw = json.RawMessage("{}")
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, nil, fmt.Errorf("arguments are not valid JSON: %s", err)
		}
		raw = b
	}
	if s := strings.TrimSpace(string(raw)); s == "" || s == "null" {
		raw = json.RawMessage("{}")
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, nil, fmt.Errorf("arguments must be a JSON object")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, raw, nil
}

func describeValidation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	collectCauses(ve, &msgs)
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func collectCauses(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectCauses(c, msgs)
	}
}
