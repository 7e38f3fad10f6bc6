package tools

import "github.com/Acceleronix/cmp-auth-mcp-server/cmp"

// variant is how an upstream envelope is interpreted.
type variant int

const (
	// variantError: anything that is neither of the success shapes.
	variantError variant = iota
	// variantSuccess: code 200.
	variantSuccess
	// variantAlternateSuccess: code missing or unexpected but data holds an
	// object. The upstream API is inconsistent about codes on the detail and
	// usage endpoints, so only tools opting in accept this shape.
	variantAlternateSuccess
)

func (v variant) String() string {
	switch v {
	case variantSuccess:
		return "success"
	case variantAlternateSuccess:
		return "alternate-success"
	}
	return "error"
}

func classify(resp *cmp.Response, lenient bool) variant {
	switch {
	case resp.Success():
		return variantSuccess
	case lenient && resp.HasDataObject():
		return variantAlternateSuccess
	}
	return variantError
}

// upstreamError renders an error-variant envelope.
func upstreamError(resp *cmp.Response) Result {
	if resp == nil {
		return upstreamFailure("CMP API returned an empty response")
	}
	code := string(resp.Code)
	if code == "" {
		code = "none"
	}
	if resp.Msg != "" {
		return upstreamFailure("CMP API error (code %s): %s", code, resp.Msg)
	}
	return upstreamFailure("CMP API error (code %s)", code)
}
