package consent

import (
	"net/url"
	"strings"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// Action is the button the user pressed on the consent form.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionLoginApprove Action = "login_approve"
)

// Form field names posted by the consent pages.
const (
	FieldAction       = "action"
	FieldRequestToken = "request_token"
	FieldEmail        = "email"
	FieldPassword     = "password"
)

// Decision is a submitted consent form. Identity is the email of the
// logged-in user for ActionApprove, or the submitted email for
// ActionLoginApprove.
type Decision struct {
	Action       Action
	RequestToken string
	Identity     string
	Credential   string
}

// ParseDecision reads a consent form submission.
func ParseDecision(form url.Values) (Decision, error) {
	d := Decision{
		Action:       Action(strings.TrimSpace(form.Get(FieldAction))),
		RequestToken: strings.TrimSpace(form.Get(FieldRequestToken)),
		Identity:     strings.TrimSpace(form.Get(FieldEmail)),
		Credential:   form.Get(FieldPassword),
	}
	switch d.Action {
	case ActionApprove, ActionReject, ActionLoginApprove:
	default:
		return Decision{}, errors.Wrapf(errors.ErrMalformedRequest, "unknown consent action %q", d.Action)
	}
	if d.RequestToken == "" {
		return Decision{}, errors.Wrapf(errors.ErrInvalidGrantContext, "missing %s", FieldRequestToken)
	}
	return d, nil
}
