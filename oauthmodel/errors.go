package oauthmodel

import "errors"

var (
	ErrMissingClientID            = errors.New("client_id is required")
	ErrMissingRedirectURI         = errors.New("redirect_uri is required")
	ErrInvalidRedirectURI         = errors.New("redirect_uri is not an absolute URL")
	ErrInvalidCodeChallengeMethod = errors.New("invalid code challenge method")
	ErrInvalidCodeChallenge       = errors.New("invalid code challenge")
	ErrInvalidResponseType        = errors.New("unsupported response type")
)
