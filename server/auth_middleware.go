package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/auth"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

// RequireBearer validates the access token on MCP requests and attaches the
// grant behind it to the request context. Failures answer 401 with a
// WWW-Authenticate challenge pointing at the protected resource metadata.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				s.bearerChallenge(w, "", "Missing bearer token")
				return
			}

			grant, err := s.auth.ValidateAccessToken(r.Context(), token)
			if err != nil {
				description := "Invalid access token"
				if errors.Is(err, errors.ErrTokenExpired) {
					description = "Access token expired"
				}
				log.Debug().Err(err).Msg("bearer token rejected")
				s.bearerChallenge(w, oauthmodel.ErrorCodeInvalidToken, description)
				return
			}

			next(w, r.WithContext(auth.WithGrant(r.Context(), grant)))
		}
	}
}

func (s *Server) bearerChallenge(w http.ResponseWriter, errorCode, description string) {
	challenge := fmt.Sprintf(`Bearer resource_metadata="%s"`, s.baseURL+RouteWellKnownProtectedResource)
	if errorCode != "" {
		challenge += fmt.Sprintf(`, error="%s", error_description="%s"`, errorCode, description)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	code := errorCode
	if code == "" {
		code = "unauthorized"
	}
	writeJSONError(w, code, description, http.StatusUnauthorized)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// clientCredentials reads client authentication from HTTP Basic auth,
// falling back to the form body. The form must already be parsed.
func clientCredentials(r *http.Request) (clientID, clientSecret string, basic bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "basic" {
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err == nil {
				if id, secret, ok := strings.Cut(string(decoded), ":"); ok {
					return id, secret, true
				}
			}
		}
	}
	return r.PostFormValue("client_id"), r.PostFormValue("client_secret"), false
}
