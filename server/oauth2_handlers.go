package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/consent"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"

	// RFC 7591 error codes
	errorCodeInvalidRedirectURI    = "invalid_redirect_uri"
	errorCodeInvalidClientMetadata = "invalid_client_metadata"

	maxRegistrationBody = 64 << 10
)

// AuthorizationServerMetadata serves the RFC 8414 discovery document
func (s *Server) AuthorizationServerMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"issuer":                 s.baseURL,
			"authorization_endpoint": s.baseURL + RouteAuthorize,
			"token_endpoint":         s.baseURL + RouteToken,
			"registration_endpoint":  s.baseURL + RouteRegister,
			"revocation_endpoint":    s.baseURL + RouteRevoke,

			"response_types_supported": []oauthmodel.ResponseType{oauthmodel.CodeResponseType},
			"response_modes_supported": []string{"query"},
			"grant_types_supported": []oauthmodel.GrantType{
				oauthmodel.AuthorizationCodeGrant,
				oauthmodel.RefreshTokenGrant,
			},
			"token_endpoint_auth_methods_supported": []oauthmodel.TokenEndpointAuthMethod{
				oauthmodel.AuthMethodClientSecretBasic,
				oauthmodel.AuthMethodClientSecretPost,
				oauthmodel.AuthMethodNone, // For public clients with PKCE
			},
			"revocation_endpoint_auth_methods_supported": []oauthmodel.TokenEndpointAuthMethod{
				oauthmodel.AuthMethodClientSecretBasic,
				oauthmodel.AuthMethodClientSecretPost,
				oauthmodel.AuthMethodNone,
			},
			"code_challenge_methods_supported": []oauthmodel.CodeMethodType{
				oauthmodel.CodeMethodTypeS256,
				oauthmodel.CodeMethodTypePlain,
			},
			"scopes_supported": consent.ScopeNames(s.mediator.Scopes()),
		}

		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		writeJSON(w, http.StatusOK, resp)
	}
}

// ProtectedResourceMetadata serves the RFC 9728 document for the MCP endpoint
func (s *Server) ProtectedResourceMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"resource":                 s.baseURL + RouteMCP,
			"authorization_servers":    []string{s.baseURL},
			"bearer_methods_supported": []string{"header"},
			"scopes_supported":         consent.ScopeNames(s.mediator.Scopes()),
			"resource_name":            s.config.GetAppName(),
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, resp)
	}
}

// Token exchanges an authorization code or refresh token for tokens
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, oauthmodel.ErrorCodeInvalidRequest, "Failed to parse form data", http.StatusBadRequest)
			return
		}

		clientID, clientSecret, basic := clientCredentials(r)
		tokenReq := oauthmodel.TokenRequest{
			GrantType:    oauthmodel.GrantType(r.PostFormValue("grant_type")),
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Code:         r.PostFormValue("code"),
			RedirectURI:  r.PostFormValue("redirect_uri"),
			CodeVerifier: r.PostFormValue("code_verifier"),
			RefreshToken: r.PostFormValue("refresh_token"),
		}
		if tokenReq.GrantType == "" {
			writeJSONError(w, oauthmodel.ErrorCodeInvalidRequest, "grant_type is required", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.Token(r.Context(), tokenReq)
		if err != nil {
			if basic && errors.Is(err, errors.ErrInvalidClient) {
				w.Header().Set("WWW-Authenticate", `Basic realm="OAuth2 Client Authentication"`)
			}
			writeOAuthError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse)
	}
}

// Register implements RFC 7591 dynamic client registration
func (s *Server) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg oauthmodel.ClientRegistrationRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRegistrationBody)).Decode(&reg); err != nil {
			writeJSONError(w, errorCodeInvalidClientMetadata, "Request body must be a JSON client metadata document", http.StatusBadRequest)
			return
		}

		resp, err := s.auth.RegisterClient(r.Context(), reg)
		if err != nil {
			switch {
			case errors.Is(err, errors.ErrInvalidRedirectURI):
				writeJSONError(w, errorCodeInvalidRedirectURI, err.Error(), http.StatusBadRequest)
			case errors.Is(err, errors.ErrInvalidClient), errors.Is(err, errors.ErrUnsupportedGrantType):
				writeJSONError(w, errorCodeInvalidClientMetadata, err.Error(), http.StatusBadRequest)
			default:
				log.Err(err).Msg("client registration failed")
				writeJSONError(w, oauthmodel.ErrorCodeServerError, "Client registration failed", http.StatusInternalServerError)
			}
			return
		}

		log.Info().Str("client_id", resp.ClientID).Str("client_name", resp.ClientName).Msg("client registered")
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusCreated, resp)
	}
}

// Revoke revokes tokens (RFC 7009)
func (s *Server) Revoke() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, oauthmodel.ErrorCodeInvalidRequest, "Failed to parse form data", http.StatusBadRequest)
			return
		}

		token := r.PostFormValue("token")
		if token == "" {
			writeJSONError(w, oauthmodel.ErrorCodeInvalidRequest, "token parameter is required", http.StatusBadRequest)
			return
		}

		clientID, clientSecret, _ := clientCredentials(r)
		if err := s.auth.RevokeToken(r.Context(), token, clientID, clientSecret); err != nil {
			writeOAuthError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// Health reports liveness
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.sessions.Len(),
		})
	}
}

// writeOAuthError maps a token or revocation failure to its RFC 6749 error
func writeOAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidClient):
		writeJSONError(w, oauthmodel.ErrorCodeInvalidClient, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, errors.ErrInvalidGrant), errors.Is(err, errors.ErrInvalidCodeChallenge):
		writeJSONError(w, oauthmodel.ErrorCodeInvalidGrant, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errors.ErrUnsupportedGrantType):
		writeJSONError(w, oauthmodel.ErrorCodeUnsupportedGrantType, err.Error(), http.StatusBadRequest)
	default:
		log.Err(err).Msg("token endpoint failure")
		writeJSONError(w, oauthmodel.ErrorCodeServerError, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
