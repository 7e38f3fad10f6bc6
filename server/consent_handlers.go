package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/consent"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// Authorize validates the authorization request, parks it behind a request
// token and shows the consent form
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.auth.ParseAuthRequest(r.Context(), r)
		if err != nil {
			log.Warn().Err(err).Str("client_id", r.URL.Query().Get("client_id")).Msg("rejected authorization request")
			s.renderStatus(w, http.StatusUnauthorized, "Invalid request", "The authorization request is missing or invalid.", "")
			return
		}

		requestToken, err := s.pending.Put(r.Context(), req)
		if err != nil {
			log.Err(err).Msg("failed to store authorization request")
			s.renderStatus(w, http.StatusInternalServerError, "Something went wrong", "The authorization request could not be started.", "")
			return
		}

		email := s.currentUser(r)
		screen := consent.SelectScreen(email != "", req, s.mediator.Scopes())
		log.Debug().Str("client_id", req.ClientID).Stringer("variant", screen.Variant).Msg("consent screen")
		s.renderConsent(w, http.StatusOK, screen, requestToken, email, "")
	}
}

// Approve applies the user's consent decision
func (s *Server) Approve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderStatus(w, http.StatusBadRequest, "Invalid request", "The form could not be read.", "")
			return
		}

		decision, err := consent.ParseDecision(r.PostForm)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidGrantContext) {
				s.renderStatus(w, http.StatusUnauthorized, "Invalid request", "The authorization request has expired or was already used.", "")
				return
			}
			s.renderStatus(w, http.StatusBadRequest, "Invalid request", "The consent form was not understood.", "")
			return
		}
		if decision.Action == consent.ActionApprove {
			// The approve-only form carries no credentials
			decision.Identity = s.currentUser(r)
		}

		outcome, err := s.mediator.Decide(r.Context(), decision)
		if err != nil {
			s.decisionFailed(w, r, decision, err)
			return
		}

		if outcome.LoggedIn {
			s.setLoginCookie(w, r, outcome.Identity)
		}

		if outcome.Redirect {
			w.Header().Set("Location", outcome.RedirectTo)
			w.WriteHeader(http.StatusFound)
			return
		}

		if outcome.Status == consent.Denied {
			s.renderStatus(w, http.StatusOK, "Access denied",
				"You denied "+clientDisplayName(outcome.Request)+" access to your account. You can close this window.", "")
			return
		}
		s.renderStatus(w, http.StatusOK, "Access granted",
			"You allowed "+clientDisplayName(outcome.Request)+" to access your account.", outcome.RedirectTo)
	}
}

func (s *Server) decisionFailed(w http.ResponseWriter, r *http.Request, decision consent.Decision, err error) {
	switch {
	case errors.Is(err, errors.ErrLoginRequired), errors.Is(err, errors.ErrInvalidCredentials):
		req, getErr := s.pending.Get(r.Context(), decision.RequestToken)
		if getErr != nil {
			s.renderStatus(w, http.StatusUnauthorized, "Invalid request", "The authorization request has expired or was already used.", "")
			return
		}
		clearLoginCookie(w, r)
		screen := consent.SelectScreen(false, req, s.mediator.Scopes())
		msg := "Please sign in to continue."
		if errors.Is(err, errors.ErrInvalidCredentials) {
			msg = "Invalid email or password."
		}
		s.renderConsent(w, http.StatusUnauthorized, screen, decision.RequestToken, decision.Identity, msg)
	case errors.Is(err, errors.ErrInvalidGrantContext):
		s.renderStatus(w, http.StatusUnauthorized, "Invalid request", "The authorization request has expired or was already used.", "")
	case errors.Is(err, errors.ErrMalformedRequest):
		s.renderStatus(w, http.StatusBadRequest, "Invalid request", "The consent form was not understood.", "")
	default:
		log.Err(err).Msg("consent decision failed")
		s.renderStatus(w, http.StatusInternalServerError, "Something went wrong", "The authorization could not be completed.", "")
	}
}

// Logout ends the consent screen login session
func (s *Server) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(loginCookieName); err == nil && cookie.Value != "" {
			if err := s.loginSessions.Delete(r.Context(), cookie.Value); err != nil {
				log.Debug().Err(err).Msg("login session already gone")
			}
		}
		clearLoginCookie(w, r)
		s.renderStatus(w, http.StatusOK, "Signed out", "You have been signed out.", "")
	}
}
