package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/consent"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

const loginCookieName = "cmp_login"

// ConsentPageData contains data for rendering either consent form
type ConsentPageData struct {
	AppName      string
	ClientName   string
	RedirectURI  string
	Scopes       []consent.Scope
	RequestToken string
	Email        string
	Error        string
	Action       string
	LogoutAction string
}

// StatusPageData contains data for rendering the outcome page
type StatusPageData struct {
	AppName string
	Title   string
	Message string
	Link    template.URL
}

func (s *Server) renderConsent(w http.ResponseWriter, statusCode int, screen consent.Screen, requestToken, email, errMsg string) {
	name := templateConsentLoggedOut
	if screen.Variant == consent.LoggedIn {
		name = templateConsentLoggedIn
	}

	data := ConsentPageData{
		AppName:      s.config.GetAppName(),
		ClientName:   clientDisplayName(screen.Request),
		RedirectURI:  screen.Request.RedirectURI,
		Scopes:       screen.Scopes,
		RequestToken: requestToken,
		Email:        email,
		Error:        errMsg,
		Action:       RouteApprove,
		LogoutAction: RouteLogout,
	}
	s.renderHTML(w, name, statusCode, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, statusCode int, title, message, link string) {
	s.renderHTML(w, templateStatus, statusCode, StatusPageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Message: message,
		// Registered redirect URIs may use custom schemes
		Link: template.URL(link),
	})
}

func (s *Server) renderHTML(w http.ResponseWriter, name string, statusCode int, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("template not loaded")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", name).Msg("failed to render template")
	}
}

func clientDisplayName(req *oauthmodel.AuthorizationRequest) string {
	if req.Client.Name != "" {
		return req.Client.Name
	}
	return req.ClientID
}

// currentUser returns the email of the login session carried by the request
func (s *Server) currentUser(r *http.Request) string {
	cookie, err := r.Cookie(loginCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	sess, err := s.loginSessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return ""
	}
	return sess.Email
}

func (s *Server) setLoginCookie(w http.ResponseWriter, r *http.Request, email string) {
	sess, err := s.loginSessions.Create(r.Context(), email)
	if err != nil {
		log.Warn().Err(err).Msg("failed to start login session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     loginCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func clearLoginCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     loginCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}
