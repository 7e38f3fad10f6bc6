package consent

// Scope is one entry of the offered-scope catalog.
type Scope struct {
	Name        string
	Description string
}

// DefaultScopes is the fixed catalog shown on every consent screen.
var DefaultScopes = []Scope{
	{Name: "devices:read", Description: "View SIM devices and their status"},
	{Name: "usage:read", Description: "View monthly data usage of SIM devices"},
	{Name: "esim:read", Description: "View embedded SIM profiles"},
}

// ScopeNames returns the names of scopes in order.
func ScopeNames(scopes []Scope) []string {
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		names = append(names, s.Name)
	}
	return names
}

// GrantedScopes intersects requested with the catalog, keeping the requested
// order. When the request names nothing from the catalog (an empty request or
// a client specific scope such as "claudeai") the whole catalog is granted,
// since that is what the consent screen showed.
func GrantedScopes(requested []string, catalog []Scope) []string {
	if len(requested) == 0 {
		return ScopeNames(catalog)
	}
	offered := make(map[string]bool, len(catalog))
	for _, s := range catalog {
		offered[s.Name] = true
	}
	var granted []string
	for _, name := range requested {
		if offered[name] {
			granted = append(granted, name)
		}
	}
	if len(granted) == 0 {
		return ScopeNames(catalog)
	}
	return granted
}
