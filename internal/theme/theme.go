package theme

import (
	"regexp"

	"agendalink/internal/models"
)

// AllowedKeys is the closed set of CSS variables a tenant may override.
// Anything else sent by a client is dropped, never stored.
var AllowedKeys = []string{
	"--primary",
	"--ring",
	"--accent",
	"--sidebar-primary",
}

var allowed = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllowedKeys))
	for _, k := range AllowedKeys {
		m[k] = struct{}{}
	}
	return m
}()

// valueRe accepts hex colors and hsl()/oklch() component lists, the only
// value shapes the widget stylesheet understands.
var valueRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[\d.]+%?(\s+[\d.]+%?){0,3}|hsl\([^)]*\)|oklch\([^)]*\))$`)

// SanitizeVars filters a raw variable map down to allowed keys with
// well-formed values.
func SanitizeVars(vars map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range vars {
		if _, ok := allowed[k]; !ok {
			continue
		}
		if !valueRe.MatchString(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// ValidMode reports whether the mode is one the widget can render.
func ValidMode(mode string) bool {
	return mode == "light" || mode == "dark" || mode == "system"
}

// Resolve merges the tenant theme with per-user overrides. User values win
// key by key; both sides are sanitized so a stored bad value can't leak
// through the merge.
func Resolve(tenant *models.TenantTheme, userVars map[string]string) models.TenantTheme {
	out := models.TenantTheme{Mode: "system", Vars: map[string]string{}}
	if tenant != nil {
		if ValidMode(tenant.Mode) {
			out.Mode = tenant.Mode
		}
		out.Version = tenant.Version
		for k, v := range SanitizeVars(tenant.Vars) {
			out.Vars[k] = v
		}
	}
	for k, v := range SanitizeVars(userVars) {
		out.Vars[k] = v
	}
	return out
}
