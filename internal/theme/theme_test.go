package theme

import (
	"testing"

	"agendalink/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeVars(t *testing.T) {
	t.Run("KeepsAllowedKeys", func(t *testing.T) {
		out := SanitizeVars(map[string]string{
			"--primary": "#ff0000",
			"--ring":    "hsl(220 90% 56%)",
		})
		assert.Len(t, out, 2)
		assert.Equal(t, "#ff0000", out["--primary"])
	})

	t.Run("DropsUnknownKeys", func(t *testing.T) {
		out := SanitizeVars(map[string]string{
			"--background":  "#ffffff",
			"--destructive": "#ff0000",
			"--primary":     "#00ff00",
		})
		assert.Len(t, out, 1)
		assert.Contains(t, out, "--primary")
	})

	t.Run("DropsMalformedValues", func(t *testing.T) {
		out := SanitizeVars(map[string]string{
			"--primary": "url(javascript:alert(1))",
			"--ring":    "expression(evil)",
			"--accent":  "oklch(0.6 0.2 250)",
		})
		assert.Len(t, out, 1)
		assert.Contains(t, out, "--accent")
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, SanitizeVars(nil))
		assert.Empty(t, SanitizeVars(map[string]string{}))
	})
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode("light"))
	assert.True(t, ValidMode("dark"))
	assert.True(t, ValidMode("system"))
	assert.False(t, ValidMode(""))
	assert.False(t, ValidMode("sepia"))
}

func TestResolve(t *testing.T) {
	t.Run("UserOverridesTenant", func(t *testing.T) {
		tenant := &models.TenantTheme{
			Version: 3,
			Mode:    "dark",
			Vars: map[string]string{
				"--primary": "#111111",
				"--ring":    "#222222",
			},
		}
		out := Resolve(tenant, map[string]string{"--primary": "#999999"})

		assert.Equal(t, "dark", out.Mode)
		assert.Equal(t, 3, out.Version)
		assert.Equal(t, "#999999", out.Vars["--primary"])
		assert.Equal(t, "#222222", out.Vars["--ring"])
	})

	t.Run("NilTenantDefaults", func(t *testing.T) {
		out := Resolve(nil, nil)
		assert.Equal(t, "system", out.Mode)
		assert.Empty(t, out.Vars)
	})

	t.Run("InvalidTenantModeFallsBack", func(t *testing.T) {
		tenant := &models.TenantTheme{Mode: "neon"}
		out := Resolve(tenant, nil)
		assert.Equal(t, "system", out.Mode)
	})

	t.Run("BadStoredValueDropped", func(t *testing.T) {
		tenant := &models.TenantTheme{
			Mode: "light",
			Vars: map[string]string{"--primary": "url(http://evil)"},
		}
		out := Resolve(tenant, nil)
		assert.Empty(t, out.Vars)
	})
}
