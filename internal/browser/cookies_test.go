package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieToPlaywright(t *testing.T) {
	tests := []struct {
		name     string
		cookie   Cookie
		sameSite *playwright.SameSiteAttribute
		expires  bool
	}{
		{"Lax session cookie", Cookie{Name: "li_at", Value: "v", Domain: ".linkedin.com", Path: "/", SameSite: "Lax"}, playwright.SameSiteAttributeLax, false},
		{"Strict persistent", Cookie{Name: "JSESSIONID", Domain: ".linkedin.com", Path: "/", Expires: 1900000000, SameSite: "Strict"}, playwright.SameSiteAttributeStrict, true},
		{"Extension spelling", Cookie{Name: "bcookie", Domain: ".linkedin.com", SameSite: "no_restriction"}, playwright.SameSiteAttributeNone, false},
		{"Unknown same-site", Cookie{Name: "x", Domain: "example.com", SameSite: "unspecified"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cookie.ToPlaywright()
			assert.Equal(t, tt.cookie.Name, got.Name)
			require.NotNil(t, got.Domain)
			assert.Equal(t, tt.cookie.Domain, *got.Domain)
			require.NotNil(t, got.Path)
			assert.NotEmpty(t, *got.Path)
			assert.Equal(t, tt.sameSite, got.SameSite)
			assert.Equal(t, tt.expires, got.Expires != nil)
		})
	}
}

func TestCookieFlags(t *testing.T) {
	got := Cookie{Name: "a", Domain: "example.com", HTTPOnly: true, Secure: true}.ToPlaywright()
	require.NotNil(t, got.HttpOnly)
	require.NotNil(t, got.Secure)
	assert.True(t, *got.HttpOnly)
	assert.True(t, *got.Secure)
	assert.Equal(t, "/", *got.Path)
}

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "li_at", "value": "token", "domain": ".linkedin.com", "path": "/", "httpOnly": true, "secure": true, "sameSite": "None"},
		{"name": "", "value": "dropped", "domain": ".linkedin.com"}
	]`), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "li_at", cookies[0].Name)

	_, err = LoadCookies(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
