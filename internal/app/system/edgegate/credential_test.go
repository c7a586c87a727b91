package edgegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCredential(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   Credential
	}{
		{"empty header", "", Credential{}},
		{"token and role", "token=abc; role=admin", Credential{Token: "abc", Role: "admin"}},
		{"role only", "role=courier", Credential{Role: "courier"}},
		{"token only", "token=abc", Credential{Token: "abc"}},
		{"other cookies around", "theme=dark; token=abc; lang=en; role=accounting", Credential{Token: "abc", Role: "accounting"}},
		{"empty token value", "token=; role=admin", Credential{Role: "admin"}},
		{"quoted value", `token="abc"`, Credential{Token: "abc"}},
		{"garbage pair skipped", "nonsense; token=abc", Credential{Token: "abc"}},
		{"whitespace only", "   ", Credential{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCredential(tt.header))
		})
	}
}

func TestCookieNames_Custom(t *testing.T) {
	names := CookieNames{Token: "fd_token", Role: "fd_role"}
	got := names.Parse("token=ignored; fd_token=xyz; fd_role=coordinator")
	assert.Equal(t, Credential{Token: "xyz", Role: "coordinator"}, got)
}

func TestCredential_Authenticated(t *testing.T) {
	assert.False(t, Credential{}.Authenticated())
	assert.False(t, Credential{Role: "admin"}.Authenticated())
	assert.True(t, Credential{Token: "abc"}.Authenticated())
}
