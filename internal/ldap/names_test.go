package ldap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "valid-name1", want: "valid-name1"},
		{name: "trimmed", input: "  ws01 ", want: "ws01"},
		{name: "space and bang", input: "bad name!", wantErr: true},
		{name: "filter metacharacters", input: "admin)(cn=*", wantErr: true},
		{name: "dn metacharacters", input: "a,b", wantErr: true},
		{name: "underscore", input: "svc_account", wantErr: true},
		{name: "non-ascii", input: "jöhn", wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeFilterValue(t *testing.T) {
	assert.Equal(t, `\2a\28\29\5c`, EscapeFilterValue(`*()\`))
	assert.Equal(t, "plain", EscapeFilterValue("plain"))
}

func TestValidateHostTarget(t *testing.T) {
	got, err := ValidateHostTarget(" web.corp.local. ")
	require.NoError(t, err)
	assert.Equal(t, "web.corp.local", got)

	_, err = ValidateHostTarget("")
	assert.True(t, IsValidationError(err))

	_, err = ValidateHostTarget(strings.Repeat("a", 64) + ".corp.local")
	assert.True(t, IsValidationError(err))

	_, err = ValidateHostTarget("wŵw.example.com")
	assert.True(t, IsValidationError(err))
}

func TestValidateGroupName(t *testing.T) {
	for _, name := range []string{"Domain Admins", "Remote Desktop Users", " app-admins ", "Ops (EU)"} {
		got, err := ValidateGroupName(name)
		require.NoError(t, err, name)
		assert.Equal(t, strings.TrimSpace(name), got)
	}

	for _, name := range []string{"", "  ", "bad\x00group", "tab\tgroup"} {
		_, err := ValidateGroupName(name)
		assert.True(t, IsValidationError(err), "%q", name)
	}
}

func TestFilterFor_EscapesGroupNames(t *testing.T) {
	filter, err := filterFor(ObjectKindGroup, "Ops (EU)*")
	require.NoError(t, err)
	assert.Equal(t, `(&(objectClass=group)(cn=Ops \28EU\29\2a))`, filter)
}
