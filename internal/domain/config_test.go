package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     PoolConfig
		wantErr error
		wantMsg string
	}{
		{
			name: "valid",
			cfg:  PoolConfig{Addresses: []string{"127.0.0.1:9669"}, MinSize: 1, MaxSize: 2},
		},
		{
			name: "equal bounds",
			cfg:  PoolConfig{Addresses: []string{"127.0.0.1:9669"}, MinSize: 3, MaxSize: 3},
		},
		{
			name:    "no addresses",
			cfg:     PoolConfig{MinSize: 1, MaxSize: 2},
			wantErr: ErrNoAddresses,
		},
		{
			name:    "blank address",
			cfg:     PoolConfig{Addresses: []string{" "}, MinSize: 1, MaxSize: 2},
			wantErr: ErrNoAddresses,
		},
		{
			name:    "min above max",
			cfg:     PoolConfig{Addresses: []string{"127.0.0.1:9669"}, MinSize: 5, MaxSize: 4},
			wantErr: ErrInvalidPoolSize,
		},
		{
			name:    "negative size",
			cfg:     PoolConfig{Addresses: []string{"127.0.0.1:9669"}, MinSize: -1, MaxSize: 4},
			wantMsg: "must not be negative",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.wantMsg != "":
				assert.ErrorContains(t, err, tc.wantMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoolConfigCloneDoesNotShareAddresses(t *testing.T) {
	t.Parallel()

	cfg := PoolConfig{Addresses: []string{"a:1", "b:2"}}
	clone := cfg.Clone()
	clone.Addresses[0] = "c:3"

	assert.Equal(t, "a:1", cfg.Addresses[0])
}

func TestParseConnURL(t *testing.T) {
	t.Parallel()

	profile, err := ParseConnURL("root:nebula@10.0.0.1:9669,10.0.0.2:9669/social")
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1:9669", "10.0.0.2:9669"}, profile.Pool.Addresses)
	assert.Equal(t, "root", profile.Pool.Username)
	assert.Equal(t, "nebula", profile.Pool.Password)
	assert.Equal(t, "social", profile.Space)
	assert.Equal(t, DefaultMinPoolSize, profile.Pool.MinSize)
	assert.Equal(t, DefaultMaxPoolSize, profile.Pool.MaxSize)
}

func TestParseConnURLWithoutSpace(t *testing.T) {
	t.Parallel()

	profile, err := ParseConnURL("root:p@ss@127.0.0.1:9669")
	require.NoError(t, err)

	assert.Equal(t, "p@ss", profile.Pool.Password)
	assert.Empty(t, profile.Space)
}

func TestParseConnURLRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "missing credentials", raw: "127.0.0.1:9669/space", wantErr: "missing credentials"},
		{name: "missing password separator", raw: "root@127.0.0.1:9669", wantErr: "expected user:password"},
		{name: "missing port", raw: "root:pw@localhost/space", wantErr: "invalid address"},
		{name: "no hosts", raw: "root:pw@/space", wantErr: "at least one server address"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseConnURL(tc.raw)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	valid := Profile{
		Name: "default",
		Pool: PoolConfig{Addresses: []string{"127.0.0.1:9669"}, MinSize: 1, MaxSize: 2, Username: "root"},
	}
	require.NoError(t, valid.Validate())

	missingName := valid
	missingName.Name = " "
	assert.ErrorContains(t, missingName.Validate(), "name is required")

	missingUser := valid
	missingUser.Pool.Username = ""
	assert.ErrorContains(t, missingUser.Validate(), "username is required")

	assert.Equal(t, "nebula/default/root", CredentialRef("default", "root"))
}
