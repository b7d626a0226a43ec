package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/nebula-graph-cli/internal/application"
	"github.com/bnema/nebula-graph-cli/internal/domain"
)

func spinnerProfile(min int, addresses ...string) domain.Profile {
	cfg := domain.DefaultPoolConfig()
	cfg.Addresses = addresses
	cfg.MinSize = min
	return domain.Profile{Name: "prod", Pool: cfg}
}

func TestConnectSpinnerViewWhileWarming(t *testing.T) {
	m := newConnectSpinnerModel(spinnerProfile(2, "a:9669", "b:9669"), nil)

	assert.Contains(t, m.View(), "Opening 2 connection(s) for profile prod across 2 addresses...")

	single := newConnectSpinnerModel(spinnerProfile(1, "a:9669"), nil)
	assert.Contains(t, single.View(), "across 1 address...")
}

func TestConnectSpinnerReportsWarmedPool(t *testing.T) {
	tests := []struct {
		name    string
		stats   application.PoolStats
		want    string
		partial bool
	}{
		{
			name:  "all eager connections open",
			stats: application.PoolStats{Idle: 2, Total: 2, Max: 10},
			want:  "Pool prod ready: 2 idle, 2/10 open",
		},
		{
			name:    "unreachable address leaves the pool short",
			stats:   application.PoolStats{Idle: 1, Total: 1, Max: 10},
			want:    "Pool prod ready: 1 idle, 1/10 open",
			partial: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m := newConnectSpinnerModel(spinnerProfile(2, "a:9669", "b:9669"), nil)

			next, cmd := m.Update(poolWarmedMsg{stats: tc.stats})
			assert.NotNil(t, cmd)

			view := next.View()
			assert.Contains(t, view, tc.want)
			if tc.partial {
				assert.Contains(t, view, "wanted 2")
			} else {
				assert.NotContains(t, view, "wanted")
			}
		})
	}
}

func TestConnectSpinnerClearsOnFailure(t *testing.T) {
	m := newConnectSpinnerModel(spinnerProfile(2, "a:9669"), nil)

	next, _ := m.Update(poolWarmedMsg{err: errors.New("invalid pool config")})
	final, ok := next.(connectSpinnerModel)

	assert.True(t, ok)
	assert.Empty(t, final.View())
	assert.EqualError(t, final.err, "invalid pool config")
}
