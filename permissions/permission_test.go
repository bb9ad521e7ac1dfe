package permissions_test

import (
	"marketplace/permissions"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()

	require.NotNil(t, data)
	assert.False(t, data.Disabled)
	assert.NotEmpty(t, data.Endpoints)
}

func TestLookup(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name   string
		path   string
		method string
		want   []string
	}{
		{name: "bids are for professionals", path: "/v1/auctions/{id}/bids", method: "POST", want: []string{"professional"}},
		{name: "release is admin only", path: "/v1/payments/{id}/release", method: "POST", want: []string{"admin"}},
		{name: "provider check-in", path: "/v1/bookings/{id}/checkin/provider", method: "POST", want: []string{"professional"}},
		{name: "either party declines an offer", path: "/v1/bookings/{id}/decline", method: "POST", want: []string{"client", "professional"}},
		{name: "only the auction's client accepts a bid", path: "/v1/bids/{id}/accept", method: "POST", want: []string{"client"}},
		{name: "unknown route", path: "/v1/unknown", method: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := data.Lookup(tt.method, tt.path)

			assert.Equal(t, tt.want != nil, ok)
			assert.Equal(t, tt.want, p.Roles)
		})
	}
}

func TestPermission_Allows(t *testing.T) {
	assert.True(t, permissions.Permission{}.Allows("client"))
	assert.True(t, permissions.Permission{Roles: []string{"admin"}}.Allows("admin"))
	assert.False(t, permissions.Permission{Roles: []string{"admin"}}.Allows("professional"))
}

func TestParse(t *testing.T) {
	data, err := permissions.Parse([]byte(`{"endpoints":[{"path":"/v1/x","method":"GET","roles":["admin"]},{"path":"/v1/x","method":"GET","roles":["client"]}]}`))
	require.NoError(t, err)

	p, ok := data.Lookup("GET", "/v1/x")
	assert.True(t, ok)
	assert.Equal(t, []string{"admin"}, p.Roles)

	_, err = permissions.Parse([]byte(`{"endpoints":[{"path":"/v1/x","method":"TRACE"}]}`))
	require.Error(t, err)

	_, err = permissions.Parse([]byte(`{`))
	require.Error(t, err)
}

func TestEmbeddedTableHasNoDuplicates(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	seen := map[string]bool{}

	for _, p := range data.Endpoints {
		k := p.Method + " " + p.Path
		assert.False(t, seen[k], "duplicate entry %s", k)
		seen[k] = true
	}
}
