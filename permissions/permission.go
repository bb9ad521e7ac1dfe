package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route pattern. An empty Roles list admits
// any authenticated caller; Public routes bypass authentication entirely.
type Permission struct {
	Roles  []string `json:"roles"`
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Public bool     `json:"public"`
}

func (p Permission) Allows(role string) bool {
	return len(p.Roles) == 0 || slices.Contains(p.Roles, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Disabled  bool         `json:"disabled"`

	index map[string]Permission
}

func key(method, path string) string {
	return method + " " + path
}

// Lookup returns the rule for a chi route pattern such as "/v1/bookings/{id}".
// Unknown routes yield a zero Permission and ok=false.
func (r *PermissionData) Lookup(method, path string) (Permission, bool) {
	if r.index == nil {
		idx := slices.IndexFunc(r.Endpoints, func(p Permission) bool {
			return p.Path == path && p.Method == method
		})
		if idx == -1 {
			return Permission{}, false
		}

		return r.Endpoints[idx], true
	}

	p, ok := r.index[key(method, path)]

	return p, ok
}

func (r *PermissionData) build() {
	r.index = make(map[string]Permission, len(r.Endpoints))

	for _, p := range r.Endpoints {
		if _, dup := r.index[key(p.Method, p.Path)]; dup {
			log.Warn().Str("method", p.Method).Str("path", p.Path).Msg("Duplicate permission entry, keeping the first one")

			continue
		}

		r.index[key(p.Method, p.Path)] = p
	}
}

// Parse decodes a permission table and validates its methods.
func Parse(raw []byte) (*PermissionData, error) {
	var data PermissionData

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err //nolint:wrapcheck
	}

	for _, p := range data.Endpoints {
		switch p.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return nil, fmt.Errorf("unsupported method %q for %s", p.Method, p.Path)
		}
	}

	data.build()

	return &data, nil
}

// Get loads the embedded permission table. A nil result makes the RBAC middleware deny everything.
func Get() *PermissionData {
	data, err := Parse(permissionsData)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(data.Endpoints)).Msg("Loaded route permissions")

	return data
}
