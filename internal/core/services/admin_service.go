package services

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"cryptex-console/internal/adapters/backend"
)

// AdminService relays user management and system administration calls
// to the exchange backend: user CRUD, settings, audit log, maintenance
// mode, backups. The backend owns all persistence; the console only
// forwards and gates by permission.
type AdminService struct {
	gw *backend.Client
}

// NewAdminService creates a new admin service
func NewAdminService(gw *backend.Client) *AdminService {
	return &AdminService{gw: gw}
}

func (s *AdminService) get(ctx context.Context, bearer, path string, query url.Values) (json.RawMessage, *backend.Error) {
	res := s.gw.Do(ctx, backend.Request{
		Method:     "GET",
		Path:       path,
		Query:      query,
		Bearer:     bearer,
		Retries:    -1,
		Idempotent: true,
	})
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

func (s *AdminService) send(ctx context.Context, bearer, method, path string, body interface{}) (json.RawMessage, *backend.Error) {
	res := s.gw.Do(ctx, backend.Request{
		Method: method,
		Path:   path,
		Body:   body,
		Bearer: bearer,
	})
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

// ListUsers relays a paginated user query.
func (s *AdminService) ListUsers(ctx context.Context, bearer string, query url.Values) (json.RawMessage, *backend.Error) {
	return s.get(ctx, bearer, "/api/v1/users", query)
}

// GetUser relays a single-user lookup.
func (s *AdminService) GetUser(ctx context.Context, bearer, id string) (json.RawMessage, *backend.Error) {
	return s.get(ctx, bearer, "/api/v1/users/"+url.PathEscape(id), nil)
}

// CreateUser relays user creation.
func (s *AdminService) CreateUser(ctx context.Context, bearer string, body json.RawMessage) (json.RawMessage, *backend.Error) {
	return s.send(ctx, bearer, "POST", "/api/v1/users", body)
}

// UpdateUser relays user updates.
func (s *AdminService) UpdateUser(ctx context.Context, bearer, id string, body json.RawMessage) (json.RawMessage, *backend.Error) {
	return s.send(ctx, bearer, "PUT", "/api/v1/users/"+url.PathEscape(id), body)
}

// DeleteUser relays user deletion.
func (s *AdminService) DeleteUser(ctx context.Context, bearer, id string) (json.RawMessage, *backend.Error) {
	return s.send(ctx, bearer, "DELETE", "/api/v1/users/"+url.PathEscape(id), nil)
}

// GetSettings relays the system settings read.
func (s *AdminService) GetSettings(ctx context.Context, bearer string) (json.RawMessage, *backend.Error) {
	return s.get(ctx, bearer, "/api/v1/system/settings", nil)
}

// UpdateSettings relays a system settings update.
func (s *AdminService) UpdateSettings(ctx context.Context, bearer string, body json.RawMessage) (json.RawMessage, *backend.Error) {
	return s.send(ctx, bearer, "PUT", "/api/v1/system/settings", body)
}

// ListAudit relays a paginated audit log query.
func (s *AdminService) ListAudit(ctx context.Context, bearer string, query url.Values) (json.RawMessage, *backend.Error) {
	return s.get(ctx, bearer, "/api/v1/system/audit", query)
}

// SetMaintenance toggles the backend's maintenance mode.
func (s *AdminService) SetMaintenance(ctx context.Context, bearer string, enabled bool) (json.RawMessage, *backend.Error) {
	body, apiErr := s.send(ctx, bearer, "PUT", "/api/v1/system/maintenance", map[string]bool{"enabled": enabled})
	if apiErr == nil {
		log.Printf("✅ Maintenance mode set: %v", enabled)
	}
	return body, apiErr
}

// TriggerBackup asks the backend to start a backup run.
func (s *AdminService) TriggerBackup(ctx context.Context, bearer string) (json.RawMessage, *backend.Error) {
	body, apiErr := s.send(ctx, bearer, "POST", "/api/v1/system/backups", nil)
	if apiErr == nil {
		log.Println("✅ Backup triggered")
	}
	return body, apiErr
}
