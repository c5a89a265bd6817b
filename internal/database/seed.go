package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vismay-core/internal/auth"
)

// Seed data mirrors the bootstrap state an operator expects on a fresh
// install: the permission catalogue, the four system roles, one super-admin
// user and a handful of sample tenants and districts. Seeding only runs when
// the users table is empty, so an existing deployment is never touched.

type seedPermission struct {
	name string
	code string
}

var permissionCatalogue = []seedPermission{
	{"View Tenants", "tenants:view"},
	{"Create Tenants", "tenants:create"},
	{"Update Tenants", "tenants:update"},
	{"Delete Tenants", "tenants:delete"},
	{"View Districts", "districts:view"},
	{"Create Districts", "districts:create"},
	{"Update Districts", "districts:update"},
	{"Delete Districts", "districts:delete"},
	{"View Categories", "categories:view"},
	{"Create Categories", "categories:create"},
	{"Update Categories", "categories:update"},
	{"Delete Categories", "categories:delete"},
	{"View Products", "products:view"},
	{"Create Products", "products:create"},
	{"Update Products", "products:update"},
	{"Delete Products", "products:delete"},
	{"View Users", "users:view"},
	{"Create Users", "users:create"},
	{"Update Users", "users:update"},
	{"Delete Users", "users:delete"},
	{"View Roles", "roles:view"},
	{"Create Roles", "roles:create"},
	{"Update Roles", "roles:update"},
	{"Delete Roles", "roles:delete"},
	{"Assign Permissions", "roles:assign"},
	{"View Permissions", "permissions:view"},
	{"Create Permissions", "permissions:create"},
	{"Update Permissions", "permissions:update"},
	{"Delete Permissions", "permissions:delete"},
	{"View Audit Log", "audit:view"},
}

// executive is read-only; distributor inherits those view grants through the
// parent link and adds its own write grants on top.
var systemRoles = []struct {
	name        string
	description string
	parent      string
	grants      []string
}{
	{"super_admin", "Full system access", "", nil},
	{"executive", "Executive (read-only) access", "", []string{
		"tenants:view", "districts:view", "categories:view", "products:view", "users:view",
	}},
	{"distributor", "Distributor access", "executive", []string{
		"categories:create", "categories:update",
		"products:create", "products:update",
	}},
	{"admin", "Tenant-level admin", "", []string{
		"tenants:view", "tenants:create", "tenants:update", "tenants:delete",
		"districts:view", "districts:create", "districts:update", "districts:delete",
		"categories:view", "categories:create", "categories:update", "categories:delete",
		"products:view", "products:create", "products:update", "products:delete",
		"users:view", "users:create", "users:update", "users:delete",
		"roles:view", "audit:view",
	}},
}

var sampleTenants = []struct{ name, code string }{
	{"Channel Fashion", "CHANNEL_FASHION"},
	{"Channel Intimates", "CHANNEL_INTIMATES"},
	{"SIS", "SIS"},
	{"SOR", "SOR"},
}

var sampleDistricts = []struct{ name, state string }{
	{"Ernakulam", "Kerala"},
	{"Kozhikode", "Kerala"},
	{"Thrissur", "Kerala"},
	{"Thiruvananthapuram", "Kerala"},
}

const (
	superAdminEmail    = "superadmin@vismay.com"
	superAdminUsername = "superadmin"
	superAdminPassword = "Admin@1234"
)

func (db *DB) Seed(ctx context.Context, hasher auth.Hasher) error {
	var userCount int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	slog.Info("seeding initial data")
	now := time.Now().UTC()

	for _, p := range permissionCatalogue {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO permissions (id, name, code, created_at)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (code) DO NOTHING`,
			uuid.NewString(), p.name, p.code, now)
		if err != nil {
			return fmt.Errorf("seed permission %s: %w", p.code, err)
		}
	}

	roleIDs := map[string]string{}
	for _, r := range systemRoles {
		var parentID *string
		if r.parent != "" {
			id, ok := roleIDs[r.parent]
			if !ok {
				return fmt.Errorf("seed role %s: parent %s not seeded yet", r.name, r.parent)
			}
			parentID = &id
		}

		id := uuid.NewString()
		err := db.Pool.QueryRow(ctx,
			`INSERT INTO roles (id, tenant_id, parent_id, name, description, created_at)
			 VALUES ($1, NULL, $2, $3, $4, $5)
			 ON CONFLICT (tenant_id, name) DO UPDATE SET description = EXCLUDED.description
			 RETURNING id`,
			id, parentID, r.name, r.description, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", r.name, err)
		}
		roleIDs[r.name] = id

		for _, code := range r.grants {
			_, err := db.Pool.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id)
				 SELECT $1, id FROM permissions WHERE code = $2
				 ON CONFLICT DO NOTHING`,
				id, code)
			if err != nil {
				return fmt.Errorf("seed grant %s -> %s: %w", r.name, code, err)
			}
		}
	}

	hash, err := hasher.Hash(superAdminPassword)
	if err != nil {
		return fmt.Errorf("hash super admin password: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO users (id, tenant_id, role_id, username, email, first_name, last_name, password_hash, created_at, updated_at)
		 VALUES ($1, NULL, $2, $3, $4, 'Super', 'Admin', $5, $6, $6)
		 ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), roleIDs["super_admin"], superAdminUsername, superAdminEmail, hash, now)
	if err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}

	for _, t := range sampleTenants {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO tenants (id, name, code, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4) ON CONFLICT (code) DO NOTHING`,
			uuid.NewString(), t.name, t.code, now)
		if err != nil {
			return fmt.Errorf("seed tenant %s: %w", t.code, err)
		}
	}

	for _, d := range sampleDistricts {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO districts (id, name, state, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4) ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), d.name, d.state, now)
		if err != nil {
			return fmt.Errorf("seed district %s: %w", d.name, err)
		}
	}

	slog.Info("seed complete", "roles", len(systemRoles), "permissions", len(permissionCatalogue))
	return nil
}
