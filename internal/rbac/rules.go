package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"catalog:view",
		"quiz:attempt",
		"progress:toggle",
		"material:download",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
