package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"learner": {
		"class:view",
		"quiz:take",
		"attempt:create",
		"attempt:view-own",
	},
	"instructor": {
		"class:create",
		"class:delete",
		"class:view",
		"quiz:ingest",
		"quiz:view-full",
		"attempt:view-all",
	},
}
