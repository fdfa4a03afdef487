package model

// Role is a closed set of user roles. A role either grants a permission
// globally or not at all; there are no per-project overrides.
type Role string

const (
	RolePrincipalAdmin Role = "PRINCIPAL_ADMIN" // platform-level, cross-tenant
	RoleCompanyAdmin   Role = "COMPANY_ADMIN"
	RoleProjectManager Role = "PM"
	RoleForeman        Role = "FOREMAN"
	RoleOperative      Role = "OPERATIVE"
)

// Permission is a capability flag checked before every mutating store operation.
type Permission string

const (
	PermissionManageUsers      Permission = "MANAGE_USERS"
	PermissionManageProjects   Permission = "MANAGE_PROJECTS"
	PermissionViewAllProjects  Permission = "VIEW_ALL_PROJECTS"
	PermissionSubmitTimesheet  Permission = "SUBMIT_TIMESHEET"
	PermissionManageTimesheets Permission = "MANAGE_TIMESHEETS"
	PermissionUploadDocument   Permission = "UPLOAD_DOCUMENT"
	PermissionManageDocuments  Permission = "MANAGE_DOCUMENTS"
	PermissionManageTodos      Permission = "MANAGE_TODOS"
	PermissionManageEquipment  Permission = "MANAGE_EQUIPMENT"
	PermissionManageFinancials Permission = "MANAGE_FINANCIALS"
	PermissionReportIncident   Permission = "REPORT_INCIDENT"
	PermissionManageSafety     Permission = "MANAGE_SAFETY"
	PermissionViewAuditLog     Permission = "VIEW_AUDIT_LOG"
	PermissionUseAssistant     Permission = "USE_ASSISTANT"
)

// rolePermissions is the static role -> permission mapping. Adding a role or
// permission is a data change here, not a code change elsewhere.
var rolePermissions = map[Role][]Permission{
	RoleCompanyAdmin: {
		PermissionManageUsers,
		PermissionManageProjects,
		PermissionViewAllProjects,
		PermissionSubmitTimesheet,
		PermissionManageTimesheets,
		PermissionUploadDocument,
		PermissionManageDocuments,
		PermissionManageTodos,
		PermissionManageEquipment,
		PermissionManageFinancials,
		PermissionReportIncident,
		PermissionManageSafety,
		PermissionViewAuditLog,
		PermissionUseAssistant,
	},
	RoleProjectManager: {
		PermissionViewAllProjects,
		PermissionSubmitTimesheet,
		PermissionManageTimesheets,
		PermissionUploadDocument,
		PermissionManageDocuments,
		PermissionManageTodos,
		PermissionManageEquipment,
		PermissionReportIncident,
		PermissionManageSafety,
		PermissionUseAssistant,
	},
	RoleForeman: {
		PermissionSubmitTimesheet,
		PermissionUploadDocument,
		PermissionManageTodos,
		PermissionReportIncident,
		PermissionUseAssistant,
	},
	RoleOperative: {
		PermissionSubmitTimesheet,
		PermissionUploadDocument,
		PermissionReportIncident,
	},
}

// HasPermission reports whether the role grants the permission.
// The principal admin role grants everything, platform-wide.
func (r Role) HasPermission(p Permission) bool {
	if r == RolePrincipalAdmin {
		return true
	}
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Permissions returns the permission codes granted to the role.
func (r Role) Permissions() []Permission {
	if r == RolePrincipalAdmin {
		r = RoleCompanyAdmin
	}
	perms := make([]Permission, len(rolePermissions[r]))
	copy(perms, rolePermissions[r])
	return perms
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePrincipalAdmin, RoleCompanyAdmin, RoleProjectManager, RoleForeman, RoleOperative:
		return true
	}
	return false
}
