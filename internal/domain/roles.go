package domain

// Role keys shipped with the seed catalog.
const (
	RoleSystemAdmin = "system_admin"
	RoleAdmin       = "admin"
	RoleCEO         = "ceo"
	RoleCFO         = "cfo"
	RoleHRManager   = "hr_manager"
	RoleAccountant  = "accountant"
	RoleSupervisor  = "supervisor"
	RoleEngineer    = "engineer"
	RoleEmployee    = "employee"
)

// Permission keys shipped with the seed catalog.
const (
	PermManageRoles        = "manage_roles"
	PermViewEmployees      = "view_employees"
	PermEditEmployees      = "edit_employees"
	PermViewContracts      = "view_contracts"
	PermEditContracts      = "edit_contracts"
	PermViewContractValues = "view_contract_values"
	PermViewPayroll        = "view_payroll"
	PermManagePayroll      = "manage_payroll"
	PermRequestLeave       = "request_leave"
	PermApproveLeave       = "approve_leave"
	PermViewReports        = "view_reports"
)
