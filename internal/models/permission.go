package models

// Role bundles a set of page permissions and the admin users holding them.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Members     []string `json:"members"`
	CreatedAt   int64    `json:"created_at"`
}

// Known page permissions checked by the console.
const (
	PermBatchesManage     = "batches:manage"
	PermEnrollmentsManage = "enrollments:manage"
	PermOffersManage      = "offers:manage"
	PermOrdersManage      = "orders:manage"
	PermStudentsManage    = "students:manage"
	PermCategoriesManage  = "categories:manage"
	PermRolesManage       = "roles:manage"
)

// KnownPermissions lists every permission the console understands.
var KnownPermissions = []string{
	PermBatchesManage,
	PermEnrollmentsManage,
	PermOffersManage,
	PermOrdersManage,
	PermStudentsManage,
	PermCategoriesManage,
	PermRolesManage,
}
