// internal/workers/infrastructure/verify-admin-access/models.go
package verifyadminaccess

type Input struct {
	UserID       string `json:"userId"`
	RequiredRole string `json:"requiredRole,omitempty"`
}

type Output struct {
	Allowed bool   `json:"allowed"`
	UserID  string `json:"userId"`
	Role    string `json:"role"`
}
