package auth

import "errors"

// RBAC роли и разрешения
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	PermBlogWrite      = "blog:write"
	PermBlogModerate   = "blog:moderate"
	PermContactRead    = "contact:read"
	PermProfileSelf    = "profile:write:self"
	PermMessagesSelf   = "messages:write:self"
	PermPaymentsSelf   = "payments:write:self"
	PermDocumentsSelf  = "documents:write:self"
	PermBlogCommentOwn = "blog:comment"
)

// Permissions список разрешений
var Permissions = map[string][]string{
	RoleAdmin: {
		PermBlogWrite,
		PermBlogModerate,
		PermContactRead,
		PermProfileSelf,
		PermMessagesSelf,
		PermPaymentsSelf,
		PermDocumentsSelf,
		PermBlogCommentOwn,
	},
	RoleUser: {
		PermProfileSelf,
		PermMessagesSelf,
		PermPaymentsSelf,
		PermDocumentsSelf,
		PermBlogCommentOwn,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdmin проверяет является ли пользователь администратором
func IsAdmin(claims *Claims) bool {
	return claims.Role == RoleAdmin
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return errors.New("invalid role")
	}
}
