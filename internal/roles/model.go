package roles

import (
	"strings"
	"time"
)

// Role 角色
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// AllRoles 所有可分配角色
var AllRoles = []Role{RoleAdmin, RoleModerator, RoleUser}

// ParseRole 解析角色名（大小写不敏感）
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Assignment user_roles 表记录
type Assignment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_roles_user_role,priority:1" json:"user_id"`
	Role      Role      `gorm:"size:32;not null;uniqueIndex:idx_user_roles_user_role,priority:2" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName GORM 表名
func (Assignment) TableName() string {
	return "user_roles"
}
