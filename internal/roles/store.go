package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAlreadyAssigned (user_id, role) 已存在
var ErrAlreadyAssigned = errors.New("role already assigned")

// Store user_roles 数据访问
type Store struct {
	db *gorm.DB
}

// NewStore 创建 Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Exists 判断 (userID, role) 是否已存在
func (s *Store) Exists(ctx context.Context, userID string, role Role) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Assignment{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check role assignment: %w", err)
	}
	return count > 0, nil
}

// HasRole 判断用户是否持有任一给定角色
func (s *Store) HasRole(ctx context.Context, userID string, roles ...Role) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Assignment{}).
		Where("user_id = ? AND role IN ?", userID, roles).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check user roles: %w", err)
	}
	return count > 0, nil
}

// Create 写入记录，ID 为空时生成 UUID
func (s *Store) Create(ctx context.Context, a *Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyAssigned
		}
		return fmt.Errorf("insert role assignment: %w", err)
	}
	return nil
}

// ListByUser 按创建时间返回用户的全部角色
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Assignment, error) {
	var out []Assignment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	return out, nil
}

// isDuplicateKey 识别唯一约束冲突。TranslateError 未开启时退回到错误文本匹配。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
