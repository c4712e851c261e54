package store

import (
	"context"
	"errors"
	"fmt"

	"meal-planner/internal/pkg/common"

	"gorm.io/gorm"
)

// Store 資料存取入口
type Store struct {
	db     *gorm.DB
	People *PersonRepository
	Menus  *MenuRepository
}

// New 建立 Store
func New(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		People: &PersonRepository{db: db},
		Menus:  &MenuRepository{db: db},
	}
}

// Transaction 在同一個交易中執行 fn
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PersonRepository 使用者資料
type PersonRepository struct {
	db *gorm.DB
}

// List 所有使用者（依 ID 排序）
func (r *PersonRepository) List(ctx context.Context) ([]PersonModel, error) {
	var people []PersonModel
	if err := r.db.WithContext(ctx).Order("id").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// Get 以 ID 取得使用者
func (r *PersonRepository) Get(ctx context.Context, id uint) (*PersonModel, error) {
	var p PersonModel
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person %d: %w", id, err)
	}
	return &p, nil
}

// Create 新增使用者
func (r *PersonRepository) Create(ctx context.Context, p *PersonModel) error {
	p.ID = 0
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

// Update 更新使用者所有欄位
func (r *PersonRepository) Update(ctx context.Context, p *PersonModel) error {
	res := r.db.WithContext(ctx).Model(&PersonModel{ID: p.ID}).
		Select("Name", "Sex", "Age", "Weight", "Height", "Activity", "Goal", "TDEE").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("failed to update person %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrPersonNotFound
	}
	return nil
}

// Delete 刪除使用者及其菜單
func (r *PersonRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", id).Delete(&MenuModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete menus of person %d: %w", id, err)
		}
		res := tx.Delete(&PersonModel{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete person %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return common.ErrPersonNotFound
		}
		return nil
	})
}

// SetIngredients 取代允許與排除清單
func (r *PersonRepository) SetIngredients(ctx context.Context, id uint, allowed, excluded []string) error {
	res := r.db.WithContext(ctx).Model(&PersonModel{ID: id}).
		Select("Allowed", "Excluded").
		Updates(&PersonModel{Allowed: StringSlice(allowed), Excluded: StringSlice(excluded)})
	if res.Error != nil {
		return fmt.Errorf("failed to update ingredients of person %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrPersonNotFound
	}
	return nil
}

// MenuRepository 已儲存的菜單
type MenuRepository struct {
	db *gorm.DB
}

// Save 新增菜單
func (r *MenuRepository) Save(ctx context.Context, m *MenuModel) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to save menu: %w", err)
	}
	return nil
}

// UpdateData 更新菜單內容
func (r *MenuRepository) UpdateData(ctx context.Context, id string, data RawJSON) error {
	res := r.db.WithContext(ctx).Model(&MenuModel{ID: id}).Update("data", data)
	if res.Error != nil {
		return fmt.Errorf("failed to update menu %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrMenuNotFound
	}
	return nil
}

// Latest 使用者最近一次的菜單；kind 為空時不限種類
func (r *MenuRepository) Latest(ctx context.Context, personID uint, kind string) (*MenuModel, error) {
	q := r.db.WithContext(ctx).Where("person_id = ?", personID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var m MenuModel
	if err := q.Order("created_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to get latest menu of person %d: %w", personID, err)
	}
	return &m, nil
}

// Count 使用者的菜單數量
func (r *MenuRepository) Count(ctx context.Context, personID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&MenuModel{}).Where("person_id = ?", personID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count menus: %w", err)
	}
	return n, nil
}
