package repository

import (
	"context"
	"strings"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "user")
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "user")
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return apperrors.FromDB(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *GormUserRepository) Update(ctx context.Context, id uint, updates map[string]any) (*models.User, error) {
	var user models.User
	if err := updateAndReload(ctx, r.db, &user, id, updates, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// updateAndReload loads the row (NotFound when absent), applies updates and
// reloads it into dest.
func updateAndReload(ctx context.Context, db *gorm.DB, dest any, id uint, updates map[string]any, entity string) error {
	db = db.WithContext(ctx)
	if err := db.First(dest, id).Error; err != nil {
		return apperrors.FromDB(err, entity)
	}
	if len(updates) > 0 {
		if err := db.Model(dest).Updates(updates).Error; err != nil {
			return apperrors.FromDB(err, entity)
		}
	}
	return apperrors.FromDB(db.First(dest, id).Error, entity)
}

// deleteByID removes the row, NotFound when nothing was deleted.
func deleteByID(ctx context.Context, db *gorm.DB, model any, id uint, entity string) error {
	res := db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return apperrors.FromDB(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(entity + " not found")
	}
	return nil
}

// firstMissingID returns the first id in ids with no row in scope, or 0 when
// all exist. Existence is checked up front because drivers differ on whether
// an UPDATE that changes nothing counts as affected.
func firstMissingID(scope *gorm.DB, ids []uint) (uint, error) {
	var found []uint
	if err := scope.Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return 0, err
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return id, nil
		}
	}
	return 0, nil
}
