package db

import (
	"context"
	"errors"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"gorm.io/gorm"
)

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.first(ctx, &u, id, "usuario"); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound("usuario no encontrado")
		}
		return nil, err
	}
	return &u, nil
}

// UsernameExists reports whether another user (id != exceptID) has username.
func (r *Repository) UsernameExists(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	return translateWrite(r.db.WithContext(ctx).Create(u).Error, "username ya existe")
}

func (r *Repository) SaveUser(ctx context.Context, u *models.User) error {
	return translateWrite(r.db.WithContext(ctx).Save(u).Error, "username ya existe")
}

func (r *Repository) DeleteUser(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.NotFound("usuario no encontrado")
	}
	return nil
}
