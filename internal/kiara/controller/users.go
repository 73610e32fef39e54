package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/auth"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"go.uber.org/zap"
)

type UserService struct {
	repo   Repository
	logger *zap.Logger
}

func NewUserService(repo Repository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger.Named("user_service")}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		users, err = repo.ListUsers(ctx)
		return err
	})
	return users, err
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u *models.User
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		u, err = repo.GetUser(ctx, id)
		return err
	})
	return u, err
}

func (s *UserService) Create(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, e.Invalid("username y password son requeridos")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, PasswordHash: hash, IsAdmin: isAdmin}

	err = s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		exists, err := repo.UsernameExists(ctx, username, 0)
		if err != nil {
			return err
		}
		if exists {
			return e.Conflict("username ya existe")
		}
		return repo.CreateUser(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.Uint("user_id", u.ID), zap.Bool("is_admin", u.IsAdmin))
	return u, nil
}

func (s *UserService) Update(ctx context.Context, update models.UserUpdate) (*models.User, error) {
	var hash string
	if update.Password != nil && *update.Password != "" {
		var err error
		if hash, err = auth.HashPassword(*update.Password); err != nil {
			return nil, err
		}
	}

	var u *models.User
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if u, err = repo.GetUser(ctx, update.ID); err != nil {
			return err
		}
		if update.Username != nil {
			username := strings.TrimSpace(*update.Username)
			if username == "" {
				return e.Invalid("username es requerido")
			}
			exists, err := repo.UsernameExists(ctx, username, u.ID)
			if err != nil {
				return err
			}
			if exists {
				return e.Conflict("username ya existe")
			}
			u.Username = username
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		if update.IsAdmin != nil {
			u.IsAdmin = *update.IsAdmin
		}
		return repo.SaveUser(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.DeleteUser(ctx, id)
	})
}

// Authenticate checks the credentials. Unknown users and wrong passwords
// yield the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, e.Invalid("username y password son requeridos")
	}

	var u *models.User
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		u, err = repo.GetUserByUsername(ctx, strings.TrimSpace(username))
		return err
	})
	if err != nil {
		if !errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		auth.BurnCompare(password)
		s.logger.Info("login failed", zap.String("reason", "unknown user"))
		return nil, invalidCredentials()
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.Info("login failed", zap.Uint("user_id", u.ID), zap.String("reason", "bad password"))
		return nil, invalidCredentials()
	}
	return u, nil
}

func invalidCredentials() error {
	return fmt.Errorf("%w: credenciales inválidas", e.ErrUnauthorized)
}
