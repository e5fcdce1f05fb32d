package services

import (
	"errors"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"gorm.io/gorm"
)

var ErrUserAlreadyExists = errors.New("user_already_exists")

type UserService interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	// Authenticate verifies credentials and returns the user on success.
	Authenticate(email, password string) (*models.User, error)
	UpdatePassword(userID uint, password string) error
	// EnsureAdmin creates the admin account if no user with that email exists.
	// Returns true when the account was created.
	EnsureAdmin(username, email, password string) (bool, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(user *models.User) error {
	var existing models.User
	if err := s.db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return s.db.Create(user).Error
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *userService) UpdatePassword(userID uint, password string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", user.PasswordHash).Error
}

func (s *userService) EnsureAdmin(username, email, password string) (bool, error) {
	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	admin := &models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	if err := s.db.Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
