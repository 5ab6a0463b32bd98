package service

import (
	"SwipeVault/internal/repo"
	"SwipeVault/model"
	"SwipeVault/utils"
	"errors"
)

// CreateUser hashes the password and creates a user.
func CreateUser(user *model.User) error {
	user.Password = utils.GetPwd(user.Password)
	return repo.Db.Create(user).Error
}

// FindIdByUsername returns user ID by username.
func FindIdByUsername(username string) (uint64, error) {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("user_name = ?", username).First(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// IsExist checks whether a user exists.
func IsExist(username string) (*model.User, error) {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("user_name = ?", username).First(&user).Error; err != nil {
		return &model.User{}, err
	}
	return &user, nil
}

// CheckPassword verifies a user's password.
func CheckPassword(username, password string) error {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("user_name = ?", username).First(&user).Error; err != nil {
		return err
	}
	if !utils.CheckPwd(password, user.Password) {
		return errors.New("password error")
	}
	return nil
}

// IsEmailExist checks whether an email is already registered.
func IsEmailExist(email string) error {
	var user model.User
	return repo.Db.Model(&model.User{}).Where("email = ?", email).First(&user).Error
}
