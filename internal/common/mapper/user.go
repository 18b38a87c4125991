package mapper

import (
	"github.com/AlibekovAA/task-tracker/backend/internal/common/dto"
	userdomain "github.com/AlibekovAA/task-tracker/backend/internal/user/domain"
)

func UserToDTO(user userdomain.User) dto.User {
	return dto.User{
		ID:        string(user.ID),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
