package auth

import (
	"errors"

	"github.com/simorakkaus/tarologist/internal/database"
)

// UserMessage maps identity errors onto the Russian-language categories the
// app shows. Unrecognized errors get the generic message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLogin):
		return "Логин может содержать только буквы, цифры, точки и дефисы (от 3 до 30 символов)"
	case errors.Is(err, ErrPasswordTooShort):
		return "Пароль должен содержать не менее 6 символов"
	case errors.Is(err, database.ErrInvalidPassword):
		return "Неверный пароль"
	case errors.Is(err, database.ErrUserNotFound):
		return "Пользователь не найден"
	case errors.Is(err, database.ErrLoginTaken):
		return "Этот логин уже занят"
	case errors.Is(err, database.ErrUserDisabled):
		return "Учетная запись отключена"
	case errors.Is(err, database.ErrSessionExpired), errors.Is(err, database.ErrSessionNotFound):
		return "Сессия истекла, войдите снова"
	case errors.Is(err, ErrUnauthenticated):
		return "Пользователь не авторизован"
	default:
		return "Произошла ошибка, попробуйте еще раз"
	}
}
