package dto

// RegisterRequest - регистрация по email и паролю
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"omitempty,max=150"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// LogoutRequest - отсутствие refresh проверяет сервис (400, а не ошибка валидации)
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"id_token"`
}

// AuthResponse - пара токенов и пользователь
type AuthResponse struct {
	Access      string        `json:"access"`
	Refresh     string        `json:"refresh"`
	User        *UserResponse `json:"user"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}
