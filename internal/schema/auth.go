package schema

type SignUp struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Image    *string `json:"image" validate:"omitempty,url"`
}

type SignIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmail struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}
