package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID                 int64        `json:"id"`
	Username           string       `json:"username"`
	Email              string       `json:"email,omitempty"`
	SubscriptionTier   string       `json:"subscription_tier"`
	SubscriptionStatus string       `json:"subscription_status"`
	Access             *AccessLevel `json:"access,omitempty"`
	CreatedAt          string       `json:"created_at,omitempty"`
}
