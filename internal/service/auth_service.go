package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/pkg/jwt"
	"github.com/qs3c/insider_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

type AuthService struct {
	userRepo      *repository.UserRepository
	accessService *AccessService
	cfg           *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, accessService *AccessService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		accessService: accessService,
		cfg:           cfg,
	}
}

// Register 用户注册
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user := &model.User{
		Username:           req.Username,
		Email:              &req.Email,
		PasswordHash:       &passwordStr,
		SubscriptionTier:   model.TierFree,
		SubscriptionStatus: model.StatusInactive,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  s.buildUserInfo(user),
	}, nil
}

// GetProfile 获取用户详情
func (s *AuthService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.buildUserInfo(user), nil
}

func (s *AuthService) buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:                 user.ID,
		Username:           user.Username,
		SubscriptionTier:   user.SubscriptionTier,
		SubscriptionStatus: user.SubscriptionStatus,
		Access:             s.accessService.Resolve(user, time.Now()),
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
	}

	if user.Email != nil {
		info.Email = *user.Email
	}

	return info
}
