package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"roastmyapp_backend/internal/auth"
	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) error
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(db *gorm.DB, refreshToken string) (*dto.LoginResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	SwitchRole(db *gorm.DB, userID string, role models.UserRole) error
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Register - регистрация нового пользователя с профилем выбранной роли.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) error {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return apperrors.ErrWeakPassword
	}

	if req.Role != models.UserRoleCreator && req.Role != models.UserRoleRoaster {
		return apperrors.ErrInvalidUserRole
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	// Пользователь и профиль создаются атомарно.
	return db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Email:        req.Email,
			PasswordHash: hashedPassword,
			Name:         req.Name,
			ActiveRole:   req.Role,
			Status:       models.UserStatusActive,
		}

		if err := s.userRepo.Create(tx, user); err != nil {
			if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
				return apperrors.ErrEmailAlreadyExists
			}
			return apperrors.InternalError(err)
		}

		if req.Role == models.UserRoleCreator {
			profile := &models.CreatorProfile{
				UserID:      user.ID,
				DisplayName: req.Name,
				Company:     req.Company,
				Website:     req.Website,
			}
			if err := s.profileRepo.CreateCreatorProfile(tx, profile); err != nil {
				return apperrors.InternalError(err)
			}
			return nil
		}

		specialtiesJSON, err := json.Marshal(req.Specialties)
		if err != nil {
			return apperrors.InternalError(err)
		}
		experienceLevel := req.ExperienceLevel
		if experienceLevel == "" {
			experienceLevel = models.ExperienceJunior
		}
		profile := &models.RoasterProfile{
			UserID:          user.ID,
			DisplayName:     req.Name,
			Specialties:     datatypes.JSON(specialtiesJSON),
			ExperienceLevel: experienceLevel,
			IsPublic:        true,
		}
		if err := s.profileRepo.CreateRoasterProfile(tx, profile); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("Account is not active")
	}

	return s.issueTokens(db, user)
}

// Refresh - обмен refresh-токена на новую пару токенов
func (s *AuthServiceImpl) Refresh(db *gorm.DB, refreshToken string) (*dto.LoginResponse, error) {
	stored, err := s.refreshTokenRepo.Find(db, refreshToken)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if stored.ExpiresAt.Before(time.Now()) {
		_ = s.refreshTokenRepo.Delete(db, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(db, stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	// Ротация: старый refresh-токен отзывается.
	if err := s.refreshTokenRepo.Delete(db, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(db, user)
}

// Logout - отзыв refresh-токена
func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	return s.refreshTokenRepo.Delete(db, refreshToken)
}

// SwitchRole - переключение активной роли пользователя.
// Профиль для целевой роли должен уже существовать.
func (s *AuthServiceImpl) SwitchRole(db *gorm.DB, userID string, role models.UserRole) error {
	if role != models.UserRoleCreator && role != models.UserRoleRoaster {
		return apperrors.ErrInvalidUserRole
	}

	var err error
	if role == models.UserRoleCreator {
		_, err = s.profileRepo.FindCreatorProfileByUser(db, userID)
	} else {
		_, err = s.profileRepo.FindRoasterProfileByUser(db, userID)
	}
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return apperrors.ErrProfileRequired
		}
		return apperrors.InternalError(err)
	}

	return s.userRepo.UpdateActiveRole(db, userID, role)
}

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.LoginResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.ActiveRole))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken := generateRandomToken()
	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Role:         user.ActiveRole,
	}, nil
}

func generateRandomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
