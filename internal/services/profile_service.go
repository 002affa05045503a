package services

import (
	"encoding/json"

	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetCreatorProfile(db *gorm.DB, userID string) (*models.CreatorProfile, error)
	UpdateCreatorProfile(db *gorm.DB, userID string, req *dto.UpdateCreatorProfileRequest) error
	GetRoasterProfile(db *gorm.DB, userID, requesterID string) (*dto.RoasterProfileResponse, error)
	UpdateRoasterProfile(db *gorm.DB, userID string, req *dto.UpdateRoasterProfileRequest) error
	GetRoasterStats(db *gorm.DB, roasterID string) (*models.RoasterStats, error)
}

type ProfileServiceImpl struct {
	profileRepo repositories.ProfileRepository
}

func NewProfileService(profileRepo repositories.ProfileRepository) ProfileService {
	return &ProfileServiceImpl{profileRepo: profileRepo}
}

func (s *ProfileServiceImpl) GetCreatorProfile(db *gorm.DB, userID string) (*models.CreatorProfile, error) {
	profile, err := s.profileRepo.FindCreatorProfileByUser(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("Creator profile")
		}
		return nil, apperrors.InternalError(err)
	}
	return profile, nil
}

func (s *ProfileServiceImpl) UpdateCreatorProfile(db *gorm.DB, userID string, req *dto.UpdateCreatorProfileRequest) error {
	profile, err := s.profileRepo.FindCreatorProfileByUser(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return apperrors.NewNotFoundError("Creator profile")
		}
		return apperrors.InternalError(err)
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Company != nil {
		profile.Company = *req.Company
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}

	if err := s.profileRepo.UpdateCreatorProfile(db, profile); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// GetRoasterProfile возвращает профиль ростера вместе с производной
// статистикой. Скрытый профиль видит только сам владелец.
func (s *ProfileServiceImpl) GetRoasterProfile(db *gorm.DB, userID, requesterID string) (*dto.RoasterProfileResponse, error) {
	profile, err := s.profileRepo.FindRoasterProfileByUser(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("Roaster profile")
		}
		return nil, apperrors.InternalError(err)
	}

	if !profile.IsPublic && requesterID != userID {
		return nil, apperrors.NewNotFoundError("Roaster profile")
	}

	stats, err := s.profileRepo.GetRoasterStats(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.RoasterProfileResponse{
		UserID:          profile.UserID,
		DisplayName:     profile.DisplayName,
		Headline:        profile.Headline,
		Bio:             profile.Bio,
		Specialties:     profile.GetSpecialties(),
		ExperienceLevel: profile.ExperienceLevel,
		Stats:           stats,
	}, nil
}

func (s *ProfileServiceImpl) UpdateRoasterProfile(db *gorm.DB, userID string, req *dto.UpdateRoasterProfileRequest) error {
	profile, err := s.profileRepo.FindRoasterProfileByUser(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return apperrors.NewNotFoundError("Roaster profile")
		}
		return apperrors.InternalError(err)
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Headline != nil {
		profile.Headline = *req.Headline
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Specialties != nil {
		specialtiesJSON, err := json.Marshal(req.Specialties)
		if err != nil {
			return apperrors.InternalError(err)
		}
		profile.Specialties = datatypes.JSON(specialtiesJSON)
	}
	if req.ExperienceLevel != nil {
		profile.ExperienceLevel = *req.ExperienceLevel
	}
	if req.IsPublic != nil {
		profile.IsPublic = *req.IsPublic
	}

	if err := s.profileRepo.UpdateRoasterProfile(db, profile); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// GetRoasterStats отдает статистику ростера как есть - она всегда
// пересчитывается из исходных записей.
func (s *ProfileServiceImpl) GetRoasterStats(db *gorm.DB, roasterID string) (*models.RoasterStats, error) {
	stats, err := s.profileRepo.GetRoasterStats(db, roasterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return stats, nil
}
