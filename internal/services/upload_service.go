package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/logger"
	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/internal/storage"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UploadService interface {
	// UploadRequestCover загружает обложку запроса. Разрешено только
	// владельцу запроса; предыдущая обложка удаляется из хранилища.
	UploadRequestCover(ctx context.Context, db *gorm.DB, userID, requestID string, file *multipart.FileHeader) (*dto.UploadResponse, error)

	GetUpload(db *gorm.DB, uploadID string) (*models.Upload, error)
	DeleteUpload(ctx context.Context, db *gorm.DB, userID, uploadID string) error
}

type UploadServiceImpl struct {
	uploadRepo  repositories.UploadRepository
	requestRepo repositories.RequestRepository
	storage     storage.Storage
}

func NewUploadService(
	uploadRepo repositories.UploadRepository,
	requestRepo repositories.RequestRepository,
	store storage.Storage,
) UploadService {
	return &UploadServiceImpl{
		uploadRepo:  uploadRepo,
		requestRepo: requestRepo,
		storage:     store,
	}
}

func (s *UploadServiceImpl) UploadRequestCover(ctx context.Context, db *gorm.DB, userID, requestID string, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	request, err := s.requestRepo.FindByID(db, requestID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.NewNotFoundError("Roast request")
		}
		return nil, apperrors.InternalError(err)
	}
	if request.CreatorID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if err := validateUpload(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	path := buildStoragePath("roast_request", requestID, file.Filename)

	if err := s.storage.Save(ctx, path, src, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	upload := &models.Upload{
		UserID:          userID,
		EntityType:      "roast_request",
		EntityID:        requestID,
		Usage:           "cover_image",
		Path:            path,
		MimeType:        contentType,
		Size:            file.Size,
		IsPublic:        true,
		OriginalName:    file.Filename,
		URL:             url,
		StorageProvider: config.GetConfig().Storage.Type,
	}

	var previousCover *string

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := s.uploadRepo.Create(tx, upload); err != nil {
			return apperrors.InternalError(err)
		}

		previousCover = request.CoverImageID
		request.CoverImageID = &upload.ID
		if err := s.requestRepo.Update(tx, request); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
	if txErr != nil {
		// Запись не создана - подчищаем уже сохраненный файл.
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			logger.Warn("failed to clean up orphaned upload", "path", path, "error", delErr)
		}
		return nil, txErr
	}

	if previousCover != nil {
		s.removeUpload(ctx, db, *previousCover)
	}

	return &dto.UploadResponse{
		ID:        upload.ID,
		URL:       upload.URL,
		MimeType:  upload.MimeType,
		Size:      upload.Size,
		CreatedAt: upload.CreatedAt,
	}, nil
}

func (s *UploadServiceImpl) GetUpload(db *gorm.DB, uploadID string) (*models.Upload, error) {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUploadNotFound) {
			return nil, apperrors.NewNotFoundError("Upload")
		}
		return nil, apperrors.InternalError(err)
	}
	return upload, nil
}

func (s *UploadServiceImpl) DeleteUpload(ctx context.Context, db *gorm.DB, userID, uploadID string) error {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUploadNotFound) {
			return apperrors.NewNotFoundError("Upload")
		}
		return apperrors.InternalError(err)
	}

	if upload.UserID != userID {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.storage.Delete(ctx, upload.Path); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.uploadRepo.Delete(db, uploadID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// Helper Methods

// removeUpload удаляет файл и запись без проверки прав - внутренняя замена
// обложки. Ошибки только логируются: старый файл не должен ронять запрос.
func (s *UploadServiceImpl) removeUpload(ctx context.Context, db *gorm.DB, uploadID string) {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		return
	}
	if err := s.storage.Delete(ctx, upload.Path); err != nil {
		logger.Warn("failed to delete replaced file", "path", upload.Path, "error", err)
	}
	if err := s.uploadRepo.Delete(db, uploadID); err != nil {
		logger.Warn("failed to delete replaced upload record", "upload_id", uploadID, "error", err)
	}
}

func validateUpload(file *multipart.FileHeader) error {
	cfg := config.GetConfig().Upload

	if cfg.MaxSize > 0 && file.Size > cfg.MaxSize {
		return apperrors.ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if len(cfg.AllowedTypes) > 0 {
		allowed := false
		for _, t := range cfg.AllowedTypes {
			if strings.EqualFold(t, contentType) {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.ErrInvalidFileType
		}
	}

	return nil
}

func buildStoragePath(entityType, entityID, filename string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%s/%d_%s%s", entityType, entityID, time.Now().Unix(), hex.EncodeToString(buf), ext)
}
