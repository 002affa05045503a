package models

// Upload - загруженный файл (обложки запросов, аватары профилей).
type Upload struct {
	BaseModel
	UserID     string `gorm:"not null;index"`
	EntityType string // "roast_request", "roaster_profile", "creator_profile"
	EntityID   string
	Usage      string // "cover_image", "avatar"
	Path       string `gorm:"not null"`
	MimeType   string
	Size       int64
	IsPublic   bool `gorm:"default:true"`

	OriginalName    string `gorm:"column:original_name"`
	URL             string `gorm:"column:url"`
	StorageProvider string `gorm:"column:storage_provider;default:'local'"` // 'local', 'cloudflare_r2'
}
