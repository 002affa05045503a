package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService        AuthService
	ProfileService     ProfileService
	RequestService     RequestService
	ApplicationService ApplicationService
	SelectionService   SelectionService
	FeedbackService    FeedbackService
	UploadService      UploadService
}
