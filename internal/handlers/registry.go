package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler        *AuthHandler
	ProfileHandler     *ProfileHandler
	RequestHandler     *RequestHandler
	ApplicationHandler *ApplicationHandler
	FeedbackHandler    *FeedbackHandler
	UploadHandler      *UploadHandler
}
