package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	ProfileService  ProfileService
	SearchService   SearchService
	BlogService     BlogService
	ChatService     ChatService
	PaymentService  PaymentService
	DocumentService DocumentService
	ContactService  ContactService
	MediaService    MediaService
	EmailService    *EmailService
}
