package services

import (
	"log"

	"school-fundraiser-platform/internal/config"
)

// MockNotificationService logs notifications instead of sending them, and
// delegates to Resend when an API key is configured.
type MockNotificationService struct {
	resendService *ResendEmailService
	useResend     bool
}

// NewMockNotificationService creates a notification service that falls back
// to logging when no Resend API key is provided
func NewMockNotificationService(resendConfig *config.ResendConfig) *MockNotificationService {
	service := &MockNotificationService{
		useResend: false,
	}

	if resendConfig != nil && resendConfig.APIKey != "" {
		service.resendService = NewResendEmailService(ResendConfig{
			APIKey:    resendConfig.APIKey,
			FromEmail: resendConfig.FromEmail,
			FromName:  resendConfig.FromName,
		})
		service.useResend = true
		log.Println("Notification service: Using Resend API")
	} else {
		log.Println("Notification service: Using mock (no Resend API key provided)")
	}

	return service
}

// SendNotificationEmail sends a notification email
func (s *MockNotificationService) SendNotificationEmail(toEmail, title, message string) bool {
	if s.useResend && s.resendService != nil {
		return s.resendService.SendNotificationEmail(toEmail, title, message)
	}

	log.Printf("Mock Email: Notification %q sent to %s: %s", title, toEmail, message)
	return true
}
