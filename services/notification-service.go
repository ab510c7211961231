package services

import (
	"context"
	"time"

	"taskboard/models"
	"taskboard/repositories"
)

// NotificationService je tanak sloj iznad Cassandra repozitorijuma;
// implementira Notifier koji koristi TaskService.
type NotificationService struct {
	repo *repositories.NotificationRepo
}

func NewNotificationService(repo *repositories.NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(ctx context.Context, email, userID, message string) error {
	return s.repo.CreateNotification(&models.Notification{
		Email:     email,
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now(),
		IsRead:    false,
	})
}

func (s *NotificationService) GetForUser(ctx context.Context, email string) ([]models.Notification, error) {
	return s.repo.GetNotificationsByEmail(email)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, email, notificationID, createdAt string) error {
	return s.repo.MarkNotificationAsRead(email, notificationID, createdAt)
}

func (s *NotificationService) Delete(ctx context.Context, email, notificationID, createdAt string) error {
	return s.repo.DeleteNotification(email, notificationID, createdAt)
}
