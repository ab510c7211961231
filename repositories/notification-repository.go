package repositories

import (
	"os"
	"time"

	"taskboard/logging"
	"taskboard/models"

	"github.com/gocql/gocql"
)

// NotificationRepo čuva notifikacije u Cassandri, particionisane po emailu
// i klasterovane po vremenu kreiranja, najnovije prvo.
type NotificationRepo struct {
	session *gocql.Session
}

func NewNotificationRepo() (*NotificationRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: Failed to connect to Cassandra: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS notifications
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_FAILED, Description: Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "notifications"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_CONNECT_FAILED, Description: Failed to connect to notifications keyspace: %v", err)
		return nil, err
	}

	logging.Logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra notifications keyspace")
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
}

func (nr *NotificationRepo) CreateTable() {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			email TEXT,
			user_id TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((email), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create notifications table: %v", err)
	}
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, email, user_id, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.Email, notification.UserID, notification.Message, notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_INSERT_FAILED, Description: Failed to insert notification: %v", err)
		return err
	}
	return nil
}

func (nr *NotificationRepo) GetNotificationsByEmail(email string) ([]models.Notification, error) {
	query := `SELECT id, user_id, email, message, created_at, is_read
			  FROM notifications WHERE email = ?`

	iter := nr.session.Query(query, email).Iter()
	var notifications []models.Notification
	var notification models.Notification

	for iter.Scan(&notification.ID, &notification.UserID, &notification.Email,
		&notification.Message, &notification.CreatedAt, &notification.IsRead) {
		notifications = append(notifications, notification)
	}

	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_FETCH_FAILED, Description: Failed to fetch notifications for %s: %v", email, err)
		return nil, err
	}

	return notifications, nil
}

func (nr *NotificationRepo) MarkNotificationAsRead(email, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return err
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return err
	}

	query := `UPDATE notifications SET is_read = true WHERE email = ? AND id = ? AND created_at = ?`
	return nr.session.Query(query, email, uuid, parsedCreatedAt).Exec()
}

func (nr *NotificationRepo) DeleteNotification(email, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return err
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return err
	}

	query := `DELETE FROM notifications WHERE email = ? AND id = ? AND created_at = ?`
	return nr.session.Query(query, email, uuid, parsedCreatedAt).Exec()
}
