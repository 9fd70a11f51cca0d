package services

import (
	"context"
	"log"
	"sync"
	"time"

	"starLifeAPI/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher fans out push delivery over a small worker pool so
// request handlers never block on FCM.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Notification *notification.Notification
	Tokens       []notification.DeviceToken
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  5, // 5 workers is plenty for now
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()

	// Start cleanup job
	go dispatcher.cleanupOldNotifications()

	return dispatcher
}

// Allow injecting the real FCM provider from main.go
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification

	if d.pushProvider == nil || len(job.Tokens) == 0 {
		log.Printf("Skipping push for %s: Tokens=%d, ProviderSet=%v",
			notif.UserID, len(job.Tokens), d.pushProvider != nil)
		return
	}

	if err := d.pushProvider.SendPush(ctx, job.Tokens, notif.Title, notif.Message, notif.Data); err != nil {
		log.Printf("Push failed for user %s: %v", notif.UserID, err)
	}
}

// DispatchNotification adds a notification to the queue.
func (d *NotificationDispatcher) DispatchNotification(ctx context.Context, notif *notification.Notification, tokens []notification.DeviceToken) {
	job := &DispatchJob{
		Notification: notif,
		Tokens:       tokens,
	}

	select {
	case d.jobQueue <- job:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue notification %s: queue full", notif.ID)
	}
}

// Cleanup read notifications older than 90 days (runs daily).
func (d *NotificationDispatcher) cleanupOldNotifications() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.performCleanup()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) performCleanup() {
	ctx := context.Background()

	query := `
		DELETE FROM notifications
		WHERE is_read = true
		  AND created_at < NOW() - INTERVAL '90 days'
	`

	result, err := d.service.db.Exec(ctx, query)
	if err != nil {
		log.Printf("Failed to cleanup old notifications: %v", err)
		return
	}

	if rowsAffected := result.RowsAffected(); rowsAffected > 0 {
		log.Printf("Cleaned up %d old notifications", rowsAffected)
	}
}

// Stop the dispatcher gracefully
func (d *NotificationDispatcher) Stop() {
	log.Println("Stopping notification dispatcher...")
	close(d.stopChan)
	d.wg.Wait()
	log.Println("Notification dispatcher stopped")
}

// MockPushProvider logs instead of contacting FCM. Used in tests and when
// Firebase credentials are missing.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
