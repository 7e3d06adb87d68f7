package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	notifdomain "kanban-backend/internal/notification/domain"
	prefdomain "kanban-backend/internal/preference/domain"
	"kanban-backend/internal/task/domain"
	"kanban-backend/internal/task/repository"
	cronsched "kanban-backend/pkg/scheduler"
)

// overdueWindow bounds how long after the due moment an overdue reminder
// may still fire, so a restart does not replay every old deadline.
const overdueWindow = 24 * time.Hour

// Notifier is satisfied by *notification.Service.
type Notifier interface {
	Notify(ctx context.Context, userID string, msg notifdomain.Message) error
	Settings(ctx context.Context, userID string) prefdomain.NotificationSettings
	// Location is the user's timezone, used for "Today"/"Tomorrow" labels.
	Location(ctx context.Context, userID string) *time.Location
}

// TaskReminderScheduler sends due-date bucket reminders and explicit
// per-task reminders.
type TaskReminderScheduler struct {
	taskRepo repository.TaskRepository
	notifier Notifier
	dedupe   *Deduper
	appURL   string
	now      func() time.Time
}

// NewTaskReminderScheduler creates a new scheduler
func NewTaskReminderScheduler(taskRepo repository.TaskRepository, notifier Notifier, dedupe *Deduper, appURL string) *TaskReminderScheduler {
	return &TaskReminderScheduler{
		taskRepo: taskRepo,
		notifier: notifier,
		dedupe:   dedupe,
		appURL:   appURL,
		now:      time.Now,
	}
}

// Register runs the scan on s every interval, and once right away.
func (s *TaskReminderScheduler) Register(c *cronsched.Scheduler, interval time.Duration) error {
	if _, err := c.Every(interval, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("register reminder scan: %w", err)
	}
	log.Printf("[TaskScheduler] Starting task reminder scheduler (interval: %s)", interval)
	go s.RunOnce(context.Background())
	return nil
}

// RunOnce performs one scan and returns the number of notifications sent.
func (s *TaskReminderScheduler) RunOnce(ctx context.Context) int {
	now := s.now()
	return s.checkDueDates(ctx, now) + s.checkExplicitReminders(ctx, now)
}

func (s *TaskReminderScheduler) checkDueDates(ctx context.Context, now time.Time) int {
	tasks, err := s.taskRepo.FindDueWithin(ctx, now.Add(24*time.Hour))
	if err != nil {
		log.Printf("[TaskScheduler] Error finding tasks with due dates: %v", err)
		return 0
	}

	sent := 0
	for _, task := range tasks {
		if task.DueDate == nil || task.IsCompleted() {
			continue
		}
		if now.Sub(*task.DueDate) > overdueWindow {
			continue
		}
		bucket := domain.ClassifyReminder(*task.DueDate, now)
		if bucket == domain.BucketNone {
			continue
		}

		first, err := s.dedupe.Claim(ctx, task.ID, bucket)
		if err != nil {
			log.Printf("[TaskScheduler] Error recording reminder %s/%s: %v", task.ID, bucket, err)
			continue
		}
		if !first {
			continue
		}

		attempted, delivered := 0, 0
		for _, userID := range task.Recipients() {
			if !s.notifier.Settings(ctx, userID).BucketEnabled(string(bucket)) {
				continue
			}
			attempted++
			msg := s.bucketMessage(task, bucket, now.In(s.notifier.Location(ctx, userID)))
			if err := s.notifier.Notify(ctx, userID, msg); err != nil {
				log.Printf("[TaskScheduler] Error notifying user %s about task %s: %v", userID, task.ID, err)
				continue
			}
			delivered++
		}
		sent += delivered
		switch {
		case delivered > 0:
			log.Printf("[TaskScheduler] Sent %s reminder for task '%s'", bucket, task.Title)
		case attempted > 0:
			// Nobody got it; let the next scan try again.
			if err := s.dedupe.Release(ctx, task.ID, bucket); err != nil {
				log.Printf("[TaskScheduler] Error releasing reminder %s/%s: %v", task.ID, bucket, err)
			}
		}
	}
	return sent
}

func (s *TaskReminderScheduler) checkExplicitReminders(ctx context.Context, now time.Time) int {
	tasks, err := s.taskRepo.FindPendingReminders(ctx, now)
	if err != nil {
		log.Printf("[TaskScheduler] Error finding pending reminders: %v", err)
		return 0
	}
	if len(tasks) == 0 {
		return 0
	}

	log.Printf("[TaskScheduler] Found %d tasks with pending reminders", len(tasks))

	sent := 0
	for _, task := range tasks {
		if !task.IsCompleted() {
			for _, userID := range task.Recipients() {
				if !s.notifier.Settings(ctx, userID).Enabled {
					continue
				}
				msg := s.reminderMessage(task, now.In(s.notifier.Location(ctx, userID)))
				if err := s.notifier.Notify(ctx, userID, msg); err != nil {
					log.Printf("[TaskScheduler] Error sending reminder for task %s: %v", task.ID, err)
					continue
				}
				sent++
			}
		}

		// Mark reminder as sent regardless of success (to avoid spamming)
		if err := s.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
			log.Printf("[TaskScheduler] Error marking reminder as sent for task %s: %v", task.ID, err)
		}
	}
	return sent
}

func (s *TaskReminderScheduler) bucketMessage(task *domain.Task, bucket domain.ReminderBucket, now time.Time) notifdomain.Message {
	return notifdomain.Message{
		Title:              fmt.Sprintf("%s %s %s", priorityBadge(task.Priority), task.Title, bucket.Describe()),
		Body:               fmt.Sprintf("Due: %s", domain.FormatDueDate(task.DueDate, now)),
		Tag:                fmt.Sprintf("task-%s-%s", task.ID, bucket),
		RequireInteraction: bucket == domain.BucketOverdue,
		Link:               s.taskLink(task),
		Data: map[string]string{
			"type":     "due_reminder",
			"task_id":  task.ID,
			"board_id": task.BoardID,
			"bucket":   string(bucket),
			"priority": string(task.Priority),
		},
	}
}

func (s *TaskReminderScheduler) reminderMessage(task *domain.Task, now time.Time) notifdomain.Message {
	body := task.Description
	if body == "" {
		body = "You have a task to finish"
	}
	if task.DueDate != nil {
		body = fmt.Sprintf("%s\nDue: %s", body, domain.FormatDueDate(task.DueDate, now))
	}
	return notifdomain.Message{
		Title: fmt.Sprintf("%s Reminder: %s", priorityBadge(task.Priority), task.Title),
		Body:  body,
		Tag:   "task-" + task.ID + "-reminder",
		Link:  s.taskLink(task),
		Data: map[string]string{
			"type":     "task_reminder",
			"task_id":  task.ID,
			"board_id": task.BoardID,
			"priority": string(task.Priority),
		},
	}
}

func (s *TaskReminderScheduler) taskLink(task *domain.Task) string {
	return fmt.Sprintf("%s/boards/%s?task=%s", s.appURL, task.BoardID, task.ID)
}

func priorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "🔴"
	case domain.PriorityLow:
		return "🟢"
	}
	return "🟡"
}
