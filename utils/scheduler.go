package utils

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"learnhub/database"
	"learnhub/draft"
	courseModels "learnhub/models/course"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartSchedulers registers the background jobs and starts the cron runner
func StartSchedulers() *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", sendProgressReminders)
	c.AddFunc("@every 30m", sweepIdleDrafts)

	c.Start()
	logScheduler("Background jobs started")
	return c
}

// sweepIdleDrafts drops authoring sessions abandoned without an explicit
// save or close.
func sweepIdleDrafts() {
	if dropped := draft.Sessions.Sweep(2 * time.Hour); dropped > 0 {
		logScheduler("Discarded idle authoring drafts")
	}
}

// sendProgressReminders nudges students whose enrollment has been sitting in
// IN PROGRESS for over a week. One reminder per idle period: the sent marker
// is cleared implicitly by the next progress update (updated_at moves past
// reminder_sent_at).
func sendProgressReminders() {
	db := database.Database.Db
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	var enrollments []courseModels.Enrollment
	if err := db.Where("status = ? AND is_deleted = ? AND updated_at < ?", courseModels.EnrollmentInProgress, false, cutoff).
		Where("reminder_sent_at IS NULL OR reminder_sent_at < updated_at").
		Find(&enrollments).Error; err != nil {
		logScheduler("Error fetching stale enrollments: " + err.Error())
		return
	}

	now := time.Now()
	for _, enrollment := range enrollments {
		SendProgressReminderEmail(enrollment.StudentEmail, enrollment.StudentName, enrollment.CourseName, enrollment.Progress)

		// UpdateColumn keeps updated_at untouched so the idle window stays accurate
		if err := db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).
			UpdateColumn("reminder_sent_at", now).Error; err != nil {
			logScheduler("Error marking reminder sent: " + err.Error())
		}
	}

	if len(enrollments) > 0 {
		logScheduler("Sent progress reminders")
	}
}
