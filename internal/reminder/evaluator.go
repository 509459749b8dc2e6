// Package reminder decides, per user and per tick, whether to send a
// reminder or celebration email, and runs that decision across all
// opted-in users as a batch.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/push"
	"github.com/rgalloway/tally/internal/store"
)

// Outcome classifies a single user's evaluation.
type Outcome int

const (
	// OutcomeSkipped means the user's local hour did not match their
	// reminder hour. Not an error; the user is simply not due yet.
	OutcomeSkipped Outcome = iota
	// OutcomeNoHabits means the user passed the hour gate but has no
	// active habits to remind about.
	OutcomeNoHabits
	// OutcomeNoSend means the user was evaluated and no message was
	// warranted (at or above threshold, or already sent today).
	OutcomeNoSend
	// OutcomeReminderSent and OutcomeCelebrationSent report a delivered
	// email of the corresponding type.
	OutcomeReminderSent
	OutcomeCelebrationSent
)

// StatsSource provides today's completion numbers for a user.
type StatsSource interface {
	DailyCounts(userID int64, date string) (completed, total int, err error)
	ListIncomplete(userID int64, date string) ([]model.IncompleteHabit, error)
}

// AuditLog records sends and answers the once-per-day idempotency check.
type AuditLog interface {
	Insert(entry model.EmailLog) error
	SentToday(userID int64, emailType, date string) (bool, error)
}

// Mailer is the email collaborator.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// PushSender delivers browser notifications alongside emails.
type PushSender interface {
	Configured() bool
	Send(sub *model.PushSubscription, payload push.Payload) error
}

// SubscriptionSource lists and prunes a user's push subscriptions.
type SubscriptionSource interface {
	ListByUser(userID int64) ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

// Evaluator applies the per-user reminder algorithm for one tick.
type Evaluator struct {
	stats  StatsSource
	audit  AuditLog
	mail   Mailer
	pusher PushSender
	subs   SubscriptionSource
	appURL string
	logger *slog.Logger
	now    func() time.Time
}

func NewEvaluator(stats StatsSource, audit AuditLog, mail Mailer, pusher PushSender, subs SubscriptionSource, appURL string, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		stats:  stats,
		audit:  audit,
		mail:   mail,
		pusher: pusher,
		subs:   subs,
		appURL: appURL,
		logger: logger.With("component", "reminder"),
		now:    time.Now,
	}
}

func rate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// localHour resolves the user's current hour in their stored timezone.
// An invalid timezone falls back to UTC; that fallback is logged so bad
// user-entered identifiers are visible, unlike an ordinary skip.
func (e *Evaluator) localHour(userID int64, tz string) int {
	if tz == "" {
		tz = model.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.logger.Warn("invalid timezone, falling back to UTC", "user_id", userID, "timezone", tz)
		return e.now().UTC().Hour()
	}
	return e.now().In(loc).Hour()
}

// Evaluate runs the reminder decision for one user. A delivery failure
// is recorded in the audit log with status failed and returned; the
// caller counts it without aborting the batch.
func (e *Evaluator) Evaluate(ctx context.Context, rcpt store.ReminderRecipient) (Outcome, error) {
	reminderHour := (&model.Profile{ReminderTime: rcpt.ReminderTime}).ReminderHour()
	if e.localHour(rcpt.UserID, rcpt.Timezone) != reminderHour {
		return OutcomeSkipped, nil
	}

	today := e.now().UTC().Format("2006-01-02")

	completed, total, err := e.stats.DailyCounts(rcpt.UserID, today)
	if err != nil {
		return OutcomeNoSend, fmt.Errorf("daily counts for user %d: %w", rcpt.UserID, err)
	}
	if total == 0 {
		return OutcomeNoHabits, nil
	}

	threshold := rcpt.ReminderThreshold
	if threshold == 0 {
		threshold = model.DefaultReminderThreshold
	}
	pct := rate(completed, total)

	switch {
	case pct == 100 && rcpt.CelebrationEnabled:
		sent, err := e.audit.SentToday(rcpt.UserID, model.EmailTypeCelebration, today)
		if err != nil {
			return OutcomeNoSend, fmt.Errorf("idempotency check for user %d: %w", rcpt.UserID, err)
		}
		if sent {
			return OutcomeNoSend, nil
		}
		msg := CelebrationMessage(rcpt.FullName, total, e.appURL)
		if err := e.deliver(ctx, rcpt, model.EmailTypeCelebration, msg, pct, completed, total); err != nil {
			return OutcomeNoSend, err
		}
		return OutcomeCelebrationSent, nil

	case pct < threshold:
		sent, err := e.audit.SentToday(rcpt.UserID, model.EmailTypeReminder, today)
		if err != nil {
			return OutcomeNoSend, fmt.Errorf("idempotency check for user %d: %w", rcpt.UserID, err)
		}
		if sent {
			return OutcomeNoSend, nil
		}
		incomplete, err := e.stats.ListIncomplete(rcpt.UserID, today)
		if err != nil {
			return OutcomeNoSend, fmt.Errorf("incomplete habits for user %d: %w", rcpt.UserID, err)
		}
		if len(incomplete) == 0 {
			return OutcomeNoSend, nil
		}
		msg := ReminderMessage(rcpt.FullName, incomplete, pct, threshold, e.appURL)
		if err := e.deliver(ctx, rcpt, model.EmailTypeReminder, msg, pct, completed, total); err != nil {
			return OutcomeNoSend, err
		}
		return OutcomeReminderSent, nil

	default:
		return OutcomeNoSend, nil
	}
}

// deliver sends one email plus the push channel, then records the audit
// row. The audit row is written for both success and failure; failed
// rows do not satisfy the idempotency check, so a later tick can retry.
func (e *Evaluator) deliver(ctx context.Context, rcpt store.ReminderRecipient, emailType string, msg Message, pct, completed, total int) error {
	entry := model.EmailLog{
		UserID:          rcpt.UserID,
		EmailType:       emailType,
		Subject:         msg.Subject,
		Status:          model.EmailStatusSent,
		CompletionRate:  pct,
		HabitsCompleted: completed,
		HabitsTotal:     total,
	}

	sendErr := e.mail.Send(ctx, rcpt.Email, msg.Subject, msg.HTML, msg.Text)
	if sendErr != nil {
		entry.Status = model.EmailStatusFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := e.audit.Insert(entry); err != nil {
		e.logger.Error("failed to record email log", "user_id", rcpt.UserID, "error", err)
	}
	if sendErr != nil {
		return fmt.Errorf("send %s email to user %d: %w", emailType, rcpt.UserID, sendErr)
	}

	e.notify(rcpt.UserID, msg)
	e.logger.Info("email sent", "user_id", rcpt.UserID, "type", emailType, "rate", pct)
	return nil
}

// notify mirrors the email onto the user's push subscriptions. Push is
// best effort: failures are logged, expired endpoints are pruned.
func (e *Evaluator) notify(userID int64, msg Message) {
	if e.pusher == nil || !e.pusher.Configured() {
		return
	}
	subs, err := e.subs.ListByUser(userID)
	if err != nil {
		e.logger.Error("failed to list push subscriptions", "user_id", userID, "error", err)
		return
	}
	for i := range subs {
		sub := &subs[i]
		err := e.pusher.Send(sub, push.Payload{Title: msg.Subject, Body: msg.Text, URL: e.appURL, Tag: "reminder"})
		if errors.Is(err, push.ErrExpired) {
			if err := e.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				e.logger.Error("failed to prune expired subscription", "user_id", userID, "error", err)
			}
			continue
		}
		if err != nil {
			e.logger.Warn("push send failed", "user_id", userID, "error", err)
		}
	}
}
