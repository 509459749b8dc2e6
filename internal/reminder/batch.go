package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rgalloway/tally/internal/store"
)

// RecipientSource lists every user the batch should consider.
type RecipientSource interface {
	ListReminderRecipients() ([]store.ReminderRecipient, error)
}

// UserError records one user's failure without aborting the batch.
type UserError struct {
	UserID int64  `json:"user_id"`
	Error  string `json:"error"`
}

// Result is the aggregate outcome of one batch run. It is the only
// observable output to whatever triggered the run.
type Result struct {
	RunID            string      `json:"run_id"`
	Timestamp        time.Time   `json:"timestamp"`
	Processed        int         `json:"processed"`
	RemindersSent    int         `json:"reminders_sent"`
	CelebrationsSent int         `json:"celebrations_sent"`
	Skipped          int         `json:"skipped"`
	Errors           []UserError `json:"errors"`
}

// Runner executes the evaluator across all opted-in users.
type Runner struct {
	recipients RecipientSource
	eval       *Evaluator
	logger     *slog.Logger
}

func NewRunner(recipients RecipientSource, eval *Evaluator, logger *slog.Logger) *Runner {
	return &Runner{
		recipients: recipients,
		eval:       eval,
		logger:     logger.With("component", "reminder_batch"),
	}
}

// Run evaluates every recipient once. Per-user failures are collected
// into the result; only a failure to fetch the recipient list itself
// aborts the run.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	result := Result{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Errors:    []UserError{},
	}

	users, err := r.recipients.ListReminderRecipients()
	if err != nil {
		return result, fmt.Errorf("fetch reminder recipients: %w", err)
	}

	r.logger.Info("batch started", "run_id", result.RunID, "recipients", len(users))

	for _, u := range users {
		outcome, err := r.eval.Evaluate(ctx, u)
		if err != nil {
			result.Processed++
			result.Errors = append(result.Errors, UserError{UserID: u.UserID, Error: err.Error()})
			r.logger.Error("user evaluation failed", "run_id", result.RunID, "user_id", u.UserID, "error", err)
			continue
		}

		switch outcome {
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeNoHabits:
			result.Processed++
			result.Skipped++
		case OutcomeReminderSent:
			result.Processed++
			result.RemindersSent++
		case OutcomeCelebrationSent:
			result.Processed++
			result.CelebrationsSent++
		default:
			result.Processed++
		}
	}

	r.logger.Info("batch finished",
		"run_id", result.RunID,
		"processed", result.Processed,
		"reminders_sent", result.RemindersSent,
		"celebrations_sent", result.CelebrationsSent,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}
