package reminder

import (
	"context"
	"errors"
	"testing"

	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/store"
)

type userCounts struct {
	completed, total int
}

type statsByUser struct {
	counts map[int64]userCounts
}

func (s *statsByUser) DailyCounts(userID int64, date string) (int, int, error) {
	c := s.counts[userID]
	return c.completed, c.total, nil
}

func (s *statsByUser) ListIncomplete(userID int64, date string) ([]model.IncompleteHabit, error) {
	return []model.IncompleteHabit{{HabitName: "Read"}}, nil
}

type fakeRecipients struct {
	users []store.ReminderRecipient
	err   error
}

func (f *fakeRecipients) ListReminderRecipients() ([]store.ReminderRecipient, error) {
	return f.users, f.err
}

// failFor fails sends to one address and delivers the rest.
type failFor struct {
	fakeMailer
	to string
}

func (f *failFor) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if to == f.to {
		return errors.New("mailbox on fire")
	}
	return f.fakeMailer.Send(ctx, to, subject, htmlBody, textBody)
}

func recipient(id int64, email string) store.ReminderRecipient {
	r := testRecipient()
	r.UserID = id
	r.Email = email
	return r
}

func TestRunAggregatesCounters(t *testing.T) {
	stats := &statsByUser{counts: map[int64]userCounts{
		1: {completed: 1, total: 5}, // below threshold: reminder
		2: {completed: 4, total: 4}, // perfect: celebration
		3: {completed: 0, total: 0}, // nothing to remind about
		5: {completed: 4, total: 5}, // 80%, above threshold
	}}
	mail := &fakeMailer{}
	eval := newTestEvaluator(stats, &fakeAudit{}, mail)

	notDue := recipient(4, "dana@example.com")
	notDue.ReminderTime = "09:00"

	runner := NewRunner(&fakeRecipients{users: []store.ReminderRecipient{
		recipient(1, "alice@example.com"),
		recipient(2, "bob@example.com"),
		recipient(3, "carol@example.com"),
		notDue,
		recipient(5, "erin@example.com"),
	}}, eval, discard())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected non-empty run ID")
	}
	if result.Processed != 4 {
		t.Errorf("processed = %d, want 4", result.Processed)
	}
	if result.RemindersSent != 1 {
		t.Errorf("reminders_sent = %d, want 1", result.RemindersSent)
	}
	if result.CelebrationsSent != 1 {
		t.Errorf("celebrations_sent = %d, want 1", result.CelebrationsSent)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", result.Skipped)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v, want none", result.Errors)
	}
	if len(mail.sent) != 2 {
		t.Errorf("sent %d emails, want 2", len(mail.sent))
	}
}

func TestRunIsolatesUserFailures(t *testing.T) {
	stats := &statsByUser{counts: map[int64]userCounts{
		1: {completed: 0, total: 5},
		2: {completed: 0, total: 5},
		3: {completed: 0, total: 5},
	}}
	mail := &failFor{to: "bob@example.com"}
	eval := newTestEvaluator(stats, &fakeAudit{}, mail)

	runner := NewRunner(&fakeRecipients{users: []store.ReminderRecipient{
		recipient(1, "alice@example.com"),
		recipient(2, "bob@example.com"),
		recipient(3, "carol@example.com"),
	}}, eval, discard())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want 1", result.Errors)
	}
	if result.Errors[0].UserID != 2 {
		t.Errorf("failed user = %d, want 2", result.Errors[0].UserID)
	}
	if result.RemindersSent != 2 {
		t.Errorf("reminders_sent = %d, want 2 (other users unaffected)", result.RemindersSent)
	}
	if result.Processed != 3 {
		t.Errorf("processed = %d, want 3", result.Processed)
	}
}

func TestRunFetchFailureAborts(t *testing.T) {
	eval := newTestEvaluator(&statsByUser{}, &fakeAudit{}, &fakeMailer{})
	runner := NewRunner(&fakeRecipients{err: errors.New("db gone")}, eval, discard())

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected error when recipient fetch fails")
	}
}
