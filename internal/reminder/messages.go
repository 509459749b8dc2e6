package reminder

import (
	"fmt"
	"html"
	"strings"

	"github.com/rgalloway/tally/internal/model"
)

// Message is a composed email ready for the mail client.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// ReminderMessage composes the nudge sent when a user is below their
// threshold with habits still open.
func ReminderMessage(name string, incomplete []model.IncompleteHabit, rate, threshold int, appURL string) Message {
	if name == "" {
		name = "there"
	}

	var items strings.Builder
	for _, h := range incomplete {
		color := h.Color
		if color == "" {
			color = "#3b82f6"
		}
		fmt.Fprintf(&items,
			`<li style="padding: 10px 14px; margin-bottom: 8px; background: #f9fafb; border-left: 4px solid %s; border-radius: 4px;">%s <span style="color: #9ca3af; font-size: 12px;">%s</span></li>`,
			color, htmlEscape(h.HabitName), htmlEscape(h.Category))
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="font-size: 24px;">Daily Habit Reminder</h1>
  <p>Hey %s! Don't forget your habits today.</p>
  <p style="font-size: 32px; font-weight: bold; margin: 8px 0;">%d%%</p>
  <p style="color: #6b7280;">Today's completion rate. Your target: %d%%</p>
  <h3>⏰ Incomplete Habits (%d)</h3>
  <ul style="list-style: none; padding: 0;">%s</ul>
  <p><a href="%s">Complete Your Habits →</a></p>
</body>
</html>`, htmlEscape(name), rate, threshold, len(incomplete), items.String(), appURL)

	text := fmt.Sprintf("You have %d incomplete habits today. Current completion: %d%%. Target: %d%%",
		len(incomplete), rate, threshold)

	return Message{
		Subject: fmt.Sprintf("⏰ %d Habits Remaining Today", len(incomplete)),
		HTML:    html,
		Text:    text,
	}
}

// CelebrationMessage composes the email sent when every habit is done.
func CelebrationMessage(name string, total int, appURL string) Message {
	if name == "" {
		name = "Champion"
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; text-align: center;">
  <p style="font-size: 64px; margin: 0;">🎉</p>
  <h1 style="font-size: 28px;">Perfect Day!</h1>
  <p>Congratulations %s!</p>
  <p style="font-size: 48px; font-weight: bold; margin: 8px 0;">100%%</p>
  <p>All %d habits completed!</p>
  <p>Keep up the amazing work. Consistency is the key to building lasting habits.</p>
  <p><a href="%s">View Your Progress →</a></p>
</body>
</html>`, htmlEscape(name), total, appURL)

	return Message{
		Subject: "🎉 Perfect Day! All Habits Completed!",
		HTML:    html,
		Text:    fmt.Sprintf("Congratulations! You completed all %d habits today! 🎉", total),
	}
}

// TestMessage composes the email behind the "send me a test" button.
func TestMessage(name string) Message {
	if name == "" {
		name = "there"
	}
	return Message{
		Subject: "Tally test email",
		HTML:    fmt.Sprintf("<p>Hi %s, your email reminders are working.</p>", htmlEscape(name)),
		Text:    fmt.Sprintf("Hi %s, your email reminders are working.", name),
	}
}

// CheckResult is the interactive "what would happen right now" answer.
type CheckResult struct {
	ShouldRemind    bool
	ShouldCelebrate bool
	Message         string
}

// Check classifies today's numbers the same way the evaluator does,
// without the hour gate or idempotency, for the manual check endpoint.
func Check(completed, total, rate, threshold int) CheckResult {
	if total == 0 {
		return CheckResult{Message: "No active habits found"}
	}
	switch {
	case rate == 100:
		return CheckResult{
			ShouldCelebrate: true,
			Message:         fmt.Sprintf("🎉 Perfect day! You completed all %d habits!", total),
		}
	case rate < threshold:
		return CheckResult{
			ShouldRemind: true,
			Message:      fmt.Sprintf("📝 You have %d habits remaining (%d%% complete)", total-completed, rate),
		}
	default:
		return CheckResult{Message: fmt.Sprintf("✅ Great progress! %d%% complete", rate)}
	}
}

func htmlEscape(s string) string {
	return html.EscapeString(s)
}
