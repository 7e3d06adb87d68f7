package notification

import (
	"context"
	"fmt"
	"html"
	"log"
	"sort"
	"strings"
	"time"

	authdomain "kanban-backend/internal/auth/domain"
	prefdomain "kanban-backend/internal/preference/domain"
	taskdomain "kanban-backend/internal/task/domain"
	"kanban-backend/pkg/mailer"
)

// DueTasks is satisfied by the task repository.
type DueTasks interface {
	FindDueWithin(ctx context.Context, until time.Time) ([]*taskdomain.Task, error)
}

// Users is satisfied by the auth user repository.
type Users interface {
	FindByIDs(ctx context.Context, ids []string) ([]*authdomain.User, error)
}

// DigestSettingsReader is satisfied by the preference usecase.
type DigestSettingsReader interface {
	DigestSettings(ctx context.Context, userID string) (prefdomain.DigestSettings, error)
}

// Locations is satisfied by *Service.
type Locations interface {
	Location(ctx context.Context, userID string) *time.Location
}

// MailSender is satisfied by *mailer.Mailer.
type MailSender interface {
	Enabled() bool
	Send(ctx context.Context, msg mailer.Message) error
}

// Digest e-mails each opted-in user a summary of their overdue tasks and
// tasks due today.
type Digest struct {
	tasks     DueTasks
	users     Users
	settings  DigestSettingsReader
	locations Locations
	mail      MailSender
	appURL    string
	now       func() time.Time
}

func NewDigest(tasks DueTasks, users Users, settings DigestSettingsReader, locations Locations, mail MailSender, appURL string) *Digest {
	return &Digest{
		tasks:     tasks,
		users:     users,
		settings:  settings,
		locations: locations,
		mail:      mail,
		appURL:    appURL,
		now:       time.Now,
	}
}

// lookahead covers the end of "today" in every timezone, up to UTC+14.
const lookahead = 38 * time.Hour

type digestEntry struct {
	task  *taskdomain.Task
	label string
}

// Run sends the digests and returns how many e-mails went out.
func (d *Digest) Run(ctx context.Context) (int, error) {
	if d.mail == nil || !d.mail.Enabled() {
		log.Println("[Digest] Mailer not configured, skipping daily digest")
		return 0, nil
	}

	now := d.now()
	tasks, err := d.tasks.FindDueWithin(ctx, now.Add(lookahead))
	if err != nil {
		return 0, fmt.Errorf("find due tasks: %w", err)
	}

	byUser := make(map[string][]*taskdomain.Task)
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		for _, userID := range t.Recipients() {
			byUser[userID] = append(byUser[userID], t)
		}
	}
	if len(byUser) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	users, err := d.users.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}

	sent := 0
	for _, user := range users {
		settings, err := d.settings.DigestSettings(ctx, user.ID)
		if err != nil {
			log.Printf("[Digest] Error reading digest settings for user %s: %v", user.ID, err)
			continue
		}
		if !settings.Enabled {
			continue
		}

		local := now
		if d.locations != nil {
			local = now.In(d.locations.Location(ctx, user.ID))
		}
		entries := selectEntries(byUser[user.ID], settings, local)
		if len(entries) == 0 {
			continue
		}
		if err := d.mail.Send(ctx, d.compose(user, entries)); err != nil {
			log.Printf("[Digest] Error sending digest to user %s: %v", user.ID, err)
			continue
		}
		sent++
	}
	log.Printf("[Digest] Sent %d daily digests", sent)
	return sent, nil
}

func selectEntries(tasks []*taskdomain.Task, settings prefdomain.DigestSettings, now time.Time) []digestEntry {
	var entries []digestEntry
	for _, t := range tasks {
		overdue := taskdomain.IsOverdue(t.DueDate, now) && !taskdomain.IsDueToday(t.DueDate, now)
		today := taskdomain.IsDueToday(t.DueDate, now)
		if (overdue && settings.IncludeOverdue) || (today && settings.IncludeDueToday) {
			entries = append(entries, digestEntry{task: t, label: taskdomain.FormatDueDate(t.DueDate, now)})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].task.DueDate.Before(*entries[j].task.DueDate)
	})
	return entries
}

func (d *Digest) compose(user *authdomain.User, entries []digestEntry) mailer.Message {
	var text, body strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nHere is what needs your attention today:\n\n", user.Name)
	body.WriteString("<p>Here is what needs your attention today:</p><ul>")
	for _, e := range entries {
		fmt.Fprintf(&text, "- %s (%s, %s priority)\n", e.task.Title, e.label, e.task.Priority)
		fmt.Fprintf(&body, "<li><b>%s</b> &middot; %s &middot; %s priority</li>",
			html.EscapeString(e.task.Title), html.EscapeString(e.label), e.task.Priority)
	}
	body.WriteString("</ul>")
	if d.appURL != "" {
		fmt.Fprintf(&text, "\nOpen your board: %s\n", d.appURL)
		fmt.Fprintf(&body, `<p><a href="%s">Open your board</a></p>`, html.EscapeString(d.appURL))
	}

	return mailer.Message{
		To:       []string{user.Email},
		Subject:  fmt.Sprintf("Your daily digest: %d task(s) need attention", len(entries)),
		TextBody: text.String(),
		HTMLBody: body.String(),
	}
}
