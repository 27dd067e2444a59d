package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/occurrence"
	"github.com/hray3182/plannerd/internal/repository"
)

const helpText = `Commands:
/add <title> - add a one-time item
/remind <YYYY-MM-DD HH:MM> <title> - add a reminder
/repeat <rule> <YYYY-MM-DD HH:MM> <title> - add a recurring reminder
  rule: daily, weekly, monthly, yearly, or weekdays like mon,wed/2
/list - grouped view (overdue, today, tomorrow, upcoming)
/today - today's occurrences only
/done <id> [YYYY-MM-DD] - complete an item or one occurrence
/undo <id> [YYYY-MM-DD] - undo a completion
/skip <id> [YYYY-MM-DD] - skip one occurrence of a recurring item
/delete <id> - delete an item and all its notifications
/badge - current pending count`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText)
	case "add":
		b.handleAdd(ctx, msg)
	case "remind":
		b.handleRemind(ctx, msg)
	case "repeat":
		b.handleRepeat(ctx, msg)
	case "list":
		b.handleList(ctx, msg)
	case "today":
		b.handleToday(ctx, msg)
	case "done":
		b.handleDone(ctx, msg)
	case "undo":
		b.handleUndo(ctx, msg)
	case "skip":
		b.handleSkip(ctx, msg)
	case "delete":
		b.handleDelete(ctx, msg)
	case "badge":
		b.handleBadge(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help")
	}
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		b.reply(msg.Chat.ID, "Usage: /add <title>")
		return
	}

	item := &models.Item{Title: title}
	if err := b.store.Add(ctx, item); err != nil {
		b.log.Warnw("add failed", "error", err)
		b.reply(msg.Chat.ID, "Failed to add item, please try again")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Added %s (%s)", item.Title, shortID(item.ID)))
}

func (b *Bot) handleRemind(ctx context.Context, msg *tgbotapi.Message) {
	at, title, err := parseWhenAndTitle(msg.CommandArguments(), b.clock.Location())
	if err != nil {
		b.reply(msg.Chat.ID, "Usage: /remind <YYYY-MM-DD HH:MM> <title>")
		return
	}

	item := &models.Item{Title: title, RemindAt: &at}
	if err := b.store.Add(ctx, item); err != nil {
		b.log.Warnw("remind failed", "error", err)
		b.reply(msg.Chat.ID, "Failed to add reminder, please try again")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("⏰ Reminder set for %s (%s)",
		at.Format("2006-01-02 15:04"), shortID(item.ID)))
}

func (b *Bot) handleRepeat(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 4 {
		b.reply(msg.Chat.ID, "Usage: /repeat <rule> <YYYY-MM-DD HH:MM> <title>")
		return
	}

	repeat, custom, err := parseRepeatRule(args[0])
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}

	at, title, err := parseWhenAndTitle(strings.Join(args[1:], " "), b.clock.Location())
	if err != nil {
		b.reply(msg.Chat.ID, "Usage: /repeat <rule> <YYYY-MM-DD HH:MM> <title>")
		return
	}

	item := &models.Item{Title: title, RemindAt: &at, Repeat: repeat, Custom: custom}
	if err := b.store.Add(ctx, item); err != nil {
		b.log.Warnw("repeat failed", "error", err)
		b.reply(msg.Chat.ID, "Failed to add recurring reminder, please try again")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("🔄 Recurring reminder set from %s (%s)",
		at.Format("2006-01-02 15:04"), shortID(item.ID)))
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) {
	groups, err := b.store.DisplayOccurrences(ctx)
	if err != nil {
		b.log.Warnw("list failed", "error", err)
		b.reply(msg.Chat.ID, "Failed to load items, please try again")
		return
	}
	b.reply(msg.Chat.ID, renderGroups(groups))
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) {
	groups, err := b.store.DisplayOccurrences(ctx)
	if err != nil {
		b.log.Warnw("today failed", "error", err)
		b.reply(msg.Chat.ID, "Failed to load items, please try again")
		return
	}
	b.reply(msg.Chat.ID, renderToday(groups.Today))
}

func renderGroups(groups occurrence.Groups) string {
	var sb strings.Builder
	writeGroup(&sb, "⚠️ Overdue", groups.Overdue, "01/02 15:04")
	writeGroup(&sb, "📋 Today", groups.Today, "15:04")
	writeGroup(&sb, "🌤 Tomorrow", groups.Tomorrow, "15:04")
	writeGroup(&sb, "📅 Upcoming", groups.Upcoming, "01/02 15:04")

	out := strings.TrimSpace(sb.String())
	if out == "" {
		out = "Nothing scheduled 🎉"
	}
	return out
}

func renderToday(occs []models.Occurrence) string {
	var sb strings.Builder
	writeGroup(&sb, "📋 Today", occs, "15:04")

	out := strings.TrimSpace(sb.String())
	if out == "" {
		out = "Nothing due today 🎉"
	}
	return out
}

func writeGroup(sb *strings.Builder, header string, occs []models.Occurrence, layout string) {
	if len(occs) == 0 {
		return
	}
	sb.WriteString(header + "\n")
	for _, occ := range occs {
		mark := "⬜"
		if occ.IsCompleted {
			mark = "✅"
		}
		line := fmt.Sprintf("%s %s %s (%s)", mark, occ.DisplayDate.Format(layout), occ.Title, shortID(occ.ItemID))
		if occ.TimePassed && !occ.IsCompleted {
			line += " ⚠️"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) {
	id, date, err := b.resolveTarget(ctx, msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}
	if err := b.store.Complete(ctx, id, date); err != nil {
		b.replyMutationError(msg.Chat.ID, "complete", err)
		return
	}
	b.reply(msg.Chat.ID, "✅ Done")
}

func (b *Bot) handleUndo(ctx context.Context, msg *tgbotapi.Message) {
	id, date, err := b.resolveTarget(ctx, msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}
	if err := b.store.Undo(ctx, id, date); err != nil {
		b.replyMutationError(msg.Chat.ID, "undo", err)
		return
	}
	b.reply(msg.Chat.ID, "↩️ Undone")
}

func (b *Bot) handleSkip(ctx context.Context, msg *tgbotapi.Message) {
	id, date, err := b.resolveTarget(ctx, msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}
	when := b.clock.Now()
	if date != nil {
		when = *date
	}
	if err := b.store.Skip(ctx, id, when); err != nil {
		b.replyMutationError(msg.Chat.ID, "skip", err)
		return
	}
	b.reply(msg.Chat.ID, "⏭ Skipped")
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	id, _, err := b.resolveTarget(ctx, msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}
	if err := b.store.Delete(ctx, id); err != nil {
		b.replyMutationError(msg.Chat.ID, "delete", err)
		return
	}
	b.reply(msg.Chat.ID, "🗑 Deleted")
}

func (b *Bot) handleBadge(ctx context.Context, msg *tgbotapi.Message) {
	badge, err := b.store.BadgeCount(ctx)
	if err != nil {
		b.log.Warnw("badge failed", "error", err)
		b.reply(msg.Chat.ID, "Failed to compute badge, please try again")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("🔔 %d pending reminder(s)", badge))
}

func (b *Bot) replyMutationError(chatID int64, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		b.reply(chatID, "Item not found")
		return
	}
	b.log.Warnw(op+" failed", "error", err)
	b.reply(chatID, "Failed to "+op+", please try again")
}

// resolveTarget parses "<id-prefix> [YYYY-MM-DD]" and expands the prefix to a
// full item id by scanning the active list.
func (b *Bot) resolveTarget(ctx context.Context, raw string) (string, *time.Time, error) {
	args := strings.Fields(raw)
	if len(args) == 0 {
		return "", nil, fmt.Errorf("Usage: <id> [YYYY-MM-DD]")
	}

	var date *time.Time
	if len(args) > 1 {
		d, err := time.ParseInLocation(models.DateKeyLayout, args[1], b.clock.Location())
		if err != nil {
			return "", nil, fmt.Errorf("Invalid date %q, expected YYYY-MM-DD", args[1])
		}
		date = &d
	}

	items, err := b.store.ListActive(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("Failed to load items, please try again")
	}

	prefix := strings.ToLower(args[0])
	var match string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item.ID), prefix) {
			if match != "" {
				return "", nil, fmt.Errorf("Id %q is ambiguous, use more characters", args[0])
			}
			match = item.ID
		}
	}
	if match == "" {
		return "", nil, fmt.Errorf("No item matches %q", args[0])
	}

	// Recurring mutations default to today's occurrence.
	if date == nil {
		now := b.clock.Now()
		date = &now
	}
	return match, date, nil
}

// parseWhenAndTitle splits "YYYY-MM-DD HH:MM rest of title".
func parseWhenAndTitle(raw string, loc *time.Location) (time.Time, string, error) {
	args := strings.Fields(strings.TrimSpace(raw))
	if len(args) < 3 {
		return time.Time{}, "", fmt.Errorf("expected <YYYY-MM-DD HH:MM> <title>")
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", args[0]+" "+args[1], loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid time: %w", err)
	}
	return at, strings.Join(args[2:], " "), nil
}

var weekdayAliases = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseRepeatRule accepts the named cadences or a custom weekday list like
// "mon,wed" with an optional "/N" interval suffix ("mon,wed/2").
func parseRepeatRule(raw string) (models.Repeat, *models.CustomConfig, error) {
	switch strings.ToLower(raw) {
	case "daily":
		return models.RepeatDaily, nil, nil
	case "weekly":
		return models.RepeatWeekly, nil, nil
	case "monthly":
		return models.RepeatMonthly, nil, nil
	case "yearly":
		return models.RepeatYearly, nil, nil
	}

	spec := strings.ToLower(raw)
	interval := 1
	if idx := strings.Index(spec, "/"); idx >= 0 {
		n, err := strconv.Atoi(spec[idx+1:])
		if err != nil || n < 1 {
			return models.RepeatNone, nil, fmt.Errorf("Invalid interval in %q", raw)
		}
		interval = n
		spec = spec[:idx]
	}

	var days []int
	for _, name := range strings.Split(spec, ",") {
		d, ok := weekdayAliases[strings.TrimSpace(name)]
		if !ok {
			return models.RepeatNone, nil, fmt.Errorf("Unknown repeat rule %q", raw)
		}
		days = append(days, d)
	}
	return models.RepeatCustom, &models.CustomConfig{Days: days, IntervalWeeks: interval}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
