package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/occurrence"
)

// Summary renders the daily overview message.
func Summary(groups occurrence.Groups, badge int, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("☀️ Daily overview\n")
	sb.WriteString(fmt.Sprintf("🗓 %s\n", now.Format("2006-01-02 (Mon)")))

	if len(groups.Overdue) > 0 {
		sb.WriteString("\n⚠️ Overdue\n")
		for _, occ := range groups.Overdue {
			sb.WriteString(fmt.Sprintf("• %s (%s)\n", occ.Title, occ.DisplayDate.Format("01/02")))
		}
	}

	sb.WriteString("\n📋 Today\n")
	if len(groups.Today) == 0 {
		sb.WriteString("• nothing scheduled\n")
	} else {
		for _, occ := range groups.Today {
			sb.WriteString("• " + summaryLine(occ) + "\n")
		}
	}

	if len(groups.Tomorrow) > 0 {
		sb.WriteString("\n🌤 Tomorrow\n")
		for _, occ := range groups.Tomorrow {
			sb.WriteString(fmt.Sprintf("• %s %s\n", occ.DisplayDate.Format("15:04"), occ.Title))
		}
	}

	if badge > 0 {
		sb.WriteString(fmt.Sprintf("\n🔔 %d pending reminder(s)", badge))
	}

	return strings.TrimSpace(sb.String())
}

func summaryLine(occ models.Occurrence) string {
	line := fmt.Sprintf("%s %s", occ.DisplayDate.Format("15:04"), occ.Title)
	switch {
	case occ.IsCompleted:
		line = "✅ " + line
	case occ.TimePassed:
		line += " (time passed)"
	}
	return line
}
