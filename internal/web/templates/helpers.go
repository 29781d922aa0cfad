package templates

import (
	"strings"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

func formatDate(t *time.Time) string {
	return util.FormatDate(t)
}

func formatDateTime(t time.Time) string {
	return util.FormatDateTime(t)
}

func formatInt(n int64) string {
	return util.FormatNumber(n)
}

func formatRate(f float64) string {
	return util.FormatPercent(f)
}

func formatUplift(f float64) string {
	return util.FormatSignedPercent(f)
}

func formatConfidence(c float64) string {
	return util.FormatPercent(domain.NormalizeConfidence(c))
}

// dateValue renders a date for an <input type="date">.
func dateValue(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func statusLabel(s domain.TestStatus) string {
	str := string(s)
	if str == "" {
		return ""
	}
	return strings.ToUpper(str[:1]) + str[1:]
}

func statusClass(s domain.TestStatus) string {
	return "badge badge-" + string(s)
}

func upliftClass(color string) string {
	return "uplift-" + color
}

// nextStatuses lists the statuses a test may move to from its current one.
func nextStatuses(from domain.TestStatus) []domain.TestStatus {
	var out []domain.TestStatus
	for _, to := range domain.AllStatuses {
		if domain.CanTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

func statusAction(to domain.TestStatus) string {
	switch to {
	case domain.StatusRunning:
		return "Start"
	case domain.StatusPaused:
		return "Pause"
	case domain.StatusCompleted:
		return "Complete"
	case domain.StatusArchived:
		return "Archive"
	default:
		return statusLabel(to)
	}
}

func variationNames(v *domain.TestVersion) string {
	if v == nil {
		return ""
	}
	names := make([]string, 0, len(v.Variations))
	for _, vr := range v.Variations {
		names = append(names, vr.Name)
	}
	return strings.Join(names, ", ")
}
