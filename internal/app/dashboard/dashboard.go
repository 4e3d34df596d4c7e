/*
Package dashboard assembles the member dashboard: greeting, stat counters,
demo projects, activity, events and favorites, plus the actions its buttons
trigger and the personal data export.
*/
package dashboard

import (
	"encoding/json"
	"fmt"
	"time"

	"freequilt/internal/app/directory"
	"freequilt/internal/app/notify"
)

const (
	// ActiveProjects is the fixed count of projects in progress.
	ActiveProjects = 3

	// StreakDays is the fixed quilting streak.
	StreakDays = 24
)

// Stats are the four animated counters.
type Stats struct {
	PatternsDownloaded int `json:"patternsDownloaded"`
	ActiveProjects     int `json:"activeProjects"`
	Favorites          int `json:"favorites"`
	StreakDays         int `json:"streakDays"`
}

// Summary is everything the dashboard page renders for one member.
type Summary struct {
	WelcomeName string         `json:"welcomeName"`
	UserName    string         `json:"userName"`
	UserLevel   string         `json:"userLevel"`
	Stats       Stats          `json:"stats"`
	Projects    []Project      `json:"projects"`
	Activity    []Activity     `json:"activity"`
	Events      []Event        `json:"events"`
	Favorites   []FavoriteCard `json:"favorites"`
}

// StatsFor computes the counters of user.
func StatsFor(user *directory.User) Stats {
	return Stats{
		PatternsDownloaded: user.Stats.PatternsDownloaded,
		ActiveProjects:     ActiveProjects,
		Favorites:          len(user.Favorites),
		StreakDays:         StreakDays,
	}
}

// Build assembles the dashboard of user.
func Build(user *directory.User) Summary {
	return Summary{
		WelcomeName: user.FirstName,
		UserName:    user.FullName(),
		UserLevel:   FormatSkillLevel(user.SkillLevel),
		Stats:       StatsFor(user),
		Projects:    Projects(),
		Activity:    RecentActivity(),
		Events:      UpcomingEvents(),
		Favorites:   FavoriteCards(),
	}
}

// FormatStatus returns the badge text of a project status.
func FormatStatus(status string) string {
	switch status {
	case StatusInProgress:
		return "In Progress"
	case StatusPlanning:
		return "Planning"
	case StatusCompleted:
		return "Completed"
	}
	return status
}

// FormatDifficulty capitalizes a known difficulty and returns others as is.
func FormatDifficulty(difficulty string) string {
	switch difficulty {
	case "beginner":
		return "Beginner"
	case "intermediate":
		return "Intermediate"
	case "advanced":
		return "Advanced"
	case "expert":
		return "Expert"
	}
	return difficulty
}

// FormatSkillLevel returns the member level line, e.g. "Expert Quilter".
func FormatSkillLevel(level directory.SkillLevel) string {
	if !level.Valid() {
		return "Quilter"
	}
	return FormatDifficulty(string(level)) + " Quilter"
}

// Notice is a notification a dashboard action produces.
type Notice struct {
	Kind    notify.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Fixed dashboard notices.
var (
	NoticeFavoriteRemoved = Notice{Kind: notify.KindInfo, Message: "Removed from favorites"}
	NoticeExported        = Notice{Kind: notify.KindSuccess, Message: "Data exported successfully!"}
	NoticeRefreshed       = Notice{Kind: notify.KindSuccess, Message: "Dashboard refreshed!"}
	NoticeViewAll         = Notice{Kind: notify.KindInfo, Message: "Full view would be implemented here"}
	NoticeAddProject      = Notice{Kind: notify.KindInfo, Message: "Add project feature coming soon!"}
)

// EventAction returns the confirmation for an event button. Unknown actions
// report false.
func EventAction(action, title string) (Notice, bool) {
	switch action {
	case ActionJoin:
		return Notice{Kind: notify.KindSuccess, Message: fmt.Sprintf(`Joined "%s" successfully!`, title)}, true
	case ActionRegister:
		return Notice{Kind: notify.KindSuccess, Message: fmt.Sprintf(`Registered for "%s"!`, title)}, true
	case ActionRemindMe:
		return Notice{Kind: notify.KindSuccess, Message: fmt.Sprintf(`Reminder set for "%s"!`, title)}, true
	}
	return Notice{}, false
}

// Quick action card titles.
const (
	QuickBrowsePatterns = "Browse Patterns"
	QuickWatchTutorials = "Watch Tutorials"
	QuickProgressReport = "Progress Report"
	QuickCommunity      = "Community"
)

// QuickResult is either a navigation target or a notice.
type QuickResult struct {
	Navigate string  `json:"navigate,omitempty"`
	Notice   *Notice `json:"notice,omitempty"`
}

// QuickAction resolves a quick action card. Unknown titles report false.
func QuickAction(action string) (QuickResult, bool) {
	switch action {
	case QuickBrowsePatterns:
		return QuickResult{Navigate: "index.html#patterns"}, true
	case QuickWatchTutorials:
		return QuickResult{Navigate: "index.html#tutorials"}, true
	case QuickProgressReport:
		return QuickResult{Notice: &Notice{Kind: notify.KindInfo, Message: "Progress report feature coming soon!"}}, true
	case QuickCommunity:
		return QuickResult{Notice: &Notice{Kind: notify.KindInfo, Message: "Community features coming soon!"}}, true
	}
	return QuickResult{}, false
}

// Export is the personal data file offered for download.
type Export struct {
	FileName string
	Data     []byte
}

type exportDocument struct {
	User      *directory.User `json:"user"`
	Timestamp time.Time       `json:"timestamp"`
}

// ExportUser renders user as an indented JSON document named
// quilt-patterns-data-<unix ms>.json. Credentials are never included.
func ExportUser(user *directory.User, now time.Time) (Export, error) {
	data, err := json.MarshalIndent(exportDocument{
		User:      user.Public(),
		Timestamp: now.UTC(),
	}, "", "  ")
	if err != nil {
		return Export{}, fmt.Errorf("dashboard: export: %w", err)
	}

	return Export{
		FileName: fmt.Sprintf("quilt-patterns-data-%d.json", now.UnixMilli()),
		Data:     data,
	}, nil
}
