package sendnotification

import (
	"fmt"
	"regexp"
	"strings"

	"venture-workers/internal/models"
)

const (
	TypeMatchmakingAssigned = "matchmaking_assigned"
	TypeMatchmakingExpiring = "matchmaking_expiring"
	TypeProfileApproved     = "profile_approved"
	TypeProfileRejected     = "profile_rejected"
)

var templates = map[string]models.NotificationTemplate{
	TypeMatchmakingAssigned: {
		Type:    TypeMatchmakingAssigned,
		Subject: "New startups matched for you",
		Body: "Hi {{name}},\n\n{{startupCount}} startups have been matched to your profile. " +
			"They stay visible in your dashboard until {{expiresAt}}.\n\n{{note}}",
	},
	TypeMatchmakingExpiring: {
		Type:    TypeMatchmakingExpiring,
		Subject: "Your matched startups expire soon",
		Body:    "Hi {{name}},\n\nYour current matches expire on {{expiresAt}}. Review them before they are archived.",
	},
	TypeProfileApproved: {
		Type:    TypeProfileApproved,
		Subject: "Your profile has been approved",
		Body:    "Hi {{name}},\n\nYour profile is approved and now visible on the platform.",
	},
	TypeProfileRejected: {
		Type:    TypeProfileRejected,
		Subject: "Your profile needs changes",
		Body:    "Hi {{name}},\n\nYour profile was not approved.\n\nReason: {{reason}}",
	},
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// render substitutes {{key}} placeholders. Keys without a value are dropped.
func render(text string, vars map[string]interface{}) string {
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
	return strings.TrimSpace(out)
}
