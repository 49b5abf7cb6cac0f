/**
 * @description
 * Outbound message templates. Rendering substitutes {{name}} placeholders
 * from a data record; placeholders with no matching value are left verbatim
 * so a missing field shows up in the delivered message instead of breaking
 * the send.
 */
package notify

import (
	"fmt"
	"regexp"
	"strings"
)

// Template IDs.
const (
	TemplateSubscriptionExpired = "subscription-expired"
	TemplateSubscriptionWarning = "subscription-warning"
	TemplateAdminWeeklySummary  = "admin-weekly-summary"
)

// Template is a subject/HTML/text triple with named placeholders.
type Template struct {
	Subject string
	HTML    string
	Text    string
}

// Message is a rendered template ready for transport.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

var templates = map[string]Template{
	TemplateSubscriptionExpired: {
		Subject: "Your Flixxit subscription has expired",
		HTML: `<h2>Hi {{username}},</h2>
<p>Your Flixxit premium subscription expired on <strong>{{expirationDate}}</strong>.</p>
<p>You have been moved to the free tier. Resubscribe any time to get premium back.</p>`,
		Text: `Hi {{username}},

Your Flixxit premium subscription expired on {{expirationDate}}.
You have been moved to the free tier. Resubscribe any time to get premium back.`,
	},
	TemplateSubscriptionWarning: {
		Subject: "Your Flixxit subscription expires in {{daysLeft}} days",
		HTML: `<h2>Hi {{username}},</h2>
<p>Your Flixxit premium subscription expires on <strong>{{expirationDate}}</strong>.</p>
<p>Renew before then to keep watching without interruption.</p>`,
		Text: `Hi {{username}},

Your Flixxit premium subscription expires on {{expirationDate}}.
Renew before then to keep watching without interruption.`,
	},
	TemplateAdminWeeklySummary: {
		Subject: "Flixxit weekly subscription summary",
		HTML: `<h2>Weekly subscription summary</h2>
<ul>
<li>Total users: {{totalUsers}}</li>
<li>Premium users: {{premiumUsers}}</li>
<li>Expiring within 7 days: {{expiringSoon}}</li>
<li>Pending cleanup: {{needsCleanup}}</li>
<li>Estimated revenue: {{estimatedRevenue}}</li>
</ul>`,
		Text: `Weekly subscription summary

Total users: {{totalUsers}}
Premium users: {{premiumUsers}}
Expiring within 7 days: {{expiringSoon}}
Pending cleanup: {{needsCleanup}}
Estimated revenue: {{estimatedRevenue}}`,
	},
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

func substitute(s string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := strings.TrimSpace(strings.Trim(match, "{}"))
		if value, ok := data[key]; ok {
			return value
		}
		return match
	})
}

// Render produces a message for the given template and recipient. Unknown
// template IDs are the only error case; rendering itself never fails.
func Render(templateID, to string, data map[string]string) (Message, error) {
	tpl, ok := templates[templateID]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", templateID)
	}
	return Message{
		To:      to,
		Subject: substitute(tpl.Subject, data),
		HTML:    substitute(tpl.HTML, data),
		Text:    substitute(tpl.Text, data),
	}, nil
}
