package planner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/netguru/dotty-dns/internal/model"
)

const presetTTL = 3600

// MXHost is one mail exchanger entry of a provider's published MX set.
type MXHost struct {
	Host     string
	Priority uint16
}

// GmailMX is Google's published MX set, in the order it must be created.
var GmailMX = []MXHost{
	{Host: "aspmx.l.google.com", Priority: 1},
	{Host: "alt1.aspmx.l.google.com", Priority: 5},
	{Host: "alt2.aspmx.l.google.com", Priority: 5},
	{Host: "alt3.aspmx.l.google.com", Priority: 10},
	{Host: "alt4.aspmx.l.google.com", Priority: 10},
}

// preset is a common intent answered from a fixed table instead of the model.
type preset struct {
	name    string
	matches func(command string) bool
	build   func(domain string, records []model.Record) *model.ChangePlan
}

var presets = []preset{
	{name: "gmail-mx", matches: isGmailSetup, build: gmailPlan},
}

var (
	gmailProvider = regexp.MustCompile(`\b(gmail|google workspace|g ?suite)\b`)
	setupVerb     = regexp.MustCompile(`\b(set ?up|configure|use|switch|move|enable|point|connect)\b`)
	// Any of these means the command is not a plain setup request and
	// must be planned by the model.
	negatedIntent = regexp.MustCompile(`\b(remove|delete|drop|stop|disable|undo|revert|don'?t|do not|no longer|without|from|away|off|instead)\b`)
)

func isGmailSetup(command string) bool {
	c := strings.ToLower(strings.ReplaceAll(command, "’", "'"))
	return gmailProvider.MatchString(c) && setupVerb.MatchString(c) && !negatedIntent.MatchString(c)
}

func matchPreset(command string) (preset, bool) {
	for _, p := range presets {
		if p.matches(command) {
			return p, true
		}
	}
	return preset{}, false
}

// replaceMXPlan deletes every existing MX record and then creates hosts in order.
func replaceMXPlan(domain string, records []model.Record, hosts []MXHost) []model.Action {
	var actions []model.Action
	for _, r := range records {
		if r.Type != model.RecordTypeMX {
			continue
		}
		existing := r
		existing.Name = model.ResolveName(existing.Name, domain)
		actions = append(actions, model.Action{Type: model.ActionDelete, Record: existing})
	}
	for _, h := range hosts {
		actions = append(actions, model.Action{
			Type: model.ActionCreate,
			Record: model.Record{
				Type:     model.RecordTypeMX,
				Name:     domain,
				Content:  h.Host,
				TTL:      presetTTL,
				Priority: model.Uint16(h.Priority),
			},
		})
	}
	return actions
}

func gmailPlan(domain string, records []model.Record) *model.ChangePlan {
	actions := replaceMXPlan(domain, records, GmailMX)
	removed := len(actions) - len(GmailMX)

	var warnings []string
	if removed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d existing MX record(s) will be removed; mail delivery may pause while DNS propagates.", removed))
	}
	if !hasSPF(records) {
		warnings = append(warnings, "No SPF record found. Consider adding TXT \"v=spf1 include:_spf.google.com ~all\" so Gmail can send as your domain.")
	}

	return &model.ChangePlan{
		Interpretation:      fmt.Sprintf("Set up %s to receive email through Gmail (Google Workspace).", domain),
		Actions:             actions,
		Warnings:            warnings,
		ConfirmationMessage: fmt.Sprintf("This will replace all MX records for %s with Google's %d mail servers.", domain, len(GmailMX)),
	}
}

func hasSPF(records []model.Record) bool {
	for _, r := range records {
		if r.Type == model.RecordTypeTXT && strings.HasPrefix(strings.Trim(r.Content, "\""), "v=spf1") {
			return true
		}
	}
	return false
}
