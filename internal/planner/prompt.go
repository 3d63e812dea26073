package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/netguru/dotty-dns/internal/model"
)

var promptTemplate = template.Must(template.New("dotty").Parse(`
You are Dotty, an AI DNS assistant. Convert the following natural language command into DNS record operations.

User Command: {{ printf "%q" .Command }}
Domain: {{ printf "%q" .Domain }}
Current DNS Records: {{ .Records }}

IMPORTANT RULES:
1. To modify MX records, you must DELETE every existing MX record first, then CREATE the new ones.
2. Never use "update" for MX records. Always use "delete" then "create".
3. Include the record "id" from the current records when deleting or updating.
4. For creating records, do NOT include an "id" field.
5. Use the literal domain {{ printf "%q" .Domain }} or "@" as the name of root records.
6. MX records must include an integer "priority". Only A, AAAA and CNAME records may set "proxied".

Return ONLY a JSON object with this structure:
{
  "interpretation": "What you understood from the command",
  "actions": [
    {
      "type": "create|update|delete",
      "record": {
        "id": "record id, only for delete or update",
        "type": "A|AAAA|CNAME|MX|TXT|NS|SOA|PTR",
        "name": "subdomain, @ for root, or the full domain",
        "content": "value",
        "ttl": 3600,
        "priority": 10,
        "proxied": false
      }
    }
  ],
  "warnings": ["any warnings or suggestions"],
  "confirmationMessage": "Message to show the user before applying changes"
}

Common commands to understand:
- "Set up email for Gmail/Outlook": delete existing MX records, then create the new MX records
- "Point to Vercel/Netlify": create A/CNAME records
- "Add subdomain for blog": create a CNAME record
- "Enable email authentication": create SPF, DKIM and DMARC TXT records
- "Set up load balancing": multiple A records
- "Redirect www to root": CNAME record

For Gmail setup, use exactly these MX records in this order:
{{- range .GmailMX }}
- {{ .Host }} (priority: {{ .Priority }})
{{- end }}
`))

type promptData struct {
	Command string
	Domain  string
	Records string
	GmailMX []MXHost
}

// BuildPrompt renders the instruction template for a command.
func BuildPrompt(command, domain string, records []model.Record) (string, error) {
	if records == nil {
		records = []model.Record{}
	}
	serialized, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize records: %w", err)
	}

	var sb strings.Builder
	err = promptTemplate.Execute(&sb, promptData{
		Command: command,
		Domain:  domain,
		Records: string(serialized),
		GmailMX: GmailMX,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
