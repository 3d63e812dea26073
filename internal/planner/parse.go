package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/pkg/errors"
)

type planPayload struct {
	Interpretation      *string          `json:"interpretation"`
	Actions             *[]actionPayload `json:"actions"`
	Warnings            []string         `json:"warnings"`
	ConfirmationMessage string           `json:"confirmationMessage"`
}

type actionPayload struct {
	Type   string         `json:"type"`
	Record *recordPayload `json:"record"`
}

type recordPayload struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      *int   `json:"ttl"`
	Priority *int   `json:"priority"`
	Proxied  *bool  `json:"proxied"`
}

// ExtractJSONObject returns the outermost {...} span of text, which lets the
// model wrap its answer in prose or code fences.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParsePlan validates raw model output against the change plan schema.
// Any mismatch is a ModelOutput error; no partial plan is returned.
func ParsePlan(raw, domain string) (*model.ChangePlan, error) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, errors.ModelOutput("model response contains no JSON object", nil)
	}

	var payload planPayload
	dec := json.NewDecoder(strings.NewReader(obj))
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.ModelOutput("model response is not a valid change plan", err)
	}

	if payload.Interpretation == nil || strings.TrimSpace(*payload.Interpretation) == "" {
		return nil, errors.ModelOutput("change plan is missing an interpretation", nil)
	}
	if payload.Actions == nil {
		return nil, errors.ModelOutput("change plan is missing the actions list", nil)
	}

	actions := make([]model.Action, 0, len(*payload.Actions))
	for i, ap := range *payload.Actions {
		action, err := ap.toAction(domain)
		if err != nil {
			return nil, errors.ModelOutput(fmt.Sprintf("action %d is malformed", i), err)
		}
		actions = append(actions, action)
	}

	warnings := payload.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return &model.ChangePlan{
		Interpretation:      *payload.Interpretation,
		Actions:             actions,
		Warnings:            warnings,
		ConfirmationMessage: payload.ConfirmationMessage,
	}, nil
}

func (ap actionPayload) toAction(domain string) (model.Action, error) {
	actionType := model.ActionType(strings.ToLower(strings.TrimSpace(ap.Type)))
	if !actionType.Valid() {
		return model.Action{}, fmt.Errorf("unknown action type %q", ap.Type)
	}
	if ap.Record == nil {
		return model.Action{}, fmt.Errorf("record is required")
	}

	rp := ap.Record
	recordType := model.RecordType(strings.ToUpper(strings.TrimSpace(rp.Type)))
	if !recordType.Valid() {
		return model.Action{}, fmt.Errorf("unsupported record type %q", rp.Type)
	}

	rec := model.Record{
		ID:      strings.TrimSpace(rp.ID),
		Type:    recordType,
		Name:    model.ResolveName(strings.TrimSpace(rp.Name), domain),
		Content: rp.Content,
	}
	// A delete is addressed by ID alone.
	if actionType != model.ActionDelete {
		if rec.Name == "" {
			return model.Action{}, fmt.Errorf("record name is required")
		}
		if strings.TrimSpace(rec.Content) == "" {
			return model.Action{}, fmt.Errorf("record content is required")
		}
	}

	if rp.TTL != nil {
		if *rp.TTL < 0 {
			return model.Action{}, fmt.Errorf("ttl must not be negative")
		}
		rec.TTL = *rp.TTL
	}
	if rp.Priority != nil {
		if *rp.Priority < 0 || *rp.Priority > math.MaxUint16 {
			return model.Action{}, fmt.Errorf("priority %d out of range", *rp.Priority)
		}
		rec.Priority = model.Uint16(uint16(*rp.Priority))
	}
	if rp.Proxied != nil {
		rec.Proxied = model.Bool(*rp.Proxied)
	}

	return model.Action{Type: actionType, Record: rec}, nil
}
