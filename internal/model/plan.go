package model

import "time"

// ChangePlan is the structured output of the plan generator.
type ChangePlan struct {
	Interpretation      string   `json:"interpretation"`
	Actions             []Action `json:"actions"`
	Warnings            []string `json:"warnings"`
	ConfirmationMessage string   `json:"confirmationMessage"`
}

// ExecutionResult is the outcome of applying one Action.
type ExecutionResult struct {
	Success bool       `json:"success"`
	Action  ActionType `json:"action"`
	Record  Record     `json:"record"`
	Result  *Record    `json:"result,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// CommandResult is returned to the caller of ExecuteCommand.
type CommandResult struct {
	Success             bool              `json:"success"`
	Interpretation      string            `json:"interpretation"`
	Actions             []Action          `json:"actions"`
	Results             []ExecutionResult `json:"results"`
	Warnings            []string          `json:"warnings"`
	ConfirmationMessage string            `json:"confirmationMessage"`
}

// HistoryEntry is the audit record written once per orchestrated command.
type HistoryEntry struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	Domain         string            `json:"domain"`
	Command        string            `json:"command"`
	Interpretation string            `json:"interpretation"`
	Actions        []Action          `json:"actions"`
	Results        []ExecutionResult `json:"results"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}
