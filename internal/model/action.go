package model

import "fmt"

// ActionType is the kind of change an Action applies.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	return t == ActionCreate || t == ActionUpdate || t == ActionDelete
}

// Action is one step of a ChangePlan as emitted by the plan generator.
type Action struct {
	Type   ActionType `json:"type"`
	Record Record     `json:"record"`
}

// Operation is a validated Action. Exactly one of the concrete operation types
// below is produced for each action type, carrying only the fields that type needs.
type Operation interface {
	ActionType() ActionType
}

// CreateOperation adds a record that does not exist yet.
type CreateOperation struct {
	Record Record
}

// UpdateOperation replaces the fields of an existing record in place.
type UpdateOperation struct {
	RecordID string
	Record   Record
}

// DeleteOperation removes an existing record.
type DeleteOperation struct {
	RecordID string
}

func (CreateOperation) ActionType() ActionType { return ActionCreate }
func (UpdateOperation) ActionType() ActionType { return ActionUpdate }
func (DeleteOperation) ActionType() ActionType { return ActionDelete }

// Operation validates the action against its type's record contract and returns
// the matching typed operation.
func (a Action) Operation() (Operation, error) {
	switch a.Type {
	case ActionCreate:
		if a.Record.ID != "" {
			return nil, fmt.Errorf("record ID %q must not be set for create action", a.Record.ID)
		}
		if err := a.Record.validateContent(); err != nil {
			return nil, err
		}
		return CreateOperation{Record: a.Record}, nil
	case ActionUpdate:
		if a.Record.ID == "" {
			return nil, fmt.Errorf("record ID required for update action")
		}
		if err := a.Record.validateContent(); err != nil {
			return nil, err
		}
		rec := a.Record
		rec.ID = ""
		return UpdateOperation{RecordID: a.Record.ID, Record: rec}, nil
	case ActionDelete:
		if a.Record.ID == "" {
			return nil, fmt.Errorf("record ID required for delete action")
		}
		return DeleteOperation{RecordID: a.Record.ID}, nil
	default:
		return nil, fmt.Errorf("unknown action type: %q", a.Type)
	}
}
