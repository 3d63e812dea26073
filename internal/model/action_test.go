package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionOperation(t *testing.T) {
	a := Record{Type: RecordTypeA, Name: "www", Content: "192.0.2.1"}

	op, err := Action{Type: ActionCreate, Record: a}.Operation()
	require.NoError(t, err)
	assert.Equal(t, CreateOperation{Record: a}, op)

	withID := a
	withID.ID = "r1"
	op, err = Action{Type: ActionUpdate, Record: withID}.Operation()
	require.NoError(t, err)
	assert.Equal(t, UpdateOperation{RecordID: "r1", Record: a}, op)

	op, err = Action{Type: ActionDelete, Record: Record{ID: "r1"}}.Operation()
	require.NoError(t, err)
	assert.Equal(t, DeleteOperation{RecordID: "r1"}, op)
	assert.Equal(t, ActionDelete, op.ActionType())
}

func TestActionOperationErrors(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		err    string
	}{
		{"create with id", Action{Type: ActionCreate, Record: Record{ID: "x", Type: RecordTypeA, Name: "a", Content: "b"}}, "must not be set"},
		{"delete without id", Action{Type: ActionDelete, Record: Record{Type: RecordTypeA}}, "record ID required for delete"},
		{"update without id", Action{Type: ActionUpdate, Record: Record{Type: RecordTypeA, Name: "a", Content: "b"}}, "record ID required for update"},
		{"mx without priority", Action{Type: ActionCreate, Record: Record{Type: RecordTypeMX, Name: "a", Content: "mx"}}, "priority is required"},
		{"bad type", Action{Type: ActionCreate, Record: Record{Type: "SPF", Name: "a", Content: "b"}}, "unsupported record type"},
		{"empty content", Action{Type: ActionCreate, Record: Record{Type: RecordTypeTXT, Name: "a"}}, "content is required"},
		{"unknown action", Action{Type: "upsert"}, "unknown action type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.action.Operation()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestRecordNormalize(t *testing.T) {
	mx := Record{Type: RecordTypeMX, Name: "@", Content: "mx.example.net", Priority: Uint16(10), Proxied: Bool(true)}
	got := mx.Normalize("example.com", 3600)
	assert.Equal(t, "example.com", got.Name)
	assert.Equal(t, 3600, got.TTL)
	assert.Equal(t, uint16(10), *got.Priority)
	assert.Nil(t, got.Proxied)
	assert.Equal(t, "@", mx.Name, "normalize must not mutate the receiver")

	cname := Record{Type: RecordTypeCNAME, Name: "www", Content: "example.com", TTL: 60, Priority: Uint16(1)}
	got = cname.Normalize("example.com", 3600)
	assert.Equal(t, 60, got.TTL)
	assert.Nil(t, got.Priority)
	require.NotNil(t, got.Proxied)
	assert.False(t, *got.Proxied)
}
