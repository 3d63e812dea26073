package rdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/netguru/dotty-dns/internal/history"
	"github.com/netguru/dotty-dns/internal/model"
)

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func entryToRecord(e *model.HistoryEntry) (*CommandHistoryRecord, error) {
	actions, err := json.Marshal(e.Actions)
	if err != nil {
		return nil, fmt.Errorf("encode actions: %w", err)
	}
	results, err := json.Marshal(e.Results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return &CommandHistoryRecord{
		ID:             e.ID,
		UserID:         e.UserID,
		Domain:         e.Domain,
		Command:        e.Command,
		Interpretation: e.Interpretation,
		Actions:        string(actions),
		Results:        string(results),
		CreatedAt:      e.Timestamp,
	}, nil
}

func recordToEntry(r *CommandHistoryRecord) (*model.HistoryEntry, error) {
	e := &model.HistoryEntry{
		ID:             r.ID,
		UserID:         r.UserID,
		Domain:         r.Domain,
		Command:        r.Command,
		Interpretation: r.Interpretation,
		Timestamp:      r.CreatedAt,
	}
	if r.Actions != "" {
		if err := json.Unmarshal([]byte(r.Actions), &e.Actions); err != nil {
			return nil, fmt.Errorf("decode actions of %s: %w", r.ID, err)
		}
	}
	if r.Results != "" {
		if err := json.Unmarshal([]byte(r.Results), &e.Results); err != nil {
			return nil, fmt.Errorf("decode results of %s: %w", r.ID, err)
		}
	}
	return e, nil
}

func (r *HistoryRepository) Append(ctx context.Context, e *model.HistoryEntry) error {
	if e.ID == "" {
		e.ID = "cmd-" + uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	rec, err := entryToRecord(e)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *HistoryRepository) List(ctx context.Context, userID, domain string, limit int) ([]*model.HistoryEntry, error) {
	var recs []CommandHistoryRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND domain = ?", userID, domain).
		Order("created_at DESC").
		Limit(history.ClampLimit(limit)).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.HistoryEntry, 0, len(recs))
	for i := range recs {
		e, err := recordToEntry(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

var _ history.Store = (*HistoryRepository)(nil)
