package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type TimelineQuery struct {
	Query[model.TimelineEntry]
	mission   uint
	eventType string
}

func NewTimelineQuery(db *gorm.DB) *TimelineQuery {
	return &TimelineQuery{
		Query: Query[model.TimelineEntry]{
			db:    db,
			limit: 1000,
			order: "timeline_entries.timestamp, timeline_entries.id",
		},
	}
}

func (q *TimelineQuery) Mission(id uint) *TimelineQuery {
	if q == nil {
		return nil
	}

	q.mission = id
	return q
}

func (q *TimelineQuery) EventType(t string) *TimelineQuery {
	if q == nil {
		return nil
	}

	q.eventType = t
	return q
}

func (q *TimelineQuery) Limit(n int) *TimelineQuery {
	if q == nil {
		return nil
	}

	q.limit = n
	return q
}

func (q *TimelineQuery) where() *gorm.DB {
	tx := q.db

	if q.mission != 0 {
		tx = tx.Where("timeline_entries.mission_id = ?", q.mission)
	}

	if q.eventType != "" {
		tx = tx.Where("timeline_entries.event_type = ?", q.eventType)
	}

	return tx
}

func (q *TimelineQuery) Get() []*model.TimelineEntry {
	return q.get(q.where().Model(&model.TimelineEntry{}))
}

func (q *TimelineQuery) Count() int64 {
	return q.count(q.where().Model(&model.TimelineEntry{}))
}
