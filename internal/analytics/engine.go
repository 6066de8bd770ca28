package analytics

import (
	"context"
	"time"
)

// Engine builds the four productivity reports from a Source. It holds no
// per-request state: every call loads a fresh snapshot, folds it into
// accumulators and assembles a fully computed, JSON-serializable report.
type Engine struct {
	src Source
	loc *time.Location
}

// NewEngine wraps a source. Hour and day bucketing happens in loc; nil
// means UTC.
func NewEngine(src Source, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{src: src, loc: loc}
}

func (e *Engine) load(ctx context.Context, w Window, f Filters) (*aggregate, *Snapshot, error) {
	snap, err := LoadSnapshot(ctx, e.src, w, f)
	if err != nil {
		return nil, nil, err
	}
	return buildAggregate(snap, w, e.loc), snap, nil
}

// Summary is the per-day and per-project overview for the window.
func (e *Engine) Summary(ctx context.Context, w Window, f Filters) (*SummaryReport, error) {
	agg, snap, err := e.load(ctx, w, f)
	if err != nil {
		return nil, err
	}
	return buildSummary(agg, snap, w), nil
}

// Projects is one row per project active in the window.
func (e *Engine) Projects(ctx context.Context, w Window, f Filters, key SortKey) (*ProjectReport, error) {
	agg, snap, err := e.load(ctx, w, f)
	if err != nil {
		return nil, err
	}
	return buildProjects(agg, snap, w, key), nil
}

// ProjectDetail drills into a single project's per-user breakdown.
func (e *Engine) ProjectDetail(ctx context.Context, w Window, projectID int64) (*ProjectDetail, error) {
	agg, snap, err := e.load(ctx, w, Filters{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	return buildProjectDetail(agg, snap, w, projectID)
}

// Users is one row per user active in the window, including each user's
// work pattern.
func (e *Engine) Users(ctx context.Context, w Window, f Filters, key SortKey) (*UserReport, error) {
	agg, snap, err := e.load(ctx, w, f)
	if err != nil {
		return nil, err
	}
	return buildUsers(agg, snap, w, key), nil
}

// UserDetail drills into a single user's per-project breakdown.
func (e *Engine) UserDetail(ctx context.Context, w Window, userID int64) (*UserDetail, error) {
	agg, snap, err := e.load(ctx, w, Filters{UserID: &userID})
	if err != nil {
		return nil, err
	}
	return buildUserDetail(agg, snap, w, userID)
}

// Patterns is the team-wide hourly and daily work-pattern view.
func (e *Engine) Patterns(ctx context.Context, w Window, f Filters) (*PatternReport, error) {
	agg, snap, err := e.load(ctx, w, f)
	if err != nil {
		return nil, err
	}
	return buildPattern(agg, snap, w), nil
}
