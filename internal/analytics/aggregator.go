// Package analytics computes aggregate pulse statistics. Every mean is
// gated by the tenant's anonymity threshold, independently at the
// overall and per-week levels, so no reader can narrow a score down to
// a small group.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/models"
)

// ResponseRow is one anonymous response as read for aggregation.
type ResponseRow struct {
	QuestionID  uuid.UUID
	Prompt      string
	Category    string
	Scale       models.Scale
	Score       int
	RespondedAt time.Time
}

// Store is the read-only persistence the aggregator needs.
type Store interface {
	ResponseRows(ctx context.Context, tenantID uuid.UUID, teamID *uuid.UUID, from, to time.Time) ([]ResponseRow, error)
	InviteCount(ctx context.Context, tenantID uuid.UUID, teamID *uuid.UUID, from, to time.Time) (int, error)
}

// WeekBucket is one ISO week of a question's trend. Mean is omitted and
// InsufficientData set when the bucket is below the threshold.
type WeekBucket struct {
	ISOYear          int      `json:"iso_year"`
	ISOWeek          int      `json:"iso_week"`
	Count            int      `json:"count"`
	Mean             *float64 `json:"mean,omitempty"`
	InsufficientData bool     `json:"insufficient_data"`
}

// QuestionStats is the aggregate for one question within the window.
type QuestionStats struct {
	QuestionID       uuid.UUID    `json:"question_id"`
	Prompt           string       `json:"prompt"`
	Category         string       `json:"category"`
	Scale            models.Scale `json:"scale"`
	Count            int          `json:"count"`
	Mean             *float64     `json:"mean,omitempty"`
	InsufficientData bool         `json:"insufficient_data"`
	Weeks            []WeekBucket `json:"weeks"`
}

// Summary is the full aggregation result. ParticipationRate is never
// threshold-gated: it reveals volume, not content.
type Summary struct {
	Questions         []QuestionStats `json:"questions"`
	Invites           int             `json:"invites"`
	Responses         int             `json:"responses"`
	ParticipationRate float64         `json:"participation_rate"`
	Threshold         int             `json:"threshold"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
}

// Service runs aggregation queries.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an analytics service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Summarize groups responses by question within the window and applies
// threshold suppression. A nil teamID means the all-teams rollup; the
// grouping is otherwise identical.
func (s *Service) Summarize(ctx context.Context, tenantID uuid.UUID, teamID *uuid.UUID, from, to time.Time, threshold int) (*Summary, error) {
	rows, err := s.store.ResponseRows(ctx, tenantID, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	invites, err := s.store.InviteCount(ctx, tenantID, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count invites: %w", err)
	}

	summary := &Summary{
		Questions: buildStats(rows, threshold),
		Invites:   invites,
		Responses: len(rows),
		Threshold: threshold,
		From:      from,
		To:        to,
	}
	if invites > 0 {
		summary.ParticipationRate = float64(len(rows)) / float64(invites)
	}
	return summary, nil
}

type weekKey struct {
	year, week int
}

// buildStats is the pure aggregation core, kept database-free so the
// suppression rules are testable in isolation.
func buildStats(rows []ResponseRow, threshold int) []QuestionStats {
	type acc struct {
		stats QuestionStats
		sum   int
		weeks map[weekKey]*struct {
			count int
			sum   int
		}
	}
	byQuestion := make(map[uuid.UUID]*acc)

	for _, row := range rows {
		a, ok := byQuestion[row.QuestionID]
		if !ok {
			a = &acc{
				stats: QuestionStats{
					QuestionID: row.QuestionID,
					Prompt:     row.Prompt,
					Category:   row.Category,
					Scale:      row.Scale,
				},
				weeks: make(map[weekKey]*struct {
					count int
					sum   int
				}),
			}
			byQuestion[row.QuestionID] = a
		}
		a.stats.Count++
		a.sum += row.Score

		year, week := row.RespondedAt.ISOWeek()
		k := weekKey{year, week}
		w, ok := a.weeks[k]
		if !ok {
			w = &struct {
				count int
				sum   int
			}{}
			a.weeks[k] = w
		}
		w.count++
		w.sum += row.Score
	}

	out := make([]QuestionStats, 0, len(byQuestion))
	for _, a := range byQuestion {
		if a.stats.Count >= threshold {
			mean := float64(a.sum) / float64(a.stats.Count)
			a.stats.Mean = &mean
		} else {
			a.stats.InsufficientData = true
		}

		a.stats.Weeks = make([]WeekBucket, 0, len(a.weeks))
		for k, w := range a.weeks {
			bucket := WeekBucket{ISOYear: k.year, ISOWeek: k.week, Count: w.count}
			// per-week gate is independent of the overall one
			if w.count >= threshold {
				mean := float64(w.sum) / float64(w.count)
				bucket.Mean = &mean
			} else {
				bucket.InsufficientData = true
			}
			a.stats.Weeks = append(a.stats.Weeks, bucket)
		}
		sort.Slice(a.stats.Weeks, func(i, j int) bool {
			wi, wj := a.stats.Weeks[i], a.stats.Weeks[j]
			if wi.ISOYear != wj.ISOYear {
				return wi.ISOYear < wj.ISOYear
			}
			return wi.ISOWeek < wj.ISOWeek
		})

		out = append(out, a.stats)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Prompt != out[j].Prompt {
			return out[i].Prompt < out[j].Prompt
		}
		return out[i].QuestionID.String() < out[j].QuestionID.String()
	})
	return out
}
