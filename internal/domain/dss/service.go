package dss

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/dss/internal/domain/metric"
	"github.com/healthtrack/dss/internal/domain/symptom"
)

// TxRunner runs fn atomically. Production wiring delegates to
// db.WithTx; tests pass fn straight through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Passthrough executes fn without a transaction.
func Passthrough(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type Service struct {
	catalog     *Catalog
	symptoms    symptom.Repository
	metrics     metric.Repository
	insights    InsightRepository
	predictions PredictionRepository
	inTx        TxRunner
	windowDays  int
	now         func() time.Time
}

func NewService(
	catalog *Catalog,
	symptoms symptom.Repository,
	metrics metric.Repository,
	insights InsightRepository,
	predictions PredictionRepository,
	inTx TxRunner,
	windowDays int,
) *Service {
	if inTx == nil {
		inTx = Passthrough
	}
	return &Service{
		catalog:     catalog,
		symptoms:    symptoms,
		metrics:     metrics,
		insights:    insights,
		predictions: predictions,
		inTx:        inTx,
		windowDays:  windowDays,
		now:         time.Now,
	}
}

// AnalyzeSymptoms runs the full analysis pipeline over the user's active
// symptoms and persists any generated insights. With no active symptoms
// the response is empty but structurally complete.
func (s *Service) AnalyzeSymptoms(ctx context.Context, userID string) (*AnalysisResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	records, err := s.symptoms.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active symptoms: %w", err)
	}

	now := s.now()
	normalized := Normalize(records, s.catalog, now)
	matches := Match(normalized, s.catalog.Diseases())
	urgency := ScoreUrgency(matches, normalized)

	insights := GenerateInsights(matches, urgency, nil, now)
	if len(insights) > 0 {
		err = s.inTx(ctx, func(ctx context.Context) error {
			for _, ins := range insights {
				ins.UserID = userID
				if err := s.insights.Create(ctx, ins); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("save insights: %w", err)
		}
	}

	return &AnalysisResponse{
		PossibleDiseases: matches,
		UrgencyScore:     urgency.Score,
		UrgencyLevel:     urgency.Level,
		Recommendations:  urgency.Recommendations,
		CriticalSymptoms: urgency.CriticalSymptoms,
	}, nil
}

// PredictRisks runs every risk model over the user's metric history,
// persists the predictions plus any insights they warrant, and returns
// the predictions.
func (s *Service) PredictRisks(ctx context.Context, userID string) ([]*Prediction, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	now := s.now()
	history, err := s.metrics.HistorySince(ctx, userID, now.AddDate(0, 0, -s.windowDays))
	if err != nil {
		return nil, fmt.Errorf("load metric history: %w", err)
	}

	preds, err := PredictRisks(history, s.windowDays, now)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return []*Prediction{}, nil
	}

	insights := GenerateInsights(nil, UrgencyResult{}, preds, now)
	err = s.inTx(ctx, func(ctx context.Context) error {
		for _, p := range preds {
			p.UserID = userID
			if err := s.predictions.Create(ctx, p); err != nil {
				return err
			}
		}
		for _, ins := range insights {
			ins.UserID = userID
			if err := s.insights.Create(ctx, ins); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save predictions: %w", err)
	}
	return preds, nil
}

func (s *Service) ListInsights(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Insight, int, error) {
	return s.insights.List(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadInsightCount(ctx context.Context, userID string) (int, error) {
	return s.insights.UnreadCount(ctx, userID)
}

func (s *Service) MarkInsightRead(ctx context.Context, userID string, id uuid.UUID) (*Insight, error) {
	return s.insights.MarkRead(ctx, userID, id)
}

func (s *Service) DeleteInsight(ctx context.Context, userID string, id uuid.UUID) error {
	return s.insights.Delete(ctx, userID, id)
}

func (s *Service) ListPredictions(ctx context.Context, userID string, predType PredictionType, validOnly bool, limit, offset int) ([]*Prediction, int, error) {
	if predType != "" && !predType.Valid() {
		return nil, 0, fmt.Errorf("invalid prediction type: %s", predType)
	}
	return s.predictions.List(ctx, userID, predType, validOnly, limit, offset)
}

func (s *Service) DeletePrediction(ctx context.Context, userID string, id uuid.UUID) error {
	return s.predictions.Delete(ctx, userID, id)
}
