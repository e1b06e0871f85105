package dss

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/healthtrack/dss/internal/domain/metric"
	"github.com/healthtrack/dss/internal/domain/symptom"
)

// ── Mock Repositories ──

type mockSymptomRepo struct {
	active map[string][]*symptom.Symptom
}

func (m *mockSymptomRepo) ListActive(_ context.Context, userID string) ([]*symptom.Symptom, error) {
	return m.active[userID], nil
}

type mockMetricRepo struct {
	history map[string][]*metric.HealthMetric
}

func (m *mockMetricRepo) HistorySince(_ context.Context, userID string, since time.Time) ([]*metric.HealthMetric, error) {
	var out []*metric.HealthMetric
	for _, h := range m.history[userID] {
		if !h.MeasuredAt.Before(since) {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockInsightRepo struct {
	data map[uuid.UUID]*Insight
}

func (m *mockInsightRepo) Create(_ context.Context, ins *Insight) error {
	ins.ID = uuid.New()
	cp := *ins
	m.data[ins.ID] = &cp
	return nil
}
func (m *mockInsightRepo) GetByID(_ context.Context, userID string, id uuid.UUID) (*Insight, error) {
	if ins, ok := m.data[id]; ok && ins.UserID == userID {
		return ins, nil
	}
	return nil, pgx.ErrNoRows
}
func (m *mockInsightRepo) List(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Insight, int, error) {
	var out []*Insight
	for _, ins := range m.data {
		if ins.UserID != userID {
			continue
		}
		if unreadOnly && ins.Read {
			continue
		}
		out = append(out, ins)
	}
	return out, len(out), nil
}
func (m *mockInsightRepo) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, ins := range m.data {
		if ins.UserID == userID && !ins.Read {
			count++
		}
	}
	return count, nil
}
func (m *mockInsightRepo) MarkRead(_ context.Context, userID string, id uuid.UUID) (*Insight, error) {
	if ins, ok := m.data[id]; ok && ins.UserID == userID {
		ins.Read = true
		return ins, nil
	}
	return nil, pgx.ErrNoRows
}
func (m *mockInsightRepo) Delete(_ context.Context, userID string, id uuid.UUID) error {
	if ins, ok := m.data[id]; ok && ins.UserID == userID {
		delete(m.data, id)
		return nil
	}
	return pgx.ErrNoRows
}

type mockPredictionRepo struct {
	data map[uuid.UUID]*Prediction
}

func (m *mockPredictionRepo) Create(_ context.Context, p *Prediction) error {
	p.ID = uuid.New()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}
func (m *mockPredictionRepo) List(_ context.Context, userID string, predType PredictionType, validOnly bool, limit, offset int) ([]*Prediction, int, error) {
	var out []*Prediction
	for _, p := range m.data {
		if p.UserID != userID {
			continue
		}
		if predType != "" && p.Type != predType {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}
func (m *mockPredictionRepo) Delete(_ context.Context, userID string, id uuid.UUID) error {
	if p, ok := m.data[id]; ok && p.UserID == userID {
		delete(m.data, id)
		return nil
	}
	return pgx.ErrNoRows
}

type testEnv struct {
	svc         *Service
	symptoms    *mockSymptomRepo
	metrics     *mockMetricRepo
	insights    *mockInsightRepo
	predictions *mockPredictionRepo
}

var serviceNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := NewCatalog([]DiseaseDefinition{
		{
			DiseaseID: "d001",
			Name:      "Influenza",
			SymptomWeights: map[string]float64{
				"fever": 0.6,
				"cough": 0.4,
			},
			CriticalSymptoms:  []string{"fever"},
			MinMatchThreshold: 0.3,
			Recommendations:   []string{"Rest and stay hydrated"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := &testEnv{
		symptoms:    &mockSymptomRepo{active: map[string][]*symptom.Symptom{}},
		metrics:     &mockMetricRepo{history: map[string][]*metric.HealthMetric{}},
		insights:    &mockInsightRepo{data: map[uuid.UUID]*Insight{}},
		predictions: &mockPredictionRepo{data: map[uuid.UUID]*Prediction{}},
	}
	env.svc = NewService(cat, env.symptoms, env.metrics, env.insights, env.predictions, Passthrough, 180)
	env.svc.now = func() time.Time { return serviceNow }
	return env
}

func TestService_AnalyzeSymptoms(t *testing.T) {
	env := newTestEnv(t)
	env.symptoms.active["u1"] = []*symptom.Symptom{
		{ID: uuid.New(), UserID: "u1", CanonicalName: "fever",
			Severity: symptom.SeveritySevere, StartDate: serviceNow.AddDate(0, 0, -10)},
	}
	resp, err := env.svc.AnalyzeSymptoms(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.PossibleDiseases) != 1 || resp.PossibleDiseases[0].Name != "Influenza" {
		t.Fatalf("expected Influenza match, got %+v", resp.PossibleDiseases)
	}
	if resp.UrgencyScore != 71 {
		t.Errorf("expected urgency 71, got %d", resp.UrgencyScore)
	}
	if resp.UrgencyLevel != UrgencyHigh {
		t.Errorf("expected level HIGH, got %s", resp.UrgencyLevel)
	}
	// urgency >= 70 generates a persisted insight owned by the user
	count, _ := env.insights.UnreadCount(context.Background(), "u1")
	if count != 1 {
		t.Errorf("expected 1 persisted insight, got %d", count)
	}
}

func TestService_AnalyzeSymptoms_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	env.symptoms.active["u1"] = []*symptom.Symptom{
		{ID: uuid.New(), UserID: "u1", CanonicalName: "fever",
			Severity: symptom.SeverityMild, StartDate: serviceNow.AddDate(0, 0, -1)},
	}
	first, err := env.svc.AnalyzeSymptoms(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := env.svc.AnalyzeSymptoms(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.UrgencyScore != second.UrgencyScore || len(first.PossibleDiseases) != len(second.PossibleDiseases) {
		t.Error("repeated analysis over unchanged symptoms should give the same result")
	}
}

func TestService_AnalyzeSymptoms_EmptyInput(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.svc.AnalyzeSymptoms(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.PossibleDiseases) != 0 {
		t.Errorf("expected no diseases, got %d", len(resp.PossibleDiseases))
	}
	if resp.PossibleDiseases == nil {
		t.Error("possible_diseases must be an empty slice, not nil")
	}
	if resp.UrgencyScore != 0 {
		t.Errorf("expected urgency 0, got %d", resp.UrgencyScore)
	}
	count, _ := env.insights.UnreadCount(context.Background(), "u1")
	if count != 0 {
		t.Errorf("expected no insights, got %d", count)
	}
}

func TestService_AnalyzeSymptoms_MissingUser(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.AnalyzeSymptoms(context.Background(), ""); err == nil {
		t.Error("expected error for missing user id")
	}
}

func TestService_PredictRisks(t *testing.T) {
	env := newTestEnv(t)
	sys := func(v float64) *float64 { return &v }
	env.metrics.history["u1"] = []*metric.HealthMetric{
		{ID: uuid.New(), UserID: "u1", MetricType: metric.TypeBloodPressure,
			Systolic: sys(145), Diastolic: sys(95), MeasuredAt: serviceNow.AddDate(0, 0, -30)},
		{ID: uuid.New(), UserID: "u1", MetricType: metric.TypeBloodPressure,
			Systolic: sys(145), Diastolic: sys(95), MeasuredAt: serviceNow.AddDate(0, 0, -20)},
		{ID: uuid.New(), UserID: "u1", MetricType: metric.TypeBloodPressure,
			Systolic: sys(145), Diastolic: sys(95), MeasuredAt: serviceNow.AddDate(0, 0, -10)},
	}
	preds, err := env.svc.PredictRisks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// constant 145 systolic: hypertension HIGH plus the cardiovascular composite
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	for _, p := range preds {
		if p.UserID != "u1" {
			t.Errorf("prediction not stamped with owner, got %q", p.UserID)
		}
		if p.ID == uuid.Nil {
			t.Error("prediction not persisted")
		}
	}
	stored, total, _ := env.predictions.List(context.Background(), "u1", "", false, 20, 0)
	if total != 2 || len(stored) != 2 {
		t.Errorf("expected 2 stored predictions, got %d", total)
	}
	// hypertension HIGH risk generates an insight
	count, _ := env.insights.UnreadCount(context.Background(), "u1")
	if count == 0 {
		t.Error("expected at least one risk insight")
	}
}

func TestService_PredictRisks_TooFewReadings(t *testing.T) {
	env := newTestEnv(t)
	sys := func(v float64) *float64 { return &v }
	env.metrics.history["u1"] = []*metric.HealthMetric{
		{ID: uuid.New(), UserID: "u1", MetricType: metric.TypeBloodPressure,
			Systolic: sys(150), Diastolic: sys(95), MeasuredAt: serviceNow.AddDate(0, 0, -10)},
		{ID: uuid.New(), UserID: "u1", MetricType: metric.TypeBloodPressure,
			Systolic: sys(150), Diastolic: sys(95), MeasuredAt: serviceNow.AddDate(0, 0, -5)},
	}
	preds, err := env.svc.PredictRisks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("two readings should be skipped silently, got error: %v", err)
	}
	if len(preds) != 0 {
		t.Errorf("expected no predictions, got %d", len(preds))
	}
}

func TestService_MarkInsightRead_OtherUser(t *testing.T) {
	env := newTestEnv(t)
	ins := &Insight{UserID: "u1", Message: "m", Severity: InsightLow, Category: CategorySymptomAnalysis}
	env.insights.Create(context.Background(), ins)
	if _, err := env.svc.MarkInsightRead(context.Background(), "u2", ins.ID); err == nil {
		t.Error("expected not-found acting on another user's insight")
	}
	got, err := env.svc.MarkInsightRead(context.Background(), "u1", ins.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Read {
		t.Error("expected insight marked read")
	}
}

func TestService_DeleteInsight_OtherUser(t *testing.T) {
	env := newTestEnv(t)
	ins := &Insight{UserID: "u1", Message: "m", Severity: InsightLow, Category: CategorySymptomAnalysis}
	env.insights.Create(context.Background(), ins)
	if err := env.svc.DeleteInsight(context.Background(), "u2", ins.ID); err == nil {
		t.Error("expected not-found acting on another user's insight")
	}
	if err := env.svc.DeleteInsight(context.Background(), "u1", ins.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_ListPredictions_InvalidType(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.svc.ListPredictions(context.Background(), "u1", "BOGUS", false, 20, 0); err == nil {
		t.Error("expected error for invalid prediction type")
	}
}

func TestService_ListPredictions_TypeFilter(t *testing.T) {
	env := newTestEnv(t)
	env.predictions.Create(context.Background(), &Prediction{UserID: "u1", Type: PredictionHypertension, RiskLevel: RiskLow})
	env.predictions.Create(context.Background(), &Prediction{UserID: "u1", Type: PredictionDiabetes, RiskLevel: RiskLow})
	items, total, err := env.svc.ListPredictions(context.Background(), "u1", PredictionDiabetes, false, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Type != PredictionDiabetes {
		t.Errorf("expected single DIABETES prediction, got %d", total)
	}
}
