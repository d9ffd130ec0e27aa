package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/internal/service/feeds"
	"github.com/mamadbah2/dairyfeed/internal/service/nutrition"
)

type stubFeedStore struct {
	docs []models.RawFeedDocument
}

func (s *stubFeedStore) FindStandardByIDs(_ context.Context, ids []string) ([]models.RawFeedDocument, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []models.RawFeedDocument
	for _, doc := range s.docs {
		if _, ok := want[doc.ID]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *stubFeedStore) FindCustomByIDs(context.Context, string, []string) ([]models.RawFeedDocument, error) {
	return nil, nil
}

func newEvaluationRouter(store *stubFeedStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	loader := feeds.NewLoader(store, nil)
	calc := nutrition.NewCalculator(nil)
	evaluator := nutrition.NewEvaluator(loader, calc, nil)
	handler := NewEvaluationHandler(evaluator, nil)

	r := gin.New()
	r.POST("/v1/evaluations", func(c *gin.Context) {
		c.Set(OrgIDKey, "org-test")
		handler.Evaluate(c)
	})
	return r
}

func catalogStore() *stubFeedStore {
	return &stubFeedStore{docs: []models.RawFeedDocument{
		{
			ID: "maize-silage", Code: "MZS", Name: "Maize silage",
			Category: "forage", Source: models.FeedSourceStandard,
			CrudeProtein: "8.0", NDF: "45", ADF: "28", Starch: "30",
			EtherExtract: "3.0", Calcium: "0.25", Phosphorus: "0.22",
		},
		{
			ID: "soybean-meal", Code: "SBM", Name: "Soybean meal",
			Category: "concentrate", Source: models.FeedSourceStandard,
			CrudeProtein: "48", NDF: "14", ADF: "10", Starch: "2",
			EtherExtract: "1.5", Calcium: "0.3", Phosphorus: "0.65",
		},
	}}
}

func TestEvaluateEndToEnd(t *testing.T) {
	router := newEvaluationRouter(catalogStore())

	body := `{
		"animal": {"physiological_state": "Lactating Cow", "body_weight_kg": 600, "days_in_milk": 100},
		"diet": [
			{"feed_id": "maize-silage", "amount_kg_dm": 12},
			{"feed_id": "soybean-meal", "amount_kg_dm": 6}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/v1/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.EvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	dmin := resp.Supply["supply_dmin"]
	if dmin == nil || *dmin != 18 {
		t.Errorf("supplied dmi = %v, want 18", dmin)
	}
	if resp.LimitingNutrient != "Energy" && resp.LimitingNutrient != "Protein" {
		t.Errorf("limiting nutrient = %q", resp.LimitingNutrient)
	}
	if resp.MethaneGPerDay == nil || *resp.MethaneGPerDay <= 76 {
		t.Errorf("methane estimate missing or implausible: %v", resp.MethaneGPerDay)
	}
	if resp.Requirements["an_me"] == nil {
		t.Error("requirement figures missing from merged response")
	}
}

func TestEvaluateEmptyDietIsBadRequest(t *testing.T) {
	router := newEvaluationRouter(catalogStore())

	body := `{"animal": {}, "diet": []}`
	req := httptest.NewRequest(http.MethodPost, "/v1/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEvaluateUnknownFeedIsNotFound(t *testing.T) {
	router := newEvaluationRouter(catalogStore())

	body := `{"animal": {}, "diet": [{"feed_id": "ghost", "amount_kg_dm": 5}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ghost") {
		t.Errorf("not-found response should name the missing identifier, got %s", rec.Body.String())
	}
}

func TestEvaluateTinyDietIsUnprocessable(t *testing.T) {
	router := newEvaluationRouter(catalogStore())

	body := `{"animal": {}, "diet": [{"feed_id": "maize-silage", "amount_kg_dm": 0.0000001}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
	}
}
