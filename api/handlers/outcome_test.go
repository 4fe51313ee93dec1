package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/justicelabs/adjudications-api/api/handlers"
	mocksdb "github.com/justicelabs/adjudications-api/databases/mocks"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/services"
)

func newOutcomeHandler(db *mocksdb.AdjudicationDatabase) handlers.Outcome {
	nomisOutcomes := &services.NomisOutcomeService{}
	return handlers.Outcome{
		Service:   &services.OutcomeService{DB: db, Nomis: nomisOutcomes},
		Referrals: &services.ReferralService{DB: db, Nomis: nomisOutcomes},
	}
}

func TestOutcome_CreateReferralHandler(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	o := newOutcomeHandler(db)

	body := `{"code": "REFER_POLICE", "details": "assault on staff"}`
	req, err := http.NewRequest("POST", "/api/v1/reported-adjudications/MDI-000001/outcome/referral", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(o.CreateReferralHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"REFER_POLICE"`)
}

func TestOutcome_CreateDismissedHandler(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	o := newOutcomeHandler(db)

	body := `{"details": "no case to answer"}`
	req, err := http.NewRequest("POST", "/api/v1/reported-adjudications/MDI-000001/outcome/dismissed", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(o.CreateDismissedHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"DISMISSED"`)
}

func TestOutcome_CreateReferralHandlerBadBody(t *testing.T) {
	o := newOutcomeHandler(&mocksdb.AdjudicationDatabase{})

	req, err := http.NewRequest("POST", "/api/v1/reported-adjudications/MDI-000001/outcome/referral", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(o.CreateReferralHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to decode request body")
}

func TestOutcome_CreateReferralHandlerInvalidCode(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)

	o := newOutcomeHandler(db)

	req, err := http.NewRequest("POST", "/api/v1/reported-adjudications/MDI-000001/outcome/referral", strings.NewReader(`{"code": "CHARGE_PROVED"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(o.CreateReferralHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid referral type")
	db.AssertNotCalled(t, "ReplaceOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutcome_GetOutcomesHandler(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := fixtureAdjudication(models.StatusNotProceed)
	adjudication.Details.Outcomes = []models.Outcome{{ID: "o1", Code: models.OutcomeNotProceed}}
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)

	o := newOutcomeHandler(db)

	req, err := http.NewRequest("GET", "/api/v1/reported-adjudications/MDI-000001/outcomes", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(o.GetOutcomesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"NOT_PROCEED"`)
}

func TestOutcome_RemoveReferralHandlerNotFound(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)

	o := newOutcomeHandler(db)

	req, err := http.NewRequest("DELETE", "/api/v1/reported-adjudications/MDI-000001/remove-referral", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(o.RemoveReferralHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "referral not found")
}
