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

func newHearingHandler(db *mocksdb.AdjudicationDatabase) handlers.Hearing {
	nomisOutcomes := &services.NomisOutcomeService{}
	outcomes := &services.OutcomeService{DB: db, Nomis: nomisOutcomes}
	return handlers.Hearing{
		Service:   &services.HearingService{DB: db},
		Outcomes:  &services.HearingOutcomeService{DB: db, Nomis: nomisOutcomes, Outcomes: outcomes},
		Completed: &services.CompletedHearingService{DB: db, Nomis: nomisOutcomes},
		Amends:    &services.AmendHearingOutcomeService{DB: db, Nomis: nomisOutcomes},
	}
}

func TestHearing_AmendHearingOutcomeHandlerNoOutcome(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := fixtureAdjudication(models.StatusScheduled)
	adjudication.Details.Hearings = []models.Hearing{{ID: "h1", AgencyID: "MDI"}}
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)

	h := newHearingHandler(db)

	body := `{"adjudicator": "Judge Blue"}`
	req, err := http.NewRequest("PUT", "/api/v1/reported-adjudications/MDI-000001/hearing/outcome", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AmendHearingOutcomeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "outcome not found for hearing")
}

func TestHearing_CreateHearingHandler(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := newHearingHandler(db)

	body := `{"locationId": 100, "dateTimeOfHearing": "2024-05-10T10:00:00Z", "oicHearingType": "GOV_ADULT"}`
	req, err := http.NewRequest("POST", "/api/v1/reported-adjudications/MDI-000001/hearing", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateHearingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"SCHEDULED"`)
}

func TestHearing_DeleteHearingHandlerNotFound(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)

	h := newHearingHandler(db)

	req, err := http.NewRequest("DELETE", "/api/v1/reported-adjudications/MDI-000001/hearing", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.DeleteHearingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hearing not found")
}

func TestHearing_AgencyHearingsHandlerBadDate(t *testing.T) {
	h := newHearingHandler(&mocksdb.AdjudicationDatabase{})

	req, err := http.NewRequest("GET", "/api/v1/reported-adjudications/hearings/agency/MDI?date=10-05-2024", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"agencyId": "MDI"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AgencyHearingsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid date, expected YYYY-MM-DD")
}

func TestHearing_CreateAdjournHandlerNoHearing(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(fixtureAdjudication(models.StatusUnscheduled), nil)

	h := newHearingHandler(db)

	body := `{"adjudicator": "Judge Red", "reason": "LEGAL_ADVICE", "plea": "NOT_ASKED"}`
	req, err := http.NewRequest("POST", "/api/v1/reported-adjudications/MDI-000001/hearing/outcome/adjourn", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chargeNumber": "MDI-000001"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateAdjournHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hearing not found")
}
