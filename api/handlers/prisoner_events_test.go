package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/justicelabs/adjudications-api/api/handlers"
	mocksdb "github.com/justicelabs/adjudications-api/databases/mocks"
	"github.com/justicelabs/adjudications-api/services"
)

func TestPrisonerEvents_TransferHandler(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil)

	pe := handlers.PrisonerEvents{Transfers: &services.TransferService{DB: db}}

	body := `{"prisonerNumber": "A1234AA", "agencyId": "LEI"}`
	req, err := http.NewRequest("POST", "/api/v1/prisoner-events/transfer", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(pe.TransferHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"status":"processed"}`, rr.Body.String())
}

func TestPrisonerEvents_MergeHandler(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(4), nil)

	pe := handlers.PrisonerEvents{Merges: &services.PrisonerMergeService{DB: db}}

	body := `{"removedPrisonerNumber": "A1234AA", "survivingPrisonerNumber": "B5678BB"}`
	req, err := http.NewRequest("POST", "/api/v1/prisoner-events/merge", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(pe.MergeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"status":"processed"}`, rr.Body.String())
}

func TestPrisonerEvents_TransferHandlerBadBody(t *testing.T) {
	pe := handlers.PrisonerEvents{Transfers: &services.TransferService{DB: &mocksdb.AdjudicationDatabase{}}}

	req, err := http.NewRequest("POST", "/api/v1/prisoner-events/transfer", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(pe.TransferHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to decode request body")
}
