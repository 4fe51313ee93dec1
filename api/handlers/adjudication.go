package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/config"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/services"
)

// Adjudication exposes the report lifecycle over http
type Adjudication struct {
	Service *services.AdjudicationService
}

type createAdjudicationRequest struct {
	PrisonerNumber     string                    `json:"prisonerNumber"`
	OffenderBookingID  int64                     `json:"offenderBookingId"`
	AgencyID           string                    `json:"agencyId"`
	IncidentLocationID int64                     `json:"incidentLocationId"`
	IncidentTime       time.Time                 `json:"incidentTime"`
	Statement          string                    `json:"statement"`
	OffenceCodes       []string                  `json:"offenceCodes"`
	Damages            []models.ReportedDamage   `json:"damages"`
	Evidence           []models.ReportedEvidence `json:"evidence"`
	Witnesses          []models.ReportedWitness  `json:"witnesses"`
}

// CreateAdjudicationHandler creates a new reported adjudication awaiting review
func (a Adjudication) CreateAdjudicationHandler(w http.ResponseWriter, r *http.Request) {
	var req createAdjudicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := a.Service.Create(ctx, services.CreateAdjudicationRequest{
		PrisonerNumber:     req.PrisonerNumber,
		OffenderBookingID:  req.OffenderBookingID,
		AgencyID:           req.AgencyID,
		IncidentLocationID: req.IncidentLocationID,
		IncidentTime:       req.IncidentTime,
		Statement:          req.Statement,
		OffenceCodes:       req.OffenceCodes,
		Damages:            req.Damages,
		Evidence:           req.Evidence,
		Witnesses:          req.Witnesses,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// AdjudicationHandler returns one adjudication by charge number
func (a Adjudication) AdjudicationHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := a.Service.Get(ctx, chargeNumber)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// AdjudicationsByAgencyHandler returns a page of an agency's adjudications
func (a Adjudication) AdjudicationsByAgencyHandler(w http.ResponseWriter, r *http.Request) {
	agencyID := mux.Vars(r)["agencyId"]

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var statuses []models.ReportedAdjudicationStatus
	for _, s := range r.URL.Query()["status"] {
		statuses = append(statuses, models.ReportedAdjudicationStatus(s))
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudications, err := a.Service.GetByAgency(ctx, agencyID, statuses, limit, page)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudications)
}

// AdjudicationsByPrisonerHandler returns all adjudications for a prisoner
func (a Adjudication) AdjudicationsByPrisonerHandler(w http.ResponseWriter, r *http.Request) {
	prisonerNumber := mux.Vars(r)["prisonerNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudications, err := a.Service.GetByPrisoner(ctx, prisonerNumber)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudications)
}

type setStatusRequest struct {
	Status  models.ReportedAdjudicationStatus `json:"status"`
	Reason  string                            `json:"statusReason"`
	Details string                            `json:"statusDetails"`
}

// SetStatusHandler moves a report through the review workflow
func (a Adjudication) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := a.Service.SetStatus(ctx, chargeNumber, req.Status, req.Reason, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}
