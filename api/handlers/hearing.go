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

// Hearing exposes the hearing workflow over http: scheduling, hearing outcomes and
// completed hearings
type Hearing struct {
	Service   *services.HearingService
	Outcomes  *services.HearingOutcomeService
	Completed *services.CompletedHearingService
	Amends    *services.AmendHearingOutcomeService
}

type hearingRequest struct {
	LocationID        int64                 `json:"locationId"`
	DateTimeOfHearing time.Time             `json:"dateTimeOfHearing"`
	OicHearingType    models.OicHearingType `json:"oicHearingType"`
}

// CreateHearingHandler schedules a hearing for the charge
func (h Hearing) CreateHearingHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req hearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Service.CreateHearing(ctx, chargeNumber, services.HearingRequest{
		LocationID:        req.LocationID,
		DateTimeOfHearing: req.DateTimeOfHearing,
		OicHearingType:    req.OicHearingType,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// AmendHearingHandler changes the latest hearing
func (h Hearing) AmendHearingHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req hearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Service.AmendHearing(ctx, chargeNumber, services.HearingRequest{
		LocationID:        req.LocationID,
		DateTimeOfHearing: req.DateTimeOfHearing,
		OicHearingType:    req.OicHearingType,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// DeleteHearingHandler removes the latest hearing
func (h Hearing) DeleteHearingHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Service.DeleteHearing(ctx, chargeNumber, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// AgencyHearingsHandler returns the agency's hearing schedule for one day
func (h Hearing) AgencyHearingsHandler(w http.ResponseWriter, r *http.Request) {
	agencyID := mux.Vars(r)["agencyId"]

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		config.ErrorStatus("invalid date, expected YYYY-MM-DD", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	hearings, err := h.Service.GetHearingsForAgencyAndDate(ctx, agencyID, date)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, hearings)
}

type hearingReferralRequest struct {
	Code        models.HearingOutcomeCode `json:"code"`
	Adjudicator string                    `json:"adjudicator"`
	Details     string                    `json:"details"`
}

// CreateHearingReferralHandler records a referral made at the latest hearing
func (h Hearing) CreateHearingReferralHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req hearingReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Outcomes.CreateReferral(ctx, chargeNumber, req.Code, req.Adjudicator, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

type adjournRequest struct {
	Adjudicator string                             `json:"adjudicator"`
	Reason      models.HearingOutcomeAdjournReason `json:"reason"`
	Plea        models.HearingOutcomePlea          `json:"plea"`
	Details     string                             `json:"details"`
}

// CreateAdjournHandler records that the latest hearing was adjourned
func (h Hearing) CreateAdjournHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req adjournRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Outcomes.CreateAdjourn(ctx, chargeNumber, req.Adjudicator, req.Reason, req.Plea, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// HearingOutcomeForReferralHandler returns the hearing outcome behind a referral chain
// entry, looked up by code and zero-based index
func (h Hearing) HearingOutcomeForReferralHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	code := models.OutcomeCode(r.URL.Query().Get("code"))
	index, _ := strconv.Atoi(r.URL.Query().Get("index"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	outcome, err := h.Outcomes.GetHearingOutcomeForReferral(ctx, chargeNumber, code, index)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

type amendHearingOutcomeRequest struct {
	Adjudicator string                    `json:"adjudicator"`
	Plea        models.HearingOutcomePlea `json:"plea"`
	Details     string                    `json:"details"`
}

// AmendHearingOutcomeHandler corrects the outcome on the latest hearing
func (h Hearing) AmendHearingOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req amendHearingOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Amends.AmendHearingOutcome(ctx, chargeNumber, services.AmendHearingOutcomeRequest{
		Adjudicator: req.Adjudicator,
		Plea:        req.Plea,
		Details:     req.Details,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// DeleteHearingOutcomeHandler removes the outcome on the latest hearing
func (h Hearing) DeleteHearingOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Outcomes.DeleteHearingOutcome(ctx, chargeNumber, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

type completedHearingRequest struct {
	Adjudicator string                    `json:"adjudicator"`
	Plea        models.HearingOutcomePlea `json:"plea"`
	Details     string                    `json:"details"`
	Reason      models.NotProceedReason   `json:"reason"`
	Caution     bool                      `json:"caution"`
	DamagesOwed *float64                  `json:"damagesOwed"`
}

// CreateDismissedHandler records a completed hearing that dismissed the charge
func (h Hearing) CreateDismissedHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req completedHearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Completed.CreateDismissed(ctx, chargeNumber, services.CompletedHearingRequest{
		Adjudicator: req.Adjudicator,
		Plea:        req.Plea,
		Details:     req.Details,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// CreateCompletedNotProceedHandler records a completed hearing that decided not to
// proceed
func (h Hearing) CreateCompletedNotProceedHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req completedHearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Completed.CreateNotProceed(ctx, chargeNumber, req.Reason, services.CompletedHearingRequest{
		Adjudicator: req.Adjudicator,
		Plea:        req.Plea,
		Details:     req.Details,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// CreateChargeProvedHandler records a completed hearing that proved the charge
func (h Hearing) CreateChargeProvedHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req completedHearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := h.Completed.CreateChargeProved(ctx, chargeNumber, req.Caution, req.DamagesOwed, services.CompletedHearingRequest{
		Adjudicator: req.Adjudicator,
		Plea:        req.Plea,
		Details:     req.Details,
	}, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}
