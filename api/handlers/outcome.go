package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/config"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/services"
)

// Outcome exposes the case-level outcome operations over http
type Outcome struct {
	Service   *services.OutcomeService
	Referrals *services.ReferralService
}

type createReferralRequest struct {
	Code    models.OutcomeCode `json:"code"`
	Details string             `json:"details"`
}

// CreateReferralHandler records a referral decided at case level
func (o Outcome) CreateReferralHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req createReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.CreateReferral(ctx, chargeNumber, req.Code, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

type createNotProceedRequest struct {
	Reason  models.NotProceedReason `json:"reason"`
	Details string                  `json:"details"`
}

// CreateNotProceedHandler records the decision not to proceed with the charge
func (o Outcome) CreateNotProceedHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req createNotProceedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.CreateNotProceed(ctx, chargeNumber, req.Reason, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

type createDismissedRequest struct {
	Details string `json:"details"`
}

// CreateDismissedHandler records the dismissal of the charge at case level
func (o Outcome) CreateDismissedHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req createDismissedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.CreateDismissed(ctx, chargeNumber, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// CreateProsecutionHandler records that the police are prosecuting the charge
func (o Outcome) CreateProsecutionHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.CreateProsecution(ctx, chargeNumber, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

type createQuashedRequest struct {
	Reason  models.QuashedReason `json:"reason"`
	Details string               `json:"details"`
}

// CreateQuashedHandler overturns a proved charge
func (o Outcome) CreateQuashedHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req createQuashedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.CreateQuashed(ctx, chargeNumber, req.Reason, req.Details, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// GetOutcomesHandler returns the outcome history with referrals paired to resolutions
func (o Outcome) GetOutcomesHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	history, err := o.Service.GetOutcomes(ctx, chargeNumber)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// DeleteOutcomeHandler removes one outcome by id
func (o Outcome) DeleteOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.DeleteOutcome(ctx, vars["chargeNumber"], vars["outcomeId"], api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// DeleteLatestOutcomeHandler removes the latest outcome when it is a not-proceed
func (o Outcome) DeleteLatestOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Service.DeleteLatestOutcome(ctx, chargeNumber, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// RemoveReferralHandler unwinds the latest referral and its resolution
func (o Outcome) RemoveReferralHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := o.Referrals.RemoveReferral(ctx, chargeNumber, api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}
