package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/config"
	"github.com/justicelabs/adjudications-api/services"
)

// PrisonerEvents exposes the prisoner movement hooks: transfers between prisons and
// prisoner record merges
type PrisonerEvents struct {
	Transfers *services.TransferService
	Merges    *services.PrisonerMergeService
}

type transferEventRequest struct {
	PrisonerNumber string `json:"prisonerNumber"`
	AgencyID       string `json:"agencyId"`
}

// TransferHandler points the prisoner's in-flight cases at the receiving prison
func (p PrisonerEvents) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.Transfers.ProcessTransferEvent(ctx, req.PrisonerNumber, req.AgencyID); err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

type mergeEventRequest struct {
	RemovedPrisonerNumber   string `json:"removedPrisonerNumber"`
	SurvivingPrisonerNumber string `json:"survivingPrisonerNumber"`
}

// MergeHandler re-keys cases from a removed prisoner number to the surviving one
func (p PrisonerEvents) MergeHandler(w http.ResponseWriter, r *http.Request) {
	var req mergeEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.Merges.Merge(ctx, req.RemovedPrisonerNumber, req.SurvivingPrisonerNumber); err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
