package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/config"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/services"
)

// Punishments exposes punishment writes and cross-report punishment queries over http
type Punishments struct {
	Service *services.PunishmentsService
	Reports *services.PunishmentsReportService
}

type punishmentRequest struct {
	ID                        string                          `json:"id"`
	Type                      models.PunishmentType           `json:"type"`
	PrivilegeType             models.PrivilegeType            `json:"privilegeType"`
	OtherPrivilege            string                          `json:"otherPrivilege"`
	StoppagePercentage        *int                            `json:"stoppagePercentage"`
	Amount                    *float64                        `json:"amount"`
	Days                      int                             `json:"days"`
	StartDate                 *time.Time                      `json:"startDate"`
	EndDate                   *time.Time                      `json:"endDate"`
	SuspendedUntil            *time.Time                      `json:"suspendedUntil"`
	ActivatedFrom             string                          `json:"activatedFrom"`
	ConsecutiveToChargeNumber string                          `json:"consecutiveToChargeNumber"`
	RehabilitativeActivities  []models.RehabilitativeActivity `json:"rehabilitativeActivities"`
}

type punishmentsRequest struct {
	Punishments []punishmentRequest `json:"punishments"`
}

func (p punishmentsRequest) toService() []services.PunishmentRequest {
	requests := make([]services.PunishmentRequest, 0, len(p.Punishments))
	for _, req := range p.Punishments {
		requests = append(requests, services.PunishmentRequest{
			ID:                        req.ID,
			Type:                      req.Type,
			PrivilegeType:             req.PrivilegeType,
			OtherPrivilege:            req.OtherPrivilege,
			StoppagePercentage:        req.StoppagePercentage,
			Amount:                    req.Amount,
			Days:                      req.Days,
			StartDate:                 req.StartDate,
			EndDate:                   req.EndDate,
			SuspendedUntil:            req.SuspendedUntil,
			ActivatedFrom:             req.ActivatedFrom,
			ConsecutiveToChargeNumber: req.ConsecutiveToChargeNumber,
			RehabilitativeActivities:  req.RehabilitativeActivities,
		})
	}
	return requests
}

// CreatePunishmentsHandler adds punishments to a charge-proved case
func (p Punishments) CreatePunishmentsHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req punishmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := p.Service.Create(ctx, chargeNumber, req.toService(), api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// UpdatePunishmentsHandler replaces the punishments on a charge-proved case
func (p Punishments) UpdatePunishmentsHandler(w http.ResponseWriter, r *http.Request) {
	chargeNumber := mux.Vars(r)["chargeNumber"]

	var req punishmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	adjudication, err := p.Service.Update(ctx, chargeNumber, req.toService(), api.Actor(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, adjudication)
}

// SuspendedPunishmentsHandler returns the prisoner's suspended punishments available
// for activation
func (p Punishments) SuspendedPunishmentsHandler(w http.ResponseWriter, r *http.Request) {
	prisonerNumber := mux.Vars(r)["prisonerNumber"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	suspended, err := p.Reports.GetSuspendedPunishments(ctx, prisonerNumber)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suspended)
}

// AdditionalDaysHandler returns the prisoner's proved charges carrying added-days
// punishments of the requested type
func (p Punishments) AdditionalDaysHandler(w http.ResponseWriter, r *http.Request) {
	prisonerNumber := mux.Vars(r)["prisonerNumber"]
	punishmentType := models.PunishmentType(r.URL.Query().Get("type"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reports, err := p.Reports.GetReportsWithAdditionalDays(ctx, prisonerNumber, punishmentType)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}
