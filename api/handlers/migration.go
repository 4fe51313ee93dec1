package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/config"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/services"
)

// Migration exposes the migration feed and the data repair jobs over http. These
// endpoints are called by the migration pipeline, not by interactive clients.
type Migration struct {
	Reset  *services.MigrateService
	Accept *services.MigrateNewRecordService
	Fix    *services.MigrationFixService
	Repair *services.ActivatedSuspendedRepairService
}

// migration jobs scan the whole collection; give them more room than interactive reads
const migrationTimeout = 5 * time.Minute

// ResetHandler deletes every migrated record so the feed can replay
func (m Migration) ResetHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), migrationTimeout)
	defer cancel()

	deleted, err := m.Reset.Reset(ctx)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

type migrationHearingRequest struct {
	OicHearingID int64                     `json:"oicHearingId"`
	DateTime     time.Time                 `json:"dateTimeOfHearing"`
	LocationID   int64                     `json:"locationId"`
	HearingType  models.OicHearingType     `json:"oicHearingType"`
	Adjudicator  string                    `json:"adjudicator"`
	Finding      models.Finding            `json:"finding"`
	Plea         models.HearingOutcomePlea `json:"plea"`
}

type migrationRecordRequest struct {
	ChargeNumber      string                    `json:"chargeNumber"`
	PrisonerNumber    string                    `json:"prisonerNumber"`
	OffenderBookingID int64                     `json:"offenderBookingId"`
	AgencyID          string                    `json:"agencyId"`
	ReportedBy        string                    `json:"reportedBy"`
	ReportedAt        time.Time                 `json:"reportedAt"`
	Hearings          []migrationHearingRequest `json:"hearings"`
	Punishments       []models.Punishment       `json:"punishments"`
}

// AcceptRecordHandler accepts one legacy record from the migration feed
func (m Migration) AcceptRecordHandler(w http.ResponseWriter, r *http.Request) {
	var req migrationRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record := services.MigrationRecord{
		ChargeNumber:      req.ChargeNumber,
		PrisonerNumber:    req.PrisonerNumber,
		OffenderBookingID: req.OffenderBookingID,
		AgencyID:          req.AgencyID,
		ReportedBy:        req.ReportedBy,
		ReportedAt:        req.ReportedAt,
		Punishments:       req.Punishments,
	}
	for _, hearing := range req.Hearings {
		record.Hearings = append(record.Hearings, services.MigrationHearing{
			OicHearingID: hearing.OicHearingID,
			DateTime:     hearing.DateTime,
			LocationID:   hearing.LocationID,
			HearingType:  hearing.HearingType,
			Adjudicator:  hearing.Adjudicator,
			Finding:      hearing.Finding,
			Plea:         hearing.Plea,
		})
	}

	adjudication, err := m.Accept.AcceptNewRecord(ctx, record)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjudication)
}

// FixHandler runs one repair pass over migrated records
func (m Migration) FixHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), migrationTimeout)
	defer cancel()

	fixed, err := m.Fix.Repair(ctx)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"fixed": fixed})
}

// RepairActivatedHandler reverts orphaned suspended-punishment activations
func (m Migration) RepairActivatedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), migrationTimeout)
	defer cancel()

	touched, err := m.Repair.Repair(ctx)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"repaired": touched})
}
