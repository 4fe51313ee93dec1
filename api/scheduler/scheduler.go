package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/locations"
	"github.com/justicelabs/adjudications-api/services"
)

// Scheduler runs the periodic migration-era jobs: sweeping the legacy system for
// hearing results recorded there, and backfilling durable location UUIDs onto hearings
// that only carry legacy location ids
type Scheduler struct {
	cron       *cron.Cron
	DB         databases.AdjudicationDatabase
	LockDB     databases.SchedulerLockDatabase
	NomisSweep *services.NomisHearingOutcomeService
	Locations  *locations.Client
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	db databases.AdjudicationDatabase,
	lockDB databases.SchedulerLockDatabase,
	nomisSweep *services.NomisHearingOutcomeService,
	locationClient *locations.Client,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		DB:         db,
		LockDB:     lockDB,
		NomisSweep: nomisSweep,
		Locations:  locationClient,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep the legacy system for externally recorded hearing results every hour
	_, err := s.cron.AddFunc("0 * * * *", s.checkNomisHearingOutcomes)
	if err != nil {
		zap.S().Errorw("failed to register nomis sweep job", "error", err)
	}

	// Backfill location UUIDs nightly at 1 AM UTC
	_, err = s.cron.AddFunc("0 1 * * *", s.backfillLocationUUIDs)
	if err != nil {
		zap.S().Errorw("failed to register location backfill job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Adjudications scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Adjudications scheduler stopped")
}

func (s *Scheduler) checkNomisHearingOutcomes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "nomis_hearing_outcome_job", s.instanceID, 15*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for nomis sweep job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Nomis sweep already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "nomis_hearing_outcome_job", s.instanceID)

	zap.S().Infow("Running nomis hearing outcome sweep", "instance", s.instanceID)

	stamped, err := s.NomisSweep.CheckForNomisHearingOutcomesAndUpdate(ctx)
	if err != nil {
		zap.S().Errorw("nomis hearing outcome sweep failed", "error", err)
		return
	}
	zap.S().Infof("nomis hearing outcome sweep stamped %d hearings", stamped)
}

func (s *Scheduler) backfillLocationUUIDs() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "location_backfill_job", s.instanceID, time.Hour)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for location backfill job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Location backfill already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "location_backfill_job", s.instanceID)

	zap.S().Infow("Running location uuid backfill", "instance", s.instanceID)

	filter := bson.M{
		"adjudication.hearings": bson.M{
			"$elemMatch": bson.M{
				"locationUuid": bson.M{"$in": bson.A{nil, ""}},
				"locationId":   bson.M{"$gt": 0},
			},
		},
	}
	candidates, err := s.DB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find hearings needing location backfill", "error", err)
		return
	}

	backfilled := 0
	for i := range candidates {
		adjudication := &candidates[i]
		changed := false
		for j := range adjudication.Details.Hearings {
			hearing := &adjudication.Details.Hearings[j]
			if hearing.LocationUUID != "" || hearing.LocationID == 0 {
				continue
			}
			locationUUID, err := s.Locations.LocationUUID(ctx, hearing.LocationID)
			if err != nil {
				zap.S().Warnw("location lookup failed during backfill",
					"chargeNumber", adjudication.Details.ChargeNumber,
					"locationId", hearing.LocationID,
					"error", err,
				)
				continue
			}
			if locationUUID == "" {
				continue
			}
			hearing.LocationUUID = locationUUID
			changed = true
			backfilled++
		}
		if changed {
			update := bson.M{"$set": bson.M{"adjudication.hearings": adjudication.Details.Hearings}}
			if _, err := s.DB.UpdateMany(ctx, bson.M{"_id": adjudication.ID}, update); err != nil {
				zap.S().Errorw("failed to save backfilled hearings",
					"chargeNumber", adjudication.Details.ChargeNumber,
					"error", err,
				)
			}
		}
	}
	zap.S().Infof("location backfill resolved %d hearings", backfilled)
}
