package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/api/scheduler"
	"github.com/justicelabs/adjudications-api/config"
	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/locations"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
	"github.com/justicelabs/adjudications-api/services"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewStaffDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	adjDB := databases.NewAdjudicationDatabase(a.dbHelper)
	gateway := nomis.NewClient(a.Config.NomisURL, a.Config.NomisToken)
	publisher := events.ZapPublisher{}

	var locationCache *redis.Client
	if a.Config.RedisURL != "" {
		if opts, err := redis.ParseURL(a.Config.RedisURL); err == nil {
			locationCache = redis.NewClient(opts)
		} else {
			zap.S().Warnf("invalid redis url, location caching disabled: %v", err)
		}
	}
	locationClient := locations.NewClient(a.Config.LocationsURL, locationCache)

	nomisOutcomes := &services.NomisOutcomeService{Gateway: gateway}
	punishments := &services.PunishmentsService{DB: adjDB, Events: publisher}
	outcomes := &services.OutcomeService{DB: adjDB, Nomis: nomisOutcomes, Punishments: punishments, Events: publisher}

	adj := Adjudication{Service: &services.AdjudicationService{DB: adjDB, Gateway: gateway, Events: publisher}}
	out := Outcome{
		Service:   outcomes,
		Referrals: &services.ReferralService{DB: adjDB, Nomis: nomisOutcomes, Events: publisher},
	}
	h := Hearing{
		Service:   &services.HearingService{DB: adjDB, Gateway: gateway, Locations: locationClient, Events: publisher},
		Outcomes:  &services.HearingOutcomeService{DB: adjDB, Nomis: nomisOutcomes, Outcomes: outcomes, Events: publisher},
		Completed: &services.CompletedHearingService{DB: adjDB, Nomis: nomisOutcomes, Events: publisher},
		Amends:    &services.AmendHearingOutcomeService{DB: adjDB, Nomis: nomisOutcomes},
	}
	p := Punishments{
		Service: punishments,
		Reports: &services.PunishmentsReportService{DB: adjDB},
	}
	mig := Migration{
		Reset:  &services.MigrateService{DB: adjDB},
		Accept: &services.MigrateNewRecordService{DB: adjDB},
		Fix:    &services.MigrationFixService{DB: adjDB},
		Repair: &services.ActivatedSuspendedRepairService{DB: adjDB},
	}
	pe := PrisonerEvents{
		Transfers: &services.TransferService{DB: adjDB},
		Merges:    &services.PrisonerMergeService{DB: adjDB},
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/reported-adjudications", api.Middleware(http.HandlerFunc(adj.CreateAdjudicationHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/agency/{agencyId}", api.Middleware(http.HandlerFunc(adj.AdjudicationsByAgencyHandler))).Methods("GET")
	apiCreate.Handle("/reported-adjudications/prisoner/{prisonerNumber}", api.Middleware(http.HandlerFunc(adj.AdjudicationsByPrisonerHandler))).Methods("GET")
	apiCreate.Handle("/reported-adjudications/hearings/agency/{agencyId}", api.Middleware(http.HandlerFunc(h.AgencyHearingsHandler))).Methods("GET")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}", api.Middleware(http.HandlerFunc(adj.AdjudicationHandler))).Methods("GET")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/status", api.Middleware(http.HandlerFunc(adj.SetStatusHandler))).Methods("PUT")

	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome/referral", api.Middleware(http.HandlerFunc(out.CreateReferralHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome/not-proceed", api.Middleware(http.HandlerFunc(out.CreateNotProceedHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome/dismissed", api.Middleware(http.HandlerFunc(out.CreateDismissedHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome/prosecution", api.Middleware(http.HandlerFunc(out.CreateProsecutionHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome/quashed", api.Middleware(http.HandlerFunc(out.CreateQuashedHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcomes", api.Middleware(http.HandlerFunc(out.GetOutcomesHandler))).Methods("GET")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome/{outcomeId}", api.Middleware(http.HandlerFunc(out.DeleteOutcomeHandler))).Methods("DELETE")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/outcome", api.Middleware(http.HandlerFunc(out.DeleteLatestOutcomeHandler))).Methods("DELETE")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/remove-referral", api.Middleware(http.HandlerFunc(out.RemoveReferralHandler))).Methods("DELETE")

	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing", api.Middleware(http.HandlerFunc(h.CreateHearingHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing", api.Middleware(http.HandlerFunc(h.AmendHearingHandler))).Methods("PUT")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing", api.Middleware(http.HandlerFunc(h.DeleteHearingHandler))).Methods("DELETE")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing/outcome/referral", api.Middleware(http.HandlerFunc(h.CreateHearingReferralHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing/outcome/adjourn", api.Middleware(http.HandlerFunc(h.CreateAdjournHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing/outcome/referral", api.Middleware(http.HandlerFunc(h.HearingOutcomeForReferralHandler))).Methods("GET")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing/outcome", api.Middleware(http.HandlerFunc(h.AmendHearingOutcomeHandler))).Methods("PUT")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/hearing/outcome", api.Middleware(http.HandlerFunc(h.DeleteHearingOutcomeHandler))).Methods("DELETE")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/complete-hearing/dismissed", api.Middleware(http.HandlerFunc(h.CreateDismissedHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/complete-hearing/not-proceed", api.Middleware(http.HandlerFunc(h.CreateCompletedNotProceedHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/complete-hearing/charge-proved", api.Middleware(http.HandlerFunc(h.CreateChargeProvedHandler))).Methods("POST")

	apiCreate.Handle("/reported-adjudications/{chargeNumber}/punishments", api.Middleware(http.HandlerFunc(p.CreatePunishmentsHandler))).Methods("POST")
	apiCreate.Handle("/reported-adjudications/{chargeNumber}/punishments", api.Middleware(http.HandlerFunc(p.UpdatePunishmentsHandler))).Methods("PUT")
	apiCreate.Handle("/punishments/{prisonerNumber}/suspended", api.Middleware(http.HandlerFunc(p.SuspendedPunishmentsHandler))).Methods("GET")
	apiCreate.Handle("/punishments/{prisonerNumber}/additional-days", api.Middleware(http.HandlerFunc(p.AdditionalDaysHandler))).Methods("GET")

	apiCreate.Handle("/migrate/reset", api.Middleware(http.HandlerFunc(mig.ResetHandler))).Methods("DELETE")
	apiCreate.Handle("/migrate/record", api.Middleware(http.HandlerFunc(mig.AcceptRecordHandler))).Methods("POST")
	apiCreate.Handle("/migrate/fix", api.Middleware(http.HandlerFunc(mig.FixHandler))).Methods("POST")
	apiCreate.Handle("/repair/activated-suspended", api.Middleware(http.HandlerFunc(mig.RepairActivatedHandler))).Methods("POST")

	apiCreate.Handle("/prisoner-events/transfer", api.Middleware(http.HandlerFunc(pe.TransferHandler))).Methods("POST")
	apiCreate.Handle("/prisoner-events/merge", api.Middleware(http.HandlerFunc(pe.MergeHandler))).Methods("POST")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Scheduler builds the background job runner on top of the app's database connection.
// Call after Initialize.
func (a *App) Scheduler() *scheduler.Scheduler {
	adjDB := databases.NewAdjudicationDatabase(a.dbHelper)
	lockDB := databases.NewSchedulerLockDatabase(a.dbHelper)
	gateway := nomis.NewClient(a.Config.NomisURL, a.Config.NomisToken)

	var locationCache *redis.Client
	if a.Config.RedisURL != "" {
		if opts, err := redis.ParseURL(a.Config.RedisURL); err == nil {
			locationCache = redis.NewClient(opts)
		}
	}
	locationClient := locations.NewClient(a.Config.LocationsURL, locationCache)

	sweep := &services.NomisHearingOutcomeService{DB: adjDB, Gateway: gateway}
	return scheduler.NewScheduler(adjDB, lockDB, sweep, locationClient)
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("adjudications-api has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// serviceError maps service errors onto http statuses: missing aggregates surface as
// 404, rule violations as 400, everything else as 500
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsNotFoundError(err):
		config.ErrorStatus(err.Error(), http.StatusNotFound, w, err)
	case models.IsValidationError(err):
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
	default:
		config.ErrorStatus("internal server error", http.StatusInternalServerError, w, err)
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(statusCode)
	w.Write(b)
}
