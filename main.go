package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/api"
	"github.com/justicelabs/adjudications-api/api/handlers"
	"github.com/justicelabs/adjudications-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	s := a.Scheduler()
	s.Start()
	defer s.Stop()

	zap.S().Infow("adjudications-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), api.TimeoutMiddleware(60*time.Second)(a.Router)))
}
