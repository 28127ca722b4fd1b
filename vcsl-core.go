package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"

	"github.com/quarkid/vcsl-core/app"
	"github.com/quarkid/vcsl-core/util"
	tmos "github.com/tendermint/tendermint/libs/os"
)

func main() {
	config := app.InitConfig()
	logger := *config.Logger

	anchorApp := app.NewAnchorApplication(config)

	// Wait forever, shutdown gracefully upon
	tmos.TrapSignal(logger, func() {
		logger.Info("Shutting down VCSL Core...")
		anchorApp.PgClient.DB.Close()
		if anchorApp.RedisClient != nil {
			anchorApp.RedisClient.Close()
		}
	})

	anchorStore, err := memstore.New(65536)
	apiStore, err := memstore.New(65536)
	if err != nil {
		panic(err)
	}

	// anchoring spends real satoshis, so it gets the tight quota
	anchorQuota := throttled.RateQuota{MaxRate: throttled.PerMin(3), MaxBurst: 5}
	apiQuota := throttled.RateQuota{MaxRate: throttled.PerSec(15), MaxBurst: 50}
	anchorLimiter, err := throttled.NewGCRARateLimiter(anchorStore, anchorQuota)
	apiLimiter, err := throttled.NewGCRARateLimiter(apiStore, apiQuota)
	if err != nil {
		panic(err)
	}

	anchorRateLimiter := throttled.HTTPRateLimiter{
		RateLimiter: anchorLimiter,
		VaryBy:      &throttled.VaryBy{RemoteAddr: true},
	}
	apiRateLimiter := throttled.HTTPRateLimiter{
		RateLimiter: apiLimiter,
		VaryBy:      &throttled.VaryBy{RemoteAddr: true},
	}

	r := mux.NewRouter()
	r.Handle("/", apiRateLimiter.RateLimit(http.HandlerFunc(anchorApp.HomeHandler)))
	r.Handle("/status", apiRateLimiter.RateLimit(http.HandlerFunc(anchorApp.StatusHandler)))
	r.Handle("/vcsl/issuer/{issuer_id}", anchorRateLimiter.RateLimit(http.HandlerFunc(anchorApp.SetIssuerUrlHandler))).Methods("POST")
	r.Handle("/vcsl/issuer/{issuer_id}", apiRateLimiter.RateLimit(http.HandlerFunc(anchorApp.GetIssuerUrlHandler))).Methods("GET")
	r.Handle("/vcsl", anchorRateLimiter.RateLimit(http.HandlerFunc(anchorApp.AddVcslHandler))).Methods("POST")
	r.Handle("/vcsl/{id}", apiRateLimiter.RateLimit(http.HandlerFunc(anchorApp.GetVcslHandler))).Methods("GET")

	server := &http.Server{
		Handler:      r,
		Addr:         ":" + config.APIPort,
		WriteTimeout: 90 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	util.LogError(server.ListenAndServe())
}
