package main

import (
	"context"
	"net/http"
	"os"
	"planboard/account"
	"planboard/bizerror"
	"planboard/client/es"
	"planboard/client/s3"
	"planboard/common"
	"planboard/domain/label"
	"planboard/event"
	"planboard/indices"
	"planboard/infra/tracing"
	"planboard/persistence"
	"planboard/security"
	"planboard/servehttp"
	"planboard/tracking"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	common.Log.Info("service start")

	closer, err := tracing.Bootstrap(common.GetServiceName())
	if err != nil {
		common.Log.WithError(err).Fatal("failed to install tracer")
	}
	defer closer.Close()

	store, stop := openStore()
	defer stop()

	bus := event.NewBus()
	trackingManager := tracking.NewTrackingManager(store, bus)
	authenticator := security.NewAuthenticator(store, loginLimiterFromEnv())
	accountManager := account.NewAccountManager(store, authenticator.Revoke)
	labelManager := label.NewLabelManager(store)

	if email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL"); email != "" {
		if _, err := accountManager.EnsureAdmin(context.Background(), email, os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")); err != nil {
			common.Log.WithError(err).Fatal("failed to bootstrap admin account")
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	auth := authenticator.SimpleAuthFilter()
	security.RegisterSessionsRestAPI(engine, authenticator)
	account.RegisterUsersRestAPI(engine, accountManager, auth)
	label.RegisterLabelsRestAPI(engine, labelManager, auth)
	servehttp.RegisterTrackingRestAPI(engine, trackingManager, auth, security.RequireEditorForWrites())

	var shutdown []func()
	if os.Getenv("ELASTICSEARCH_URL") != "" {
		if _, err := es.CreateClientFromEnv(); err != nil {
			common.Log.WithError(err).Fatal("failed to create elasticsearch client")
		}
		bus.Subscribe(indices.ProjectIndexHandler(trackingManager))
		synchronizer := indices.NewSynchronizer(trackingManager)
		crontab := synchronizer.StartCron()
		shutdown = append(shutdown, func() { crontab.Stop() })
		indices.RegisterIndicesRestAPI(engine, synchronizer, auth)
	}
	if os.Getenv("OSS_ENDPOINT") != "" {
		s3.ArchiveBucket, err = s3.BuildBucketFromEnv()
		if err != nil {
			common.Log.WithError(err).Fatal("failed to open archive bucket")
		}
		bus.Subscribe(tracking.ArchiveSnapshotHandler(trackingManager))
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":80"
	}
	servehttp.StartHTTPServer(addr, engine, shutdown...)
}

// openStore picks the store named by STORE, the relational one unless STORE=memory.
func openStore() (persistence.Store, func()) {
	if os.Getenv("STORE") == "memory" {
		common.Log.Warn("using the in-memory store, data will be lost on exit")
		return persistence.NewMemoryStore(), func() {}
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		common.Log.WithError(err).Fatal("parse database config failed")
	}
	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		common.Log.WithError(err).Fatal("failed to prepare database")
	}
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		common.Log.WithError(err).Fatal("database connection failed")
	}
	// database migration (race condition)
	if err := persistence.AutoMigrate(ds.GormDB(context.Background())); err != nil {
		common.Log.WithError(err).Fatal("database migration failed")
	}
	return persistence.NewGormStore(ds), ds.Stop
}

// loginLimiterFromEnv allows LOGIN_RATE_PER_SECOND logins per second, 5 by default.
func loginLimiterFromEnv() *rate.Limiter {
	perSecond := 5.0
	if v, err := strconv.ParseFloat(os.Getenv("LOGIN_RATE_PER_SECOND"), 64); err == nil && v > 0 {
		perSecond = v
	}
	return rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
}
