package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"planboard/common"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// StartHTTPServer serves the engine on addr until SIGINT or SIGTERM, then shuts down gracefully.
func StartHTTPServer(addr string, engine *gin.Engine, onShutdown ...func()) {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		common.Log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.Log.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 send syscall.SIGINT
	// kill -9 send syscall.SIGKILL, can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	common.Log.Info("[QUIT] shutdown signal has been received, the service will exit in 3 seconds.")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.Log.WithError(err).Error("[QUIT] http server shutdown failed")
	}
	for _, fn := range onShutdown {
		fn()
	}
	common.Log.Info("[QUIT] service exiting")
}
