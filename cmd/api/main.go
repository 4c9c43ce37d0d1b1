// @title CampusReady API
// @version 1.0
// @description Eligibility and readiness matching engine for campus placements.
// @BasePath /api/v1
package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"CampusReady-backend/internal/server"
)

func main() {
	srv := server.NewServer()

	log.Infof("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("cannot start server: %s", err)
	}
}
