package router

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"gcp-health-agent/internal/agent"
	"gcp-health-agent/internal/domain"
	"gcp-health-agent/internal/endpoints"
	"gcp-health-agent/internal/util"
)

func NewRouter(healthAgent *agent.HealthAgent, store domain.ReportStore, projects []string, webLogger *util.AgentLogger) *mux.Router {
	r := mux.NewRouter()

	addRoutes(r, healthAgent, store, projects, webLogger)

	r.Use(loggingMiddleware(webLogger))

	return r
}

func addRoutes(r *mux.Router, healthAgent *agent.HealthAgent, store domain.ReportStore, projects []string, webLogger *util.AgentLogger) {

	formHandler := &endpoints.Form{}
	formHandler.Init(healthAgent, projects, webLogger)

	healthHandler := &endpoints.Health{}
	healthHandler.Init(healthAgent, store, projects, webLogger)

	r.HandleFunc("/", formHandler.IndexHandler).Methods("GET", "POST")
	r.HandleFunc("/api/projects/{project}/health", healthHandler.GetHealthHandler).Methods("GET")
	r.HandleFunc("/api/projects/{project}/history/{limit}/{offset}", healthHandler.GetHistoryHandler).Methods("GET")
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func Run(addr string, healthAgent *agent.HealthAgent, store domain.ReportStore, projects []string, webLogger *util.AgentLogger) {
	appRouter := NewRouter(healthAgent, store, projects, webLogger)

	server := NewServer(addr, appRouter)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		println()
		log.Println("Shutting down server...")

		err := gracefulShutdown(server, 25*time.Second)

		if err != nil {
			log.Printf("Server stopped with error: %s", err.Error())
		} else {
			log.Println("Server stopped gracefully.")
		}

		os.Exit(0)
	}()

	log.Printf("Listening on %s", server.Addr)
	log.Fatal(server.ListenAndServe())
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.AgentLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("Request: %s %s", r.Method, r.RequestURI))
			next.ServeHTTP(w, r)
		})
	}
}
