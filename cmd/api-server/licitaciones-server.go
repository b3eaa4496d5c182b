package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"licitaciones/db"
	"licitaciones/db/migrations"
	"licitaciones/internal/handlers"
)

func main() {
	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		log.Fatal("POSTGRES_CONN env variable is not set")
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	migrations.Run()

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// licitaciones
		r.Post("/licitaciones/new", h.CreateLicitacionHandler)
		r.Get("/licitaciones", h.GetLicitacionesHandler)
		r.Get("/licitaciones/{licId}", h.GetLicitacionHandler)
		r.Patch("/licitaciones/{licId}/edit", h.EditLicitacionHandler)
		r.Put("/licitaciones/{licId}/estado", h.ChangeEstadoHandler)
		r.Delete("/licitaciones/{licId}", h.DeleteLicitacionHandler)
		r.Put("/licitaciones/{licId}/oferentes", h.ReplaceOferentesHandler)
		r.Patch("/licitaciones/{licId}/documentos/{docId}", h.EditDocumentoHandler)
		// vistas calculadas
		r.Get("/licitaciones/{licId}/analisis/paquetes", h.AnalisisPaquetesHandler)
		r.Get("/licitaciones/{licId}/resumen", h.ResumenHandler)
		r.Get("/kpis", h.KPIsHandler)
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	log.Printf("Starting server on %s", serverAddr)
	log.Fatal(http.ListenAndServe(serverAddr, r))
}
