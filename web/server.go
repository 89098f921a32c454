package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/dae_exporter/config"
)

// ServerOptions are the export defaults requests start from.
var ServerOptions = config.Default()

var sceneContentTypes = []string{
	"application/x-yaml",
	"application/yaml",
	"text/yaml",
	"text/plain",
	"multipart/form-data",
}

func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/export/{format}",
		handlers.ContentTypeHandler(http.HandlerFunc(HandlerExport), sceneContentTypes...)).Methods("POST")
	r.HandleFunc("/json/formats", HandlerFormats).Methods("GET")
	r.HandleFunc("/json/encodings", HandlerEncodings).Methods("GET")
	r.HandleFunc("/ws/status", HandlerStatus)
	return r
}

func StartServer(addr string, opts config.Options) error {
	ServerOptions = opts

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter())
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
