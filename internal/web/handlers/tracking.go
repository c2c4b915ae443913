package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ptcli/internal/features/tracking"
)

// Health handles the /health endpoint
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Projects handles GET /project and GET /projects
func Projects(service *tracking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := service.ListProjects(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to list projects: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	}
}

// Project handles GET /project/<name>
func Project(service *tracking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		project, err := service.GetProject(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

// CreateProject handles GET /admin/create_project/<name>. Creation over GET
// matches the original tracking API, which drove it from a browser link.
func CreateProject(service *tracking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		project, err := service.CreateProject(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	}
}

// Readsets handles GET /project/<name>/readsets
func Readsets(service *tracking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if _, err := service.GetProject(r.Context(), name); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		readsets, err := service.ListReadsets(r.Context(), name)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to list readsets: %v", err), http.StatusInternalServerError)
			return
		}
		if readsets == nil {
			readsets = []tracking.Readset{}
		}
		writeJSON(w, http.StatusOK, readsets)
	}
}

// ingestRequest is the POST /ingest/readsets payload.
type ingestRequest struct {
	Project  string `json:"project"`
	Readsets []struct {
		Sample string `json:"sample"`
		State  string `json:"state"`
	} `json:"readsets"`
}

// IngestReadsets handles POST /ingest/readsets
func IngestReadsets(service *tracking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var req ingestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid ingest payload: %v", err), http.StatusBadRequest)
			return
		}
		if req.Project == "" || len(req.Readsets) == 0 {
			http.Error(w, "Ingest payload needs a project and at least one readset", http.StatusBadRequest)
			return
		}

		ingested := make([]tracking.Readset, 0, len(req.Readsets))
		for _, rs := range req.Readsets {
			readset, err := service.AddReadset(r.Context(), req.Project, rs.Sample, rs.State)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			ingested = append(ingested, *readset)
		}
		writeJSON(w, http.StatusCreated, ingested)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing useful left to do.
		fmt.Printf("Warning: failed to encode response: %v\n", err)
	}
}
