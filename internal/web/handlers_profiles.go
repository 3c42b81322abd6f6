package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/store"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []store.Profile{}
	}
	writeJSON(w, map[string][]store.Profile{"profiles": profiles})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// handlePutProfile creates or replaces a profile. The body is the profile's
// table options.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := store.ValidateName(name); err != nil {
		respondError(w, r, err)
		return
	}

	var opts widget.Options
	if err := s.decodeJSON(w, r, &opts); err != nil {
		respondError(w, r, err)
		return
	}
	if err := opts.Normalize(); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := s.profiles.Put(r.Context(), store.Profile{Name: name, Options: opts})
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "profile", p.Name).Info("profile stored")
	writeJSON(w, p)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.profiles.Delete(r.Context(), name); err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "profile", name).Info("profile deleted")
	w.WriteHeader(http.StatusNoContent)
}
