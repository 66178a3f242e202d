package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handlePlaceholder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		png, err := s.placeholder.PNG(r.URL.Query().Get("text"))
		if err != nil {
			s.logger.Error("render placeholder failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
