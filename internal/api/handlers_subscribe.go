package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
)

const maxSubscribeBody = 4 << 10

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscribeResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleSubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		body := http.MaxBytesReader(w, r.Body, maxSubscribeBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		sub, err := s.subscribers.Subscribe(r.Context(), req.Email)
		if errors.Is(err, subscriber.ErrEmailRequired) || errors.Is(err, subscriber.ErrInvalidEmail) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			s.logger.Error("subscribe failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		respondJSON(w, http.StatusOK, subscribeResponse{
			Message:   subscriber.SuccessMessage,
			Email:     sub.Email,
			Timestamp: sub.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
}
