package http

import (
	"net/http"

	"quizmaker-service/internal/app"
	"quizmaker-service/internal/logging"
)

type GenerateHandler struct {
	service *app.GenerateService
	log     logging.Logger
}

func NewGenerateHandler(service *app.GenerateService, log logging.Logger) *GenerateHandler {
	return &GenerateHandler{service: service, log: log}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	quiz, err := h.service.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
