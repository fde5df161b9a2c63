package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizmaker-service/internal/app"
	"quizmaker-service/internal/domain"
	"quizmaker-service/internal/logging"
)

type QuizHandler struct {
	service *app.QuizService
	log     logging.Logger
}

func NewQuizHandler(service *app.QuizService, log logging.Logger) *QuizHandler {
	return &QuizHandler{service: service, log: log}
}

type quizRequest struct {
	Title       string            `json:"title"`
	GradeLevel  string            `json:"gradeLevel"`
	Description string            `json:"description"`
	Questions   []domain.Question `json:"questions"`
}

// quizPatchRequest distinguishes absent fields from empty ones.
type quizPatchRequest struct {
	Title       *string            `json:"title"`
	GradeLevel  *string            `json:"gradeLevel"`
	Description *string            `json:"description"`
	Questions   *[]domain.Question `json:"questions"`
}

type submitScoreRequest struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
	Score  *int   `json:"score"`
}

type scoreResponse struct {
	Score int `json:"score"`
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	caller, _ := IdentityFromContext(r.Context())
	quiz, err := h.service.Create(r.Context(), caller, domain.QuizInput{
		Title:       req.Title,
		GradeLevel:  req.GradeLevel,
		Description: req.Description,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFromContext(r.Context())
	quizzes, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// Join is public. The quiz goes out with correctness flags; grading happens client side.
func (h *QuizHandler) Join(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetByJoinCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFromContext(r.Context())
	quiz, err := h.service.Get(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req quizPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	caller, _ := IdentityFromContext(r.Context())
	quiz, err := h.service.Update(r.Context(), caller, mux.Vars(r)["id"], domain.QuizPatch{
		Title:       req.Title,
		GradeLevel:  req.GradeLevel,
		Description: req.Description,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Quiz removed")
}

func (h *QuizHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	score, err := h.service.SubmitScore(r.Context(), req.Code, req.UserID, req.Score)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (h *QuizHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFromContext(r.Context())
	participants, err := h.service.GetScores(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}
