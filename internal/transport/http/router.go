package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizmaker-service/internal/app"
	"quizmaker-service/internal/logging"
)

// Services are the use cases the router exposes.
type Services struct {
	Auth      *app.AuthService
	Quizzes   *app.QuizService
	Generator *app.GenerateService
	Tokens    TokenVerifier
}

// NewRouter wires every route. CORS and request logging wrap the mux so they
// also see preflight and unmatched requests.
func NewRouter(s Services, log logging.Logger) http.Handler {
	if log == nil {
		log = logging.Nop()
	}
	gate := NewGate(s.Tokens)
	authH := NewAuthHandler(s.Auth, log)
	quizH := NewQuizHandler(s.Quizzes, log)
	genH := NewGenerateHandler(s.Generator, log)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)
	api.Handle("/auth/user", gate.RequireAuth(http.HandlerFunc(authH.Me))).Methods(http.MethodGet)
	api.HandleFunc("/auth/user/{id}", authH.Profile).Methods(http.MethodGet)

	// literal segments first so they are not captured by /quizzes/{id}
	api.HandleFunc("/quizzes/join/{code}", quizH.Join).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/submit-score", quizH.SubmitScore).Methods(http.MethodPost)
	api.Handle("/quizzes/get-score/{id}", gate.RequireAuth(http.HandlerFunc(quizH.GetScores))).Methods(http.MethodGet)
	api.Handle("/quizzes", gate.RequireAuth(http.HandlerFunc(quizH.Create))).Methods(http.MethodPost)
	api.Handle("/quizzes", gate.RequireAuth(http.HandlerFunc(quizH.ListMine))).Methods(http.MethodGet)
	api.Handle("/quizzes/{id}", gate.RequireAuth(http.HandlerFunc(quizH.Get))).Methods(http.MethodGet)
	api.Handle("/quizzes/{id}", gate.RequireAuth(http.HandlerFunc(quizH.Update))).Methods(http.MethodPut)
	api.Handle("/quizzes/{id}", gate.RequireAuth(http.HandlerFunc(quizH.Delete))).Methods(http.MethodDelete)

	api.HandleFunc("/generate-quiz", genH.Generate).Methods(http.MethodPost)

	return requestLogger(log, cors(r))
}
