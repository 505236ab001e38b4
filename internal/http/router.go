package http

import (
	"net/http"
	"strconv"

	"quill/internal/ai"
	"quill/internal/auth"
	"quill/internal/book"
	"quill/internal/config"
	"quill/internal/engine"
	"quill/internal/export"
	"quill/internal/http/handler"
	mw "quill/internal/http/middleware"
	"quill/internal/live"
	"quill/internal/voice"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, SecureCookie: cfg.SecureCookies}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/logout", ah.Logout)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	books := &book.Service{DB: db}
	client := &ai.Client{
		APIKey: cfg.OpenRouterAPIKey,
		URL:    cfg.OpenRouterURL,
		Model:  cfg.ChatModel,
	}
	prompt := &ai.PromptBuilder{Books: books}
	exports := &export.Renderer{Dir: cfg.ExportDir}
	hub := live.NewHub(log)
	eng := &engine.Engine{Books: books, Summ: client, Exports: exports, Notify: hub}
	synth := &voice.Synthesizer{APIKey: cfg.ElevenLabsAPIKey}

	stateH := &handler.StateHandler{Svc: books, Engine: eng}
	chapterH := &handler.ChapterHandler{Svc: books}
	paragraphH := &handler.ParagraphHandler{Svc: books}
	taskH := &handler.TaskHandler{Svc: books}
	noteH := &handler.NoteHandler{Svc: books}
	sessionH := &handler.SessionHandler{Svc: books, Summ: client}
	chatH := &handler.ChatHandler{Svc: books, Prompt: prompt, Client: client, Hub: hub, Log: log}
	actionH := &handler.ActionHandler{Svc: books, Engine: eng, Hub: hub, Log: log}
	compactH := &handler.CompactHandler{Svc: books, Summ: client}
	ttsH := &handler.TTSHandler{Synth: synth}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/state", stateH.State)

		r.Post("/chapters", chapterH.Create)
		r.Get("/chapters/{id}", chapterH.Get)
		r.Patch("/chapters/{id}", chapterH.Patch)

		r.Post("/paragraphs", paragraphH.Create)
		r.Patch("/paragraphs/{id}", paragraphH.Patch)
		r.Patch("/paragraphs/{id}/move", paragraphH.Move)
		r.Post("/paragraphs/{id}/undo", paragraphH.Undo)

		r.Get("/tasks", taskH.List)
		r.Post("/tasks", taskH.Create)
		r.Patch("/tasks/{id}", taskH.Patch)

		r.Get("/books/{bookID}/notes/{key}", noteH.Get)
		r.Put("/books/{bookID}/notes/{key}", noteH.Put)

		r.Post("/sessions", sessionH.Create)
		r.Patch("/sessions/{id}", sessionH.Patch)
		r.Post("/sessions/{id}/wrap", sessionH.Wrap)
		r.Post("/sessions/{id}/compact", compactH.Compact)

		r.Post("/chat", chatH.Stream)
		r.Post("/actions", actionH.Execute)
		r.Post("/tts", ttsH.Speak)

		r.Get("/live", func(w http.ResponseWriter, req *http.Request) {
			bookID, err := strconv.ParseUint(req.URL.Query().Get("book_id"), 10, 64)
			if err != nil {
				http.Error(w, "book_id required", http.StatusBadRequest)
				return
			}
			hub.Serve(w, req, bookID)
		})
	})

	fs := http.StripPrefix("/exports/", http.FileServer(http.Dir(cfg.ExportDir)))
	r.With(auth.RequireAuth(jwtSvc)).Get("/exports/*", fs.ServeHTTP)

	return r
}
