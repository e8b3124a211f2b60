package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router bundles the handlers mounted by NewRouter
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Browse     *BrowseHandler
	Study      *StudyHandler
	Admin      *AdminHandler
	Startup    *StartupStatus
	// AudioDir is served under /audio/ when set
	AudioDir string
}

// NewRouter registers every route and wraps the mux with request logging
func NewRouter(rt Router) http.Handler {
	mux := http.NewServeMux()
	m := rt.Middleware

	// Ops
	mux.HandleFunc("GET /healthz", rt.Startup.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	if rt.AudioDir != "" {
		mux.Handle("GET /audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(rt.AudioDir))))
	}

	// Browse
	learner := m.EnsureLearner
	mux.HandleFunc("GET /api/vocabs", learner(rt.Browse.ListVocabs))
	mux.HandleFunc("GET /api/vocabs/{id}", learner(rt.Browse.GetVocab))
	mux.HandleFunc("GET /api/vocabs/{id}/words", learner(rt.Browse.GetWordsPage))
	mux.HandleFunc("GET /api/classrooms/{id}", learner(rt.Browse.GetClassroom))

	// Study
	study := func(next http.HandlerFunc) http.HandlerFunc {
		return m.EnsureLearner(m.CSRFProtect(next))
	}
	mux.HandleFunc("POST /api/study/sessions", study(rt.Study.StartSession))
	mux.HandleFunc("GET /api/study/session", study(rt.Study.GetSession))
	mux.HandleFunc("DELETE /api/study/session", study(rt.Study.EndSession))
	mux.HandleFunc("POST /api/study/session/direction", study(rt.Study.ChooseDirection))
	mux.HandleFunc("POST /api/study/session/batch", study(rt.Study.ChooseBatch))
	mux.HandleFunc("PUT /api/study/session/inputs/{pos}", study(rt.Study.SetInput))
	mux.HandleFunc("POST /api/study/session/inputs/{pos}/backspace", study(rt.Study.Backspace))
	mux.HandleFunc("POST /api/study/session/check", study(rt.Study.Check))
	mux.HandleFunc("POST /api/study/session/reveal", study(rt.Study.Reveal))
	mux.HandleFunc("POST /api/study/session/advance", study(rt.Study.Advance))
	mux.HandleFunc("POST /api/study/session/retreat", study(rt.Study.Retreat))
	mux.HandleFunc("POST /api/study/session/known", study(rt.Study.MarkKnown))
	mux.HandleFunc("POST /api/study/session/unknown", study(rt.Study.MarkUnknown))
	mux.HandleFunc("POST /api/study/session/pronounce", study(rt.Study.Pronounce))
	mux.HandleFunc("POST /api/study/session/toggle-direction", study(rt.Study.ToggleDirection))
	mux.HandleFunc("POST /api/study/session/reset", study(rt.Study.Reset))
	mux.HandleFunc("POST /api/study/session/bookmark", study(rt.Study.ToggleBookmark))
	mux.HandleFunc("GET /api/study/history", study(rt.Study.History))

	// Auth
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("GET /api/auth/me", m.RequireAdmin(rt.Auth.Me))
	mux.HandleFunc("POST /api/auth/password", m.RequireAdmin(rt.Auth.ChangePassword))

	// Admin
	mux.HandleFunc("POST /api/admin/vocabs", m.RequireAdmin(rt.Admin.CreateVocab))
	mux.HandleFunc("PUT /api/admin/vocabs/{id}", m.RequireAdmin(rt.Admin.UpdateVocab))
	mux.HandleFunc("DELETE /api/admin/vocabs/{id}", m.RequireAdmin(rt.Admin.DeleteVocab))
	mux.HandleFunc("POST /api/admin/vocabs/{id}/words", m.RequireAdmin(rt.Admin.AddWords))
	mux.HandleFunc("PUT /api/admin/words/{id}", m.RequireAdmin(rt.Admin.UpdateWord))
	mux.HandleFunc("DELETE /api/admin/words/{id}", m.RequireAdmin(rt.Admin.DeleteWord))
	mux.HandleFunc("GET /api/admin/classrooms", m.RequireAdmin(rt.Admin.ListClassrooms))
	mux.HandleFunc("POST /api/admin/classrooms", m.RequireAdmin(rt.Admin.CreateClassroom))
	mux.HandleFunc("PUT /api/admin/classrooms/{id}", m.RequireAdmin(rt.Admin.UpdateClassroom))
	mux.HandleFunc("DELETE /api/admin/classrooms/{id}", m.RequireAdmin(rt.Admin.DeleteClassroom))
	mux.HandleFunc("PUT /api/admin/classrooms/{id}/vocabs", m.RequireAdmin(rt.Admin.SetClassroomVocabs))
	mux.HandleFunc("GET /api/admin/backup", m.RequireAdmin(rt.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/backup", m.RequireAdmin(rt.Admin.ImportDatabase))

	// Wrap with logging middleware
	return Logging(mux)
}
