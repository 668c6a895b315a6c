package handlers

import "net/http"

// Register регистрирует маршруты API в mux
func Register(mux *http.ServeMux, health *HealthHandler, versions *VersionHandler, conflicts *ConflictHandler) {
	mux.HandleFunc("GET /api/v1/health", health.Health)

	mux.HandleFunc("GET /api/v1/branches", versions.ListBranches)
	mux.HandleFunc("POST /api/v1/branches", versions.CreateBranch)
	mux.HandleFunc("DELETE /api/v1/branches/{name...}", versions.DeleteBranch)
	mux.HandleFunc("POST /api/v1/checkout", versions.Checkout)
	mux.HandleFunc("POST /api/v1/commits", versions.Commit)
	mux.HandleFunc("GET /api/v1/history", versions.History)
	mux.HandleFunc("GET /api/v1/versions/{ref}", versions.GetVersion)
	mux.HandleFunc("GET /api/v1/versions/{ref}/snapshot", versions.Snapshot)
	mux.HandleFunc("GET /api/v1/versions/{ref}/entities/{entity}", versions.GetEntity)
	mux.HandleFunc("POST /api/v1/merge", versions.Merge)
	mux.HandleFunc("GET /api/v1/diff", versions.Diff)
	mux.HandleFunc("GET /api/v1/tags", versions.ListTags)
	mux.HandleFunc("POST /api/v1/tags", versions.CreateTag)
	mux.HandleFunc("GET /api/v1/tags/{name...}", versions.GetTag)

	mux.HandleFunc("POST /api/v1/conflicts/detect", conflicts.Detect)
	mux.HandleFunc("GET /api/v1/conflicts", conflicts.List)
	mux.HandleFunc("POST /api/v1/conflicts/auto-resolve", conflicts.AutoResolve)
	mux.HandleFunc("GET /api/v1/conflicts/stats", conflicts.Stats)
	mux.HandleFunc("POST /api/v1/conflicts/{id}/resolve", conflicts.Resolve)
}
