package handlers

import (
	"net/http"
	"runtime"
)

// BuildInfo is reported by GET /version. Values are injected with -ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// VersionHandler returns a handler that reports info.
func VersionHandler(info BuildInfo) http.HandlerFunc {
	if info.Version == "" {
		info.Version = "dev"
	}
	info.GoVersion = runtime.Version()
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}
