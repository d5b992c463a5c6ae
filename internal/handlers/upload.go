package handlers

import (
	"log"
	"net/http"
	"strings"
)

// allowed upload folders; anything else lands in "misc"
var uploadFolders = map[string]bool{
	"profiles":      true,
	"employees":     true,
	"associations":  true,
	"subscriptions": true,
	"misc":          true,
}

// UploadFile is the generic authenticated image upload. Returns the hosted
// URL; callers attach it to whatever document they are editing.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}

	folder := strings.TrimSpace(r.FormValue("folder"))
	if !uploadFolders[folder] {
		folder = "misc"
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), header, folder)
	if err != nil {
		log.Printf("ERROR: upload to %s: %v", folder, err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
		"folder":  folder,
	})
}
