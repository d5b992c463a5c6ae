package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/models"
)

type AssociationRequest struct {
	Name     string          `json:"name"`
	District string          `json:"district"`
	Area     string          `json:"area"`
	Address  *models.Address `json:"address,omitempty"`
	Logo     string          `json:"logo,omitempty"` // base64 data URL
	IsActive *bool           `json:"isActive,omitempty"`
}

// ListAssociations is the public directory; inactive entries are hidden
// unless the caller asks for all.
func ListAssociations(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{"isActive": true}
	if r.URL.Query().Get("all") == "true" {
		filter = bson.M{}
	}
	if district := strings.TrimSpace(r.URL.Query().Get("district")); district != "" {
		filter["district"] = primitive.Regex{Pattern: district, Options: "i"}
	}

	cur, err := database.DB.Collection(database.ColAssociations).Find(r.Context(), filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load associations")
		return
	}
	defer cur.Close(r.Context())

	associations := []models.Association{}
	if err := cur.All(r.Context(), &associations); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load associations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"count":        len(associations),
		"associations": associations,
	})
}

// CreateAssociation is admin-only; logo upload is best-effort.
func CreateAssociation(w http.ResponseWriter, r *http.Request) {
	var req AssociationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.District == "" {
		writeError(w, http.StatusBadRequest, "Name & district required")
		return
	}

	var warnings []string
	logo := ""
	if req.Logo != "" && cloudinaryService != nil {
		url, err := cloudinaryService.UploadBase64(r.Context(), req.Logo, "associations")
		if err != nil {
			log.Printf("WARNING: association logo upload: %v", err)
			warnings = append(warnings, "logo_upload_failed")
		} else {
			logo = url
		}
	}

	now := time.Now().UTC()
	assoc := models.Association{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      req.Name,
		Logo:      logo,
		District:  req.District,
		Area:      req.Area,
		IsActive:  true,
	}
	if req.Address != nil {
		assoc.Address = *req.Address
	}
	if req.IsActive != nil {
		assoc.IsActive = *req.IsActive
	}

	res, err := database.DB.Collection(database.ColAssociations).InsertOne(r.Context(), assoc)
	if err != nil {
		log.Printf("ERROR: association insert: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create association")
		return
	}
	assoc.ID, _ = res.InsertedID.(primitive.ObjectID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"warnings":    warnings,
		"association": assoc,
	})
}

// UpdateAssociation is admin-only.
func UpdateAssociation(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid association id")
		return
	}

	var req AssociationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if v := strings.TrimSpace(req.Name); v != "" {
		set["name"] = v
	}
	if req.District != "" {
		set["district"] = req.District
	}
	if req.Area != "" {
		set["area"] = req.Area
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if req.Logo != "" && cloudinaryService != nil {
		if url, upErr := cloudinaryService.UploadBase64(r.Context(), req.Logo, "associations"); upErr == nil {
			set["logo"] = url
		} else {
			log.Printf("WARNING: association logo upload: %v", upErr)
		}
	}

	var assoc models.Association
	err = database.DB.Collection(database.ColAssociations).FindOneAndUpdate(r.Context(),
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&assoc)
	if err != nil {
		writeError(w, http.StatusNotFound, "Association not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "association": assoc})
}

// DeleteAssociation deactivates rather than removes, so member references
// stay resolvable.
func DeleteAssociation(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid association id")
		return
	}

	res, err := database.DB.Collection(database.ColAssociations).UpdateOne(r.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete association")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Association not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Association deactivated"})
}
