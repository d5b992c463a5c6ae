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
	"github.com/tnma-app/membership-backend/internal/middleware"
	"github.com/tnma-app/membership-backend/internal/models"
)

const maxUploadMemory = 10 << 20 // 10 MB

// UpdateProfile patches the caller's own profile from a multipart form.
// Text fields arrive as form values, address/shopAddress/shopLocation as JSON
// strings, images as file parts. Derived completeness fields are recomputed
// and persisted in the same write.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)
	if p.IsEmployee() {
		writeError(w, http.StatusForbidden, "Employees cannot edit the shop profile")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	if err := users.FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&user); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	for field, dst := range map[string]*string{
		"name":             &user.Name,
		"mobile":           &user.Mobile,
		"whatsappNumber":   &user.WhatsappNumber,
		"shopName":         &user.ShopName,
		"businessType":     &user.BusinessType,
		"businessCategory": &user.BusinessCategory,
	} {
		if v := strings.TrimSpace(r.FormValue(field)); v != "" {
			*dst = v
		}
	}

	if v := r.FormValue("association"); v != "" {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			user.Association = &id
		}
	}

	if v := r.FormValue("address"); v != "" {
		var addr models.Address
		if err := json.Unmarshal([]byte(v), &addr); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid address JSON")
			return
		}
		user.Address = addr
	}
	if v := r.FormValue("shopAddress"); v != "" {
		var addr models.Address
		if err := json.Unmarshal([]byte(v), &addr); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid shopAddress JSON")
			return
		}
		user.ShopAddress = addr
	}
	if v := r.FormValue("shopLocation"); v != "" {
		var loc models.GeoPoint
		if err := json.Unmarshal([]byte(v), &loc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid shopLocation JSON")
			return
		}
		// (0,0) is the unset sentinel and never a real shop position
		if !loc.Valid() {
			writeError(w, http.StatusBadRequest, "shopLocation must be a real [lng, lat] pair")
			return
		}
		if loc.Type == "" {
			loc.Type = "Point"
		}
		user.ShopLoc = &loc
	}

	var warnings []string
	for field, dst := range map[string]*string{
		"avatar":     &user.Avatar,
		"shopFront":  &user.ShopFront,
		"shopBanner": &user.ShopBanner,
	} {
		_, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		if cloudinaryService == nil {
			warnings = append(warnings, field+"_upload_skipped")
			continue
		}
		url, upErr := cloudinaryService.UploadFileFromHeader(r.Context(), header, "profiles")
		if upErr != nil {
			log.Printf("WARNING: %s upload: %v", field, upErr)
			warnings = append(warnings, field+"_upload_failed")
			continue
		}
		*dst = url
	}

	recomputeDerived(&user)
	user.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":             user.Name,
		"mobile":           user.Mobile,
		"whatsappNumber":   user.WhatsappNumber,
		"avatar":           user.Avatar,
		"association":      user.Association,
		"address":          user.Address,
		"shopName":         user.ShopName,
		"shopAddress":      user.ShopAddress,
		"shopFront":        user.ShopFront,
		"shopBanner":       user.ShopBanner,
		"shopLocation":     user.ShopLoc,
		"businessType":     user.BusinessType,
		"businessCategory": user.BusinessCategory,
		"profilePercent":   user.ProfilePercent,
		"shopCompleted":    user.ShopCompleted,
		"updatedAt":        user.UpdatedAt,
	}}

	if _, err := users.UpdateOne(r.Context(), bson.M{"_id": user.ID}, update); err != nil {
		log.Printf("ERROR: profile update: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	log.Printf("✅ PROFILE updated: %s (%d%%)", user.ID.Hex(), user.ProfilePercent)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Profile updated",
		"warnings": warnings,
		"user":     user,
	})
}

// GetAllUsers is the admin directory listing with an optional name/shop/email
// substring filter.
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		re := primitive.Regex{Pattern: q, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"shopName": re},
			bson.M{"email": re},
		}
	}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}

	cur, err := database.DB.Collection(database.ColUsers).Find(r.Context(), filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	defer cur.Close(r.Context())

	users := []models.User{}
	if err := cur.All(r.Context(), &users); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// GetUserByID returns a single user for the admin console.
func GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var user models.User
	if err := database.DB.Collection(database.ColUsers).
		FindOne(r.Context(), bson.M{"_id": id}).Decode(&user); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

type AdminUpdateUserRequest struct {
	Name              *string `json:"name,omitempty"`
	Role              *string `json:"role,omitempty"`
	Status            *string `json:"status,omitempty"`
	IsProfileVerified *bool   `json:"isProfileVerified,omitempty"`
}

// UpdateUser is the admin mutation endpoint; flipping isProfileVerified here
// is what unlocks a shop's QR surface.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil && *req.Name != "" {
		set["name"] = *req.Name
	}
	if req.Role != nil {
		if *req.Role != models.RoleOwner && *req.Role != models.RoleAdmin {
			writeError(w, http.StatusBadRequest, "Role must be OWNER or ADMIN")
			return
		}
		set["role"] = *req.Role
	}
	if req.Status != nil {
		if *req.Status != models.StatusActive && *req.Status != models.StatusInactive {
			writeError(w, http.StatusBadRequest, "Status must be Active or Inactive")
			return
		}
		set["status"] = *req.Status
	}
	if req.IsProfileVerified != nil {
		set["isProfileVerified"] = *req.IsProfileVerified
	}

	var user models.User
	err = database.DB.Collection(database.ColUsers).FindOneAndUpdate(r.Context(),
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	log.Printf("✅ ADMIN updated user %s", id.Hex())

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// DeleteUser removes a user and deactivates any employees they own, so no
// orphaned employee keeps a live login against a dangling owner reference.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	res, err := database.DB.Collection(database.ColUsers).DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	upd, err := database.DB.Collection(database.ColEmployees).UpdateMany(r.Context(),
		bson.M{"owner": id},
		bson.M{"$set": bson.M{"status": models.StatusInactive, "updatedAt": time.Now().UTC()}})
	if err != nil {
		log.Printf("WARNING: deactivate employees of %s: %v", id.Hex(), err)
	} else if upd.ModifiedCount > 0 {
		log.Printf("⚠️ deactivated %d employees of deleted owner %s", upd.ModifiedCount, id.Hex())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "User deleted"})
}

// GetUserByMobile is the public directory lookup used by the mobile client.
// Only non-sensitive display fields are returned.
func GetUserByMobile(w http.ResponseWriter, r *http.Request) {
	mobile := strings.TrimSpace(chi.URLParam(r, "mobile"))
	if mobile == "" {
		writeError(w, http.StatusBadRequest, "Mobile is required")
		return
	}

	var user models.User
	if err := database.DB.Collection(database.ColUsers).
		FindOne(r.Context(), bson.M{"mobile": mobile}).Decode(&user); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":                 user.ID.Hex(),
			"name":               user.Name,
			"shopName":           user.ShopName,
			"avatar":             user.Avatar,
			"businessType":       user.BusinessType,
			"businessCategory":   user.BusinessCategory,
			"registrationNumber": user.RegistrationNumber,
			"isProfileVerified":  user.IsProfileVerified,
		},
	})
}
