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

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/middleware"
	"github.com/tnma-app/membership-backend/internal/models"
	"github.com/tnma-app/membership-backend/pkg/qr"
	"github.com/tnma-app/membership-backend/pkg/utils"
)

type CreateEmployeeRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Pin    string `json:"pin"`
	Avatar string `json:"avatar,omitempty"` // base64 data URL, optional
}

// CreateEmployee adds an Active employee under the calling owner, snapshotting
// the owner's shop fields. Avatar upload and QR generation are best-effort.
func CreateEmployee(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)
	if p.IsEmployee() {
		writeError(w, http.StatusForbidden, "Only owners can manage employees")
		return
	}

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Mobile = strings.TrimSpace(req.Mobile)
	if req.Name == "" || req.Mobile == "" || req.Pin == "" {
		writeError(w, http.StatusBadRequest, "Name, mobile & pin required")
		return
	}
	if !utils.ValidPin(req.Pin) {
		writeError(w, http.StatusBadRequest, "PIN must be 4 to 6 digits")
		return
	}

	var owner models.User
	if err := database.DB.Collection(database.ColUsers).
		FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&owner); err != nil {
		writeError(w, http.StatusNotFound, "Owner account not found")
		return
	}

	employees := database.DB.Collection(database.ColEmployees)

	count, err := employees.CountDocuments(r.Context(), bson.M{
		"mobile": req.Mobile,
		"status": models.StatusActive,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "An active employee with this mobile already exists")
		return
	}

	pinHash, err := utils.HashPassword(req.Pin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	var warnings []string

	avatar := ""
	if req.Avatar != "" && cloudinaryService != nil {
		url, upErr := cloudinaryService.UploadBase64(r.Context(), req.Avatar, "employees")
		if upErr != nil {
			log.Printf("WARNING: employee avatar upload: %v", upErr)
			warnings = append(warnings, "avatar_upload_failed")
		} else {
			avatar = url
		}
	}

	now := time.Now().UTC()
	ownerID := owner.ID
	emp := models.Employee{
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        req.Name,
		Mobile:      req.Mobile,
		Avatar:      avatar,
		ShopName:    owner.ShopName,
		ShopAddress: owner.ShopAddress,
		PinHash:     pinHash,
		Owner:       &ownerID,
		Role:        models.RoleEmployee,
		Status:      models.StatusActive,
	}

	res, err := employees.InsertOne(r.Context(), emp)
	if err != nil {
		log.Printf("ERROR: employee insert: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}
	emp.ID, _ = res.InsertedID.(primitive.ObjectID)

	qrURL, qrErr := qr.EncodeDataURL(qr.Payload{
		Type:     qr.TypeEmployee,
		ID:       emp.ID.Hex(),
		Name:     emp.Name,
		ShopName: emp.ShopName,
	})
	if qrErr != nil {
		log.Printf("WARNING: employee QR generate: %v", qrErr)
		warnings = append(warnings, "qr_generation_failed")
	} else {
		emp.QRCodeURL = qrURL
		if _, err := employees.UpdateOne(r.Context(), bson.M{"_id": emp.ID},
			bson.M{"$set": bson.M{"qrCodeUrl": qrURL}}); err != nil {
			log.Printf("WARNING: cache employee QR: %v", err)
		}
	}

	log.Printf("✅ EMPLOYEE created: %s (owner %s)", emp.ID.Hex(), owner.ID.Hex())

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Employee created",
		"warnings": warnings,
		"employee": emp,
	})
}

// GetMyEmployees lists the calling owner's employees, newest first.
func GetMyEmployees(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)
	if p.IsEmployee() {
		writeError(w, http.StatusForbidden, "Only owners can manage employees")
		return
	}

	cur, err := database.DB.Collection(database.ColEmployees).Find(r.Context(),
		bson.M{"owner": p.ID},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employees")
		return
	}
	defer cur.Close(r.Context())

	employees := []models.Employee{}
	if err := cur.All(r.Context(), &employees); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employees")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"count":     len(employees),
		"employees": employees,
	})
}

type UpdateEmployeeRequest struct {
	Name   *string `json:"name,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
	Pin    *string `json:"pin,omitempty"`
	Status *string `json:"status,omitempty"`
}

// UpdateEmployee patches an employee the caller owns. Setting status to
// Inactive revokes the employee's login and scan surface in one step.
func UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)
	if p.IsEmployee() {
		writeError(w, http.StatusForbidden, "Only owners can manage employees")
		return
	}

	empID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id")
		return
	}

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil && *req.Name != "" {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Mobile != nil && *req.Mobile != "" {
		set["mobile"] = strings.TrimSpace(*req.Mobile)
	}
	if req.Pin != nil && *req.Pin != "" {
		if !utils.ValidPin(*req.Pin) {
			writeError(w, http.StatusBadRequest, "PIN must be 4 to 6 digits")
			return
		}
		hash, hashErr := utils.HashPassword(*req.Pin)
		if hashErr != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update employee")
			return
		}
		set["pinHash"] = hash
	}
	if req.Status != nil {
		if *req.Status != models.StatusActive && *req.Status != models.StatusInactive {
			writeError(w, http.StatusBadRequest, "Status must be Active or Inactive")
			return
		}
		set["status"] = *req.Status
	}

	filter := bson.M{"_id": empID}
	if !p.IsAdmin() {
		filter["owner"] = p.ID
	}

	res, err := database.DB.Collection(database.ColEmployees).UpdateOne(r.Context(), filter, bson.M{"$set": set})
	if err != nil {
		log.Printf("ERROR: employee update: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update employee")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Employee updated"})
}
