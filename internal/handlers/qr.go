package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/middleware"
	"github.com/tnma-app/membership-backend/internal/models"
	"github.com/tnma-app/membership-backend/internal/services"
	"github.com/tnma-app/membership-backend/pkg/qr"
)

type ScanQrRequest struct {
	Raw        string `json:"raw"`
	QRData     string `json:"qrData,omitempty"` // legacy alias for raw
	ActionType string `json:"actionType,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (r *ScanQrRequest) payload() string {
	if r.Raw != "" {
		return r.Raw
	}
	return r.QRData
}

// ScanQr resolves a scanned payload to a target principal, runs the
// verification gate, and appends a ledger event.
//
// The ledger write is best-effort: the scan itself still succeeds when the
// insert fails, with historyId null and a warning so the client can tell.
func ScanQr(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)

	var req ScanQrRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.payload() == "" {
		writeCodeError(w, http.StatusBadRequest, services.CodeInvalidQr, "raw is required")
		return
	}

	if block := services.ScannerBlock(p); block != nil {
		writeCodeError(w, block.Status, block.Code, block.Message)
		return
	}

	decoded := qr.Decode(req.payload())

	targetID, err := primitive.ObjectIDFromHex(decoded.IDCandidate)
	if err != nil {
		writeCodeError(w, http.StatusBadRequest, services.CodeInvalidQr, "QR payload does not contain a usable id")
		return
	}

	users := database.DB.Collection(database.ColUsers)
	employees := database.DB.Collection(database.ColEmployees)

	// Type-directed resolution. An untyped payload is treated as an owner id
	// but misses report INVALID_QR, since the candidate was only a guess.
	var targetOwner *models.User
	var targetEmployee *models.Employee

	switch decoded.Type {
	case qr.TypeEmployee:
		var emp models.Employee
		if err := employees.FindOne(r.Context(), bson.M{"_id": targetID}).Decode(&emp); err != nil {
			writeCodeError(w, http.StatusNotFound, services.CodeEmployeeNotFound, "Employee not found for this QR code")
			return
		}
		targetEmployee = &emp
	case qr.TypeOwner:
		var owner models.User
		if err := users.FindOne(r.Context(), bson.M{"_id": targetID}).Decode(&owner); err != nil {
			writeCodeError(w, http.StatusNotFound, services.CodeOwnerNotFound, "Member not found for this QR code")
			return
		}
		targetOwner = &owner
	default:
		var owner models.User
		if err := users.FindOne(r.Context(), bson.M{"_id": targetID}).Decode(&owner); err != nil {
			writeCodeError(w, http.StatusNotFound, services.CodeInvalidQr, "Invalid or unsupported QR code.")
			return
		}
		targetOwner = &owner
	}

	// The employee's parent owner is needed by both the gate and the ledger.
	var parentOwner *models.User
	if targetEmployee != nil && targetEmployee.Owner != nil {
		var o models.User
		if err := users.FindOne(r.Context(), bson.M{"_id": *targetEmployee.Owner}).Decode(&o); err == nil {
			parentOwner = &o
		}
	}

	if block := services.TargetBlock(targetOwner, targetEmployee, parentOwner); block != nil {
		writeCodeError(w, block.Status, block.Code, block.Message)
		return
	}

	// The opposite ledger party is always owner-shaped, snapshotted from the
	// stored documents only. Payload-carried names never reach the ledger.
	opposite, ok := services.OppositeParty(targetOwner, targetEmployee, parentOwner)
	if !ok {
		writeCodeError(w, http.StatusBadRequest, services.CodeInvalidTarget,
			"This employee QR is not linked to a shop.")
		return
	}
	targetType := qr.TypeOwner
	if targetEmployee != nil {
		targetType = qr.TypeEmployee
	}

	scanner := services.Party{
		ID:       p.ID,
		Name:     p.Name,
		ShopName: p.ShopName,
	}

	actionType := models.NormalizeAction(req.ActionType)

	var warnings []string
	var historyID interface{}
	eventID, err := services.RecordScan(r.Context(), scanner, opposite, actionType, req.Notes)
	if err != nil {
		// availability over durability, surfaced rather than swallowed
		log.Printf("WARNING: scan ledger write failed: %v", err)
		warnings = append(warnings, "history_not_recorded")
		historyID = nil
	} else {
		historyID = eventID.Hex()
	}

	data := map[string]interface{}{
		"historyId":  historyID,
		"actionType": actionType,
		"targetType": targetType,
	}
	if targetOwner != nil {
		data["owner"] = map[string]interface{}{
			"id":       targetOwner.ID.Hex(),
			"name":     targetOwner.Name,
			"shopName": targetOwner.ShopName,
			"avatar":   targetOwner.Avatar,
			"mobile":   targetOwner.Mobile,
		}
	} else {
		data["employee"] = map[string]interface{}{
			"id":       targetEmployee.ID.Hex(),
			"name":     targetEmployee.Name,
			"shopName": targetEmployee.ShopName,
			"avatar":   targetEmployee.Avatar,
			"ownerId":  parentOwner.ID.Hex(),
		}
	}

	log.Printf("✅ SCAN %s by %s -> %s", actionType, p.ID.Hex(), targetID.Hex())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"code":     services.CodeScanOk,
		"message":  "Scan recorded",
		"warnings": warnings,
		"data":     data,
	})
}

// GetMyQr returns the caller's QR code, generating and caching it on first use.
// Unverified shops cannot hand out a scannable code.
func GetMyQr(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)

	if p.IsEmployee() {
		employees := database.DB.Collection(database.ColEmployees)

		var emp models.Employee
		if err := employees.FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&emp); err != nil {
			writeError(w, http.StatusNotFound, "Employee record not found.")
			return
		}

		var parentOwner *models.User
		if emp.Owner != nil {
			var o models.User
			if err := database.DB.Collection(database.ColUsers).
				FindOne(r.Context(), bson.M{"_id": *emp.Owner}).Decode(&o); err == nil {
				parentOwner = &o
			}
		}
		if parentOwner == nil || !parentOwner.IsProfileVerified {
			writeCodeError(w, http.StatusForbidden, services.CodeOwnerNotVerified,
				"Your shop is not verified yet. QR is temporarily blocked.")
			return
		}

		if emp.QRCodeURL == "" {
			qrURL, err := qr.EncodeDataURL(qr.Payload{
				Type:     qr.TypeEmployee,
				ID:       emp.ID.Hex(),
				Name:     emp.Name,
				ShopName: emp.ShopName,
			})
			if err != nil {
				log.Printf("ERROR: QR generate (employee): %v", err)
				writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
				return
			}
			emp.QRCodeURL = qrURL
			if _, err := employees.UpdateOne(r.Context(), bson.M{"_id": emp.ID},
				bson.M{"$set": bson.M{"qrCodeUrl": qrURL}}); err != nil {
				log.Printf("WARNING: cache employee QR: %v", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"qrCodeUrl": emp.QRCodeURL,
			"type":      qr.TypeEmployee,
		})
		return
	}

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	if err := users.FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&user); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if !user.IsProfileVerified {
		writeCodeError(w, http.StatusForbidden, services.CodeOwnerNotVerified,
			"Your shop profile is not verified yet.")
		return
	}

	if user.QRCodeURL == "" {
		qrURL, err := qr.EncodeDataURL(qr.Payload{
			Type:     qr.TypeOwner,
			ID:       user.ID.Hex(),
			Name:     user.Name,
			ShopName: user.ShopName,
		})
		if err != nil {
			log.Printf("ERROR: QR generate (owner): %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
			return
		}
		user.QRCodeURL = qrURL
		if _, err := users.UpdateOne(r.Context(), bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{"qrCodeUrl": qrURL}}); err != nil {
			log.Printf("WARNING: cache owner QR: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"qrCodeUrl": user.QRCodeURL,
		"type":      qr.TypeOwner,
	})
}

// GetScanHistory returns the caller's ledger rows projected to SENDER/RECEIVER.
func GetScanHistory(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)

	limit := int64(services.HistoryDefaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	selfIDs, err := services.SelfIDs(r.Context(), p)
	if err != nil {
		log.Printf("ERROR: history self ids: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	events, err := services.FetchHistory(r.Context(), selfIDs, limit)
	if err != nil {
		log.Printf("ERROR: history fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	items := services.ProjectHistory(events, selfIDs)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(items),
		"history": items,
	})
}
