package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/middleware"
	"github.com/tnma-app/membership-backend/internal/models"
)

var monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type UpsertSubscriptionRequest struct {
	MemberID           string  `json:"memberId"`
	MonthKey           string  `json:"monthKey"`
	SubscriptionAmount float64 `json:"subscriptionAmount"`
	MeetingAmount      float64 `json:"meetingAmount"`
	Status             string  `json:"status,omitempty"`
	PaidDate           string  `json:"paidDate,omitempty"` // RFC 3339, defaults to now
	AttachmentURL      string  `json:"attachmentUrl,omitempty"`
	Notes              string  `json:"notes,omitempty"`
}

// UpsertSubscription records a member's dues for one month. One record per
// (member, monthKey); repeated submissions replace the month's record.
func UpsertSubscription(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)

	var req UpsertSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid member id")
		return
	}
	if !monthKeyRegex.MatchString(req.MonthKey) {
		writeError(w, http.StatusBadRequest, "monthKey must be YYYY-MM")
		return
	}

	status := req.Status
	if status == "" {
		status = models.SubscriptionPaid
	}
	if status != models.SubscriptionPaid && status != models.SubscriptionFailed {
		writeError(w, http.StatusBadRequest, "Status must be PAID or FAILED")
		return
	}

	paidDate := time.Now().UTC()
	if req.PaidDate != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.PaidDate)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "paidDate must be RFC 3339")
			return
		}
		paidDate = parsed.UTC()
	}

	count, err := database.DB.Collection(database.ColUsers).
		CountDocuments(r.Context(), bson.M{"_id": memberID})
	if err != nil || count == 0 {
		writeError(w, http.StatusNotFound, "Member not found")
		return
	}

	now := time.Now().UTC()
	adminID := p.ID
	update := bson.M{
		"$set": bson.M{
			"subscriptionAmount": req.SubscriptionAmount,
			"meetingAmount":      req.MeetingAmount,
			"status":             status,
			"paidDate":           paidDate,
			"createdBy":          &adminID,
			"attachmentUrl":      req.AttachmentURL,
			"notes":              req.Notes,
			"updatedAt":          now,
		},
		"$setOnInsert": bson.M{
			"member":    memberID,
			"monthKey":  req.MonthKey,
			"createdAt": now,
		},
	}

	var sub models.Subscription
	err = database.DB.Collection(database.ColSubscriptions).FindOneAndUpdate(r.Context(),
		bson.M{"member": memberID, "monthKey": req.MonthKey},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&sub)
	if err != nil {
		log.Printf("ERROR: subscription upsert: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to record subscription")
		return
	}

	log.Printf("✅ SUBSCRIPTION %s %s -> %s", memberID.Hex(), req.MonthKey, status)

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "subscription": sub})
}

// GetMySubscriptions lists the caller's own dues records, newest month first.
func GetMySubscriptions(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)
	if p.IsEmployee() {
		writeError(w, http.StatusForbidden, "Employees have no subscription records")
		return
	}
	listSubscriptions(w, r, p.ID)
}

// GetMemberSubscriptions is the admin view of one member's dues.
func GetMemberSubscriptions(w http.ResponseWriter, r *http.Request) {
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid member id")
		return
	}
	listSubscriptions(w, r, memberID)
}

func listSubscriptions(w http.ResponseWriter, r *http.Request, memberID primitive.ObjectID) {
	cur, err := database.DB.Collection(database.ColSubscriptions).Find(r.Context(),
		bson.M{"member": memberID},
		options.Find().SetSort(bson.D{{Key: "monthKey", Value: -1}}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load subscriptions")
		return
	}
	defer cur.Close(r.Context())

	subs := []models.Subscription{}
	if err := cur.All(r.Context(), &subs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load subscriptions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"count":         len(subs),
		"subscriptions": subs,
	})
}

// GetSubscriptionsByMonth is the admin ledger for one month across members.
func GetSubscriptionsByMonth(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "monthKey")
	if !monthKeyRegex.MatchString(monthKey) {
		writeError(w, http.StatusBadRequest, "monthKey must be YYYY-MM")
		return
	}

	cur, err := database.DB.Collection(database.ColSubscriptions).Find(r.Context(),
		bson.M{"monthKey": monthKey},
		options.Find().SetSort(bson.D{{Key: "paidDate", Value: -1}}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load subscriptions")
		return
	}
	defer cur.Close(r.Context())

	subs := []models.Subscription{}
	if err := cur.All(r.Context(), &subs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load subscriptions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"monthKey":      monthKey,
		"count":         len(subs),
		"subscriptions": subs,
	})
}
