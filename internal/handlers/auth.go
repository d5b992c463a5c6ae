package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/api/idtoken"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/middleware"
	"github.com/tnma-app/membership-backend/internal/models"
	"github.com/tnma-app/membership-backend/internal/services"
	"github.com/tnma-app/membership-backend/pkg/profilescore"
	"github.com/tnma-app/membership-backend/pkg/qr"
	"github.com/tnma-app/membership-backend/pkg/token"
	"github.com/tnma-app/membership-backend/pkg/utils"
)

type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Mobile           string `json:"mobile,omitempty"`
	BusinessType     string `json:"businessType,omitempty"`
	BusinessCategory string `json:"businessCategory,omitempty"`
	AssociationID    string `json:"associationId,omitempty"`
	ShopName         string `json:"shopName,omitempty"`
}

// LoginRequest serves both branches of the merged login:
// member (email+password) and employee (mobile+pin).
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Pin      string `json:"pin,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func setAuthCookies(w http.ResponseWriter, pair token.Pair) {
	isProd := appConfig.IsProduction()
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		MaxAge:   int(token.AccessTokenTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		MaxAge:   int(token.RefreshTokenTTL.Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
}

// recomputeDerived refreshes the cached completeness fields on the document.
// Must run on every login and profile mutation; the stored values are never
// trusted across writes.
func recomputeDerived(u *models.User) {
	u.ProfilePercent = profilescore.Percent(u)
	u.ShopCompleted = profilescore.ShopCompleted(u)
}

func issueUserTokens(u *models.User) (token.Pair, error) {
	return token.Issue(appConfig.JWTAccessSecret, appConfig.JWTRefreshSecret,
		u.ID.Hex(), u.Role, u.Provider, "")
}

// sendOtpMail issues and mails an OTP. Best-effort at call sites that treat
// mail as a secondary effect.
func sendOtpMail(ctx context.Context, email, name, purpose string) error {
	code, err := services.IssueOtp(ctx, email, purpose)
	if err != nil {
		return err
	}

	subject := "Verify your email"
	body := services.VerifyEmailOtpTemplate(name, code)
	if purpose == models.OtpPurposeLogin {
		subject = "Login OTP"
		body = services.LoginOtpTemplate(name, code)
	}
	return mailService.Send(email, subject, body)
}

// Register creates an OWNER account and sends the verify-email OTP.
// OTP/mail failure is deliberately non-fatal: the account exists either way
// and the response says which happened.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = normalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email & password required")
		return
	}

	users := database.DB.Collection(database.ColUsers)

	count, err := users.CountDocuments(r.Context(), bson.M{"email": req.Email})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Register failed")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Register failed")
		return
	}

	regNo, err := services.GenerateRegistrationNumber(r.Context())
	if err != nil {
		log.Printf("ERROR: registration number: %v", err)
		writeError(w, http.StatusInternalServerError, "Register failed")
		return
	}

	var association *primitive.ObjectID
	if req.AssociationID != "" {
		if id, err := primitive.ObjectIDFromHex(req.AssociationID); err == nil {
			association = &id
		}
	}

	now := time.Now().UTC()
	user := models.User{
		CreatedAt:          now,
		UpdatedAt:          now,
		Name:               req.Name,
		Email:              req.Email,
		Password:           hash,
		Mobile:             req.Mobile,
		Provider:           models.ProviderLocal,
		Role:               models.RoleOwner,
		Status:             models.StatusActive,
		BusinessType:       req.BusinessType,
		BusinessCategory:   req.BusinessCategory,
		Association:        association,
		ShopName:           req.ShopName,
		RegistrationNumber: regNo,
	}

	if _, err := users.InsertOne(r.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("ERROR: register insert: %v", err)
		writeError(w, http.StatusInternalServerError, "Register failed")
		return
	}

	message := "Registered successfully. OTP sent to email."
	var warnings []string
	if err := sendOtpMail(r.Context(), req.Email, req.Name, models.OtpPurposeVerifyEmail); err != nil {
		log.Printf("WARNING: OTP / email error in register: %v", err)
		message = "Registered successfully, but failed to send OTP email. Please contact admin."
		warnings = append(warnings, "otp_email_failed")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  message,
		"warnings": warnings,
	})
}

// Login is the merged login endpoint: email+password for members,
// mobile+pin for employees.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email != "" && req.Password != "" {
		loginMember(w, r, req)
		return
	}
	if req.Mobile != "" && req.Pin != "" {
		loginEmployee(w, r, req)
		return
	}

	writeError(w, http.StatusBadRequest,
		"Provide either (email + password) for member login or (mobile + pin) for employee login.")
}

func loginMember(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	email := normalizeEmail(req.Email)
	log.Printf("🔐 MEMBER LOGIN start: %s", email)

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	if err := users.FindOne(r.Context(), bson.M{"email": email}).Decode(&user); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.Password == "" {
		writeError(w, http.StatusBadRequest, "This account uses Google login. Use Google login.")
		return
	}
	if !utils.VerifyPassword(req.Password, user.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	pair, err := issueUserTokens(&user)
	if err != nil {
		log.Printf("ERROR: issue tokens: %v", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	var warnings []string

	// generate QR if missing
	if user.QRCodeURL == "" {
		qrURL, qrErr := qr.EncodeDataURL(qr.Payload{
			Type:     qr.TypeOwner,
			ID:       user.ID.Hex(),
			Name:     user.Name,
			ShopName: user.ShopName,
		})
		if qrErr != nil {
			log.Printf("WARNING: QR generate error (member login): %v", qrErr)
			warnings = append(warnings, "qr_generation_failed")
		} else {
			user.QRCodeURL = qrURL
		}
	}

	recomputeDerived(&user)

	now := time.Now().UTC()
	user.LastLoginDate = &now
	user.RefreshToken = pair.RefreshToken

	_, err = users.UpdateOne(r.Context(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"refreshToken":   user.RefreshToken,
		"lastLoginDate":  user.LastLoginDate,
		"qrCodeUrl":      user.QRCodeURL,
		"profilePercent": user.ProfilePercent,
		"shopCompleted":  user.ShopCompleted,
		"updatedAt":      now,
	}})
	if err != nil {
		log.Printf("ERROR: member login save: %v", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	setAuthCookies(w, pair)
	log.Printf("✅ MEMBER LOGIN success: %s", user.ID.Hex())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Login successful",
		"loginType":   "MEMBER",
		"accessToken": pair.AccessToken,
		"warnings":    warnings,
		"user":        memberLoginView(&user),
	})
}

func memberLoginView(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":                 u.ID.Hex(),
		"name":               u.Name,
		"email":              u.Email,
		"mobile":             u.Mobile,
		"role":               u.Role,
		"avatar":             u.Avatar,
		"qrCodeUrl":          u.QRCodeURL,
		"isProfileVerified":  u.IsProfileVerified,
		"profilePercent":     u.ProfilePercent,
		"shopCompleted":      u.ShopCompleted,
		"businessType":       u.BusinessType,
		"businessCategory":   u.BusinessCategory,
		"shopName":           u.ShopName,
		"shopAddress":        u.ShopAddress,
		"shopFront":          u.ShopFront,
		"shopBanner":         u.ShopBanner,
		"shopLocation":       u.ShopLoc,
		"address":            u.Address,
		"registrationNumber": u.RegistrationNumber,
		"association":        u.Association,
	}
}

func loginEmployee(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	log.Printf("🔐 EMPLOYEE LOGIN start: %s", req.Mobile)

	employees := database.DB.Collection(database.ColEmployees)

	var emp models.Employee
	err := employees.FindOne(r.Context(), bson.M{
		"mobile": req.Mobile,
		"status": models.StatusActive,
	}).Decode(&emp)
	if err != nil {
		writeError(w, http.StatusNotFound, "Employee not found or inactive")
		return
	}

	if !utils.VerifyPassword(req.Pin, emp.PinHash) {
		writeError(w, http.StatusUnauthorized, "Invalid mobile or PIN")
		return
	}

	var owner *models.User
	if emp.Owner != nil {
		var o models.User
		if err := database.DB.Collection(database.ColUsers).
			FindOne(r.Context(), bson.M{"_id": *emp.Owner}).Decode(&o); err == nil {
			owner = &o
		}
	}

	pair, err := token.Issue(appConfig.JWTAccessSecret, appConfig.JWTRefreshSecret,
		emp.ID.Hex(), models.RoleEmployee, models.ProviderLocal, token.SubjectTypeEmployee)
	if err != nil {
		log.Printf("ERROR: issue employee tokens: %v", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	_, err = employees.UpdateOne(r.Context(), bson.M{"_id": emp.ID}, bson.M{"$set": bson.M{
		"refreshToken": pair.RefreshToken,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		log.Printf("ERROR: employee login save: %v", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	setAuthCookies(w, pair)
	log.Printf("✅ EMPLOYEE LOGIN success: %s", emp.ID.Hex())

	view := map[string]interface{}{
		"id":          emp.ID.Hex(),
		"name":        emp.Name,
		"mobile":      emp.Mobile,
		"role":        emp.Role,
		"avatar":      emp.Avatar,
		"shopName":    emp.ShopName,
		"shopAddress": emp.ShopAddress,
		"qrCodeUrl":   emp.QRCodeURL,
		"status":      emp.Status,
	}
	if owner != nil {
		view["ownerId"] = owner.ID.Hex()
		view["ownerName"] = owner.Name
		view["ownerIsProfileVerified"] = owner.IsProfileVerified
	} else {
		view["ownerId"] = nil
		view["ownerName"] = ""
		view["ownerIsProfileVerified"] = false
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Employee login successful",
		"loginType":   "EMPLOYEE",
		"accessToken": pair.AccessToken,
		"employee":    view,
	})
}

// SendVerifyEmailOtp issues a fresh email-verification code.
func SendVerifyEmailOtp(w http.ResponseWriter, r *http.Request) {
	sendOtpHandler(w, r, models.OtpPurposeVerifyEmail, "Verification OTP sent")
}

// SendLoginOtp issues a fresh login code.
func SendLoginOtp(w http.ResponseWriter, r *http.Request) {
	sendOtpHandler(w, r, models.OtpPurposeLogin, "Login OTP sent")
}

func sendOtpHandler(w http.ResponseWriter, r *http.Request, purpose, okMessage string) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalizeEmail(req.Email)

	var user models.User
	err := database.DB.Collection(database.ColUsers).
		FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := sendOtpMail(r.Context(), email, user.Name, purpose); err != nil {
		log.Printf("ERROR: send otp (%s): %v", purpose, err)
		writeError(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": okMessage})
}

// VerifyEmailOtp consumes a verify_email code; a code is usable exactly once.
func VerifyEmailOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalizeEmail(req.Email)

	if err := services.ConsumeOtp(r.Context(), email, req.Code, models.OtpPurposeVerifyEmail); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	users := database.DB.Collection(database.ColUsers)
	var user models.User
	err := users.FindOneAndUpdate(r.Context(),
		bson.M{"email": email},
		bson.M{"$set": bson.M{"verifyEmail": true, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email verified successfully",
		"user": map[string]interface{}{
			"id":          user.ID.Hex(),
			"email":       user.Email,
			"verifyEmail": true,
		},
	})
}

// LoginWithOtp consumes a login code, provisioning the account on first use.
func LoginWithOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalizeEmail(req.Email)

	if err := services.ConsumeOtp(r.Context(), email, req.Code, models.OtpPurposeLogin); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	err := users.FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		// first OTP login provisions a bare account
		regNo, regErr := services.GenerateRegistrationNumber(r.Context())
		if regErr != nil {
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		now := time.Now().UTC()
		user = models.User{
			CreatedAt:          now,
			UpdatedAt:          now,
			Name:               strings.SplitN(email, "@", 2)[0],
			Email:              email,
			Provider:           models.ProviderLocal,
			Role:               models.RoleOwner,
			Status:             models.StatusActive,
			VerifyEmail:        true,
			RegistrationNumber: regNo,
		}
		res, insErr := users.InsertOne(r.Context(), user)
		if insErr != nil {
			log.Printf("ERROR: otp login provision: %v", insErr)
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)
	}

	finishUserLogin(w, r.Context(), &user)
}

// finishUserLogin issues tokens, refreshes derived fields, persists the
// session state, and writes the common login response.
func finishUserLogin(w http.ResponseWriter, ctx context.Context, user *models.User) {
	pair, err := issueUserTokens(user)
	if err != nil {
		log.Printf("ERROR: issue tokens: %v", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	recomputeDerived(user)
	now := time.Now().UTC()

	_, err = database.DB.Collection(database.ColUsers).UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"refreshToken":   pair.RefreshToken,
			"lastLoginDate":  now,
			"profilePercent": user.ProfilePercent,
			"shopCompleted":  user.ShopCompleted,
			"updatedAt":      now,
		}})
	if err != nil {
		log.Printf("ERROR: login save: %v", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	setAuthCookies(w, pair)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"accessToken": pair.AccessToken,
		"user": map[string]interface{}{
			"id":             user.ID.Hex(),
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"avatar":         user.Avatar,
			"profilePercent": user.ProfilePercent,
			"shopCompleted":  user.ShopCompleted,
		},
	})
}

// GoogleLogin verifies a Google ID token and provisions/updates the account.
func GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "idToken is required")
		return
	}

	payload, err := idtoken.Validate(r.Context(), req.IDToken, appConfig.GoogleClientID)
	if err != nil {
		log.Printf("ERROR: google token validate: %v", err)
		writeError(w, http.StatusUnauthorized, "Google login failed")
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	email = normalizeEmail(email)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "Google login failed")
		return
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	err = users.FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		regNo, regErr := services.GenerateRegistrationNumber(r.Context())
		if regErr != nil {
			writeError(w, http.StatusInternalServerError, "Google login failed")
			return
		}
		now := time.Now().UTC()
		user = models.User{
			CreatedAt:          now,
			UpdatedAt:          now,
			Name:               name,
			Email:              email,
			Avatar:             picture,
			Provider:           models.ProviderGoogle,
			Role:               models.RoleOwner,
			Status:             models.StatusActive,
			VerifyEmail:        true,
			RegistrationNumber: regNo,
		}
		res, insErr := users.InsertOne(r.Context(), user)
		if insErr != nil {
			log.Printf("ERROR: google login provision: %v", insErr)
			writeError(w, http.StatusInternalServerError, "Google login failed")
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)
	} else {
		user.Provider = models.ProviderGoogle
		user.VerifyEmail = true
		if user.Avatar == "" {
			user.Avatar = picture
		}
	}

	// whitelist promotion
	if appConfig.IsAdminEmail(user.Email) {
		user.Role = models.RoleAdmin
	}

	_, err = users.UpdateOne(r.Context(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"provider":    user.Provider,
		"verifyEmail": user.VerifyEmail,
		"avatar":      user.Avatar,
		"role":        user.Role,
	}})
	if err != nil {
		log.Printf("ERROR: google login update: %v", err)
		writeError(w, http.StatusInternalServerError, "Google login failed")
		return
	}

	finishUserLogin(w, r.Context(), &user)
}

// CurrentUser returns the authenticated principal's own record, with derived
// fields recomputed rather than read from the stored cache.
func CurrentUser(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)

	if p.IsEmployee() {
		var emp models.Employee
		err := database.DB.Collection(database.ColEmployees).
			FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&emp)
		if err != nil {
			writeError(w, http.StatusNotFound, "Employee record not found.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "employee": emp})
		return
	}

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	if err := users.FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&user); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	recomputeDerived(&user)
	_, err := users.UpdateOne(r.Context(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"profilePercent": user.ProfilePercent,
		"shopCompleted":  user.ShopCompleted,
	}})
	if err != nil {
		log.Printf("WARNING: persist derived fields: %v", err)
	}

	var association *models.Association
	if user.Association != nil {
		var a models.Association
		if err := database.DB.Collection(database.ColAssociations).
			FindOne(r.Context(), bson.M{"_id": *user.Association}).Decode(&a); err == nil {
			association = &a
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"user":        user,
		"association": association,
	})
}

// Logout clears the stored refresh token and the auth cookies.
func Logout(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)

	var err error
	if p.IsEmployee() {
		_, err = database.DB.Collection(database.ColEmployees).
			UpdateOne(r.Context(), bson.M{"_id": p.ID}, bson.M{"$set": bson.M{"refreshToken": ""}})
	} else {
		_, err = database.DB.Collection(database.ColUsers).
			UpdateOne(r.Context(), bson.M{"_id": p.ID}, bson.M{"$set": bson.M{"refreshToken": ""}})
	}
	if err != nil {
		log.Printf("WARNING: logout refresh token clear: %v", err)
	}

	clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Logged out"})
}

// ChangePassword rotates a local account's password.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	p := middleware.Principal(r)
	if p.IsEmployee() {
		writeError(w, http.StatusForbidden, "Employees cannot change password here")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	users := database.DB.Collection(database.ColUsers)

	var user models.User
	if err := users.FindOne(r.Context(), bson.M{"_id": p.ID}).Decode(&user); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if user.Provider == models.ProviderGoogle {
		writeError(w, http.StatusBadRequest, "Google accounts cannot change password")
		return
	}
	if !utils.VerifyPassword(req.CurrentPassword, user.Password) {
		writeError(w, http.StatusBadRequest, "Current password incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	_, err = users.UpdateOne(r.Context(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"password":  hash,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Password changed successfully"})
}
