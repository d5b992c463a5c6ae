package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/models"
	"github.com/tnma-app/membership-backend/pkg/token"
)

type contextKey string

const principalKey contextKey = "principal"

// AccessTokenCookie is the cookie the login handlers set.
const AccessTokenCookie = "accessToken"

// ExtractToken picks the request token: Authorization bearer wins over the
// cookie when both are present. Literal "null"/"undefined" values (stale
// web clients serialize those) count as absent.
func ExtractToken(authHeader, cookieValue string) string {
	var bearer string
	if strings.HasPrefix(authHeader, "Bearer ") {
		bearer = strings.TrimSpace(authHeader[len("Bearer "):])
	}
	if cleaned := cleanToken(bearer); cleaned != "" {
		return cleaned
	}
	return cleanToken(cookieValue)
}

func cleanToken(t string) string {
	t = strings.TrimSpace(t)
	if t == "" || t == "null" || t == "undefined" {
		return ""
	}
	return t
}

// Auth resolves the request token to exactly one live principal and attaches
// it to the context. Read-only: never mutates the store.
func Auth(accessSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookieValue string
			if c, err := r.Cookie(AccessTokenCookie); err == nil {
				cookieValue = c.Value
			}

			tok := ExtractToken(r.Header.Get("Authorization"), cookieValue)
			if tok == "" {
				unauthorized(w, "Unauthorized: No token")
				return
			}

			claims, err := token.Parse(accessSecret, tok)
			if err != nil {
				log.Printf("AUTH ERROR: %v", err)
				unauthorized(w, "Unauthorized")
				return
			}

			id, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				unauthorized(w, "Unauthorized")
				return
			}

			principal, err := resolvePrincipal(r.Context(), id, claims)
			if err != nil {
				unauthorized(w, "Unauthorized: User not found")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolvePrincipal picks the collection from the token's discriminator:
// subjectType/role EMPLOYEE resolves an Active employee, everything else an
// Owner/Admin user.
func resolvePrincipal(ctx context.Context, id primitive.ObjectID, claims *token.Claims) (*models.Principal, error) {
	if claims.SubjectType == token.SubjectTypeEmployee || claims.Role == models.RoleEmployee {
		var emp models.Employee
		err := database.DB.Collection(database.ColEmployees).
			FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).
			Decode(&emp)
		if err != nil {
			return nil, err
		}
		return models.EmployeePrincipalOf(&emp), nil
	}

	var user models.User
	err := database.DB.Collection(database.ColUsers).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&user)
	if err != nil {
		return nil, err
	}
	return models.UserPrincipal(&user), nil
}

// Principal returns the authenticated principal set by Auth.
func Principal(r *http.Request) *models.Principal {
	p, _ := r.Context().Value(principalKey).(*models.Principal)
	return p
}

// WithPrincipal returns a request carrying the given principal. Test helper.
func WithPrincipal(r *http.Request, p *models.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// RequireAdmin rejects principals without the ADMIN role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := Principal(r)
		if p == nil || !p.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Forbidden: Admin only",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": msg,
	})
}
