package middleware

import (
	"context"
	"net/http"
	"strconv"

	"school-fundraiser-platform/internal/models"
	"school-fundraiser-platform/internal/services"

	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// StudentContextKey holds the authenticated student, when present
	StudentContextKey contextKey = "student"

	// SessionName is the cookie session used across the app
	SessionName = "session"
)

// AuthMiddleware loads the authenticated student from the cookie session
type AuthMiddleware struct {
	students services.StudentRepository
	store    sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(students services.StudentRepository, store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{
		students: students,
		store:    store,
	}
}

// LoadStudent loads the current student from the session and adds them to the
// request context. Requests without a valid session continue anonymously.
func (m *AuthMiddleware) LoadStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := session.Values["user_id"].(int)
		if !ok || userID == 0 {
			// Session storage may convert types on round-trip
			if userIDValue, exists := session.Values["user_id"]; exists {
				switch v := userIDValue.(type) {
				case float64:
					userID = int(v)
					ok = userID != 0
				case string:
					if parsedID, err := strconv.Atoi(v); err == nil {
						userID = parsedID
						ok = userID != 0
					}
				}
			}

			if !ok || userID == 0 {
				next.ServeHTTP(w, r)
				return
			}
		}

		student, err := m.students.GetByUserID(userID)
		if err != nil {
			// Stale login. Drop only the login; the session also carries
			// the anonymous cart.
			delete(session.Values, "user_id")
			session.Save(r, w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), StudentContextKey, student)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStudent rejects requests that carry no authenticated student
func (m *AuthMiddleware) RequireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetStudentFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "authentication required"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetStudentFromContext returns the authenticated student, or nil
func GetStudentFromContext(ctx context.Context) *models.Student {
	student, ok := ctx.Value(StudentContextKey).(*models.Student)
	if !ok {
		return nil
	}
	return student
}
