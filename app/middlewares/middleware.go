package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/Rakhulsr/kidstore/app/utils/sessions"
	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

// SessionContext resolves the session cookie into a helpers.RequestContext.
// Unknown or stale sessions continue as anonymous requests.
func SessionContext(store sessions.SessionStore, users repositories.UserRepository, log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := store.GetUserID(r)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				log.Errorf("SessionContext: failed to load user %s: %v", userID, err)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := helpers.WithRequestContext(r.Context(), helpers.RequestContext{UserID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := helpers.RequestContextFrom(r.Context()); !ok {
				helpers.WriteError(rnd, w, nil, apperr.Unauthenticated())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(rnd *render.Render, log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := helpers.RequestContextFrom(r.Context())
			if !ok {
				helpers.WriteError(rnd, w, nil, apperr.Unauthenticated())
				return
			}
			if !rc.IsAdmin() {
				log.Warnf("RequireAdmin: user %s denied %s %s", rc.UserID, r.Method, r.URL.Path)
				helpers.WriteError(rnd, w, nil, apperr.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func RequestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return
			}
			entry.Info("request served")
		})
	}
}

// RequestTimeout bounds the context of every request, including the database
// work done on its behalf.
func RequestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRF protects unsafe methods with gorilla/csrf. A nil key disables it.
func CSRF(key []byte, secure bool, rnd *render.Render) func(http.Handler) http.Handler {
	if len(key) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rnd.JSON(w, http.StatusForbidden, map[string]string{"error": "invalid CSRF token"})
		})),
	)
}
