package middleware

import (
	"net/http"
	"time"

	"github.com/go-matchmaker/internal/application/session"
	jwtinfra "github.com/go-matchmaker/internal/infrastructure/jwt"
	"github.com/go-matchmaker/internal/logger"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "session"

type tokenCodec interface {
	Sign(userID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}

// Session restores the session.Context of the request from its cookie and
// writes the cookie back, right before the response headers go out, when a
// handler established or tore down the binding. Missing, tampered or expired
// cookies yield an unauthenticated context.
func Session(codec tokenCodec, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := session.New("")
			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				if claims, err := codec.Verify(c.Value); err == nil {
					sc = session.New(claims.UserID)
				} else {
					logger.FromRequest(r).Debug().Err(err).Msg("discarding session cookie")
					// rewrite the bad cookie as cleared
					sc.Teardown()
				}
			}

			sw := &sessionWriter{ResponseWriter: w, r: r, sc: sc, codec: codec, secure: secure}
			next.ServeHTTP(sw, r.WithContext(session.WithContext(r.Context(), sc)))
		})
	}
}

type sessionWriter struct {
	http.ResponseWriter
	r         *http.Request
	sc        *session.Context
	codec     tokenCodec
	secure    bool
	committed bool
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *sessionWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	if !w.sc.Changed() {
		return
	}

	cookie := &http.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	}
	userID, err := w.sc.CurrentUser()
	if err != nil {
		cookie.MaxAge = -1
		http.SetCookie(w.ResponseWriter, cookie)
		return
	}

	token, err := w.codec.Sign(userID)
	if err != nil {
		logger.FromRequest(w.r).Err(err).Str("user_id", userID).Msg("error signing session")
		return
	}
	cookie.Value = token
	cookie.MaxAge = int(w.codec.Expiry().Seconds())
	http.SetCookie(w.ResponseWriter, cookie)
}
