package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharsanguruparan/cinebook/internal/staging"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

const (
	sessionCookie = "cinebook_session"
	flashCookie   = "cinebook_flash"
)

// session returns the visitor's add-movie view, starting a new session when
// the cookie is missing, tampered with or expired. The cookie expiry slides
// with every request.
func (s *Server) session(c echo.Context) *view.CreateView {
	if ck, err := c.Cookie(sessionCookie); err == nil {
		if id, err := s.signer.Parse(ck.Value, time.Now()); err == nil {
			if v, err := s.sessions.Get(id); err == nil {
				s.setSessionCookie(c, id)
				return v
			}
		}
	}
	v := view.NewCreateView(staging.New(s.processor))
	id := s.sessions.Create(v)
	s.setSessionCookie(c, id)
	return v
}

func (s *Server) setSessionCookie(c echo.Context, id string) {
	expires := time.Now().Add(s.cfg.SessionTTL)
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    s.signer.Token(id, expires),
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlash stores a one-shot message shown by the next rendered page.
func setFlash(c echo.Context, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the flash message.
func takeFlash(c echo.Context) string {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ""
	}
	return msg
}
