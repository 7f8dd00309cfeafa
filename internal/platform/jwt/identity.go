package jwtmw

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderSessionID carries the anonymous session id in requests and responses.
	HeaderSessionID = "X-Session-ID"

	ContextSessionID = "sessionID"

	maxSessionIDLen = 64
)

// Identify returns a Gin middleware that records who is calling without requiring sign-in.
//
// A valid bearer token sets ContextUserID; a malformed or expired one is rejected with 401.
// Every request also gets a session id: the X-Session-ID header when present, otherwise a new
// UUID. The id is stored under ContextSessionID and echoed in the response header.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.GetHeader("Authorization"), bearerPrefix) && !authenticate(c) {
			return
		}

		sid := HeaderSession(c)
		if sid == "" {
			sid = uuid.NewString()
		}
		c.Set(ContextSessionID, sid)
		c.Header(HeaderSessionID, sid)

		c.Next()
	}
}

// UserID returns the signed-in user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// SessionID returns the request's session id set by Identify.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

// HeaderSession returns the X-Session-ID header when it is usable as a session id, or "".
func HeaderSession(c *gin.Context) string {
	sid := strings.TrimSpace(c.GetHeader(HeaderSessionID))
	if len(sid) > maxSessionIDLen {
		return ""
	}
	return sid
}
