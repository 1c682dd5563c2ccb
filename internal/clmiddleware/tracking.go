package clmiddleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"littlesite/internal/models/clredis"
	"littlesite/internal/models/clvisitors"
)

// TrackingMiddleware enregistre une visite pour chaque page servie
type TrackingMiddleware struct {
	Visitors *clvisitors.VisitorService
	Cache    *clredis.Cache
}

func NewTrackingMiddleware(visitors *clvisitors.VisitorService, cache *clredis.Cache) *TrackingMiddleware {
	return &TrackingMiddleware{
		Visitors: visitors,
		Cache:    cache,
	}
}

func (tm *TrackingMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Ne pas tracker les assets statiques, l'API ni l'administration
		if strings.HasPrefix(c.Request.URL.Path, "/static/") ||
			strings.HasPrefix(c.Request.URL.Path, "/files/") ||
			strings.HasPrefix(c.Request.URL.Path, "/admin/") ||
			strings.HasPrefix(c.Request.URL.Path, "/api/") ||
			c.Request.URL.Path == "/health" ||
			c.Request.URL.Path == "/visitors" ||
			c.Request.URL.Path == "/favicon.ico" {
			c.Next()
			return
		}

		session := sessions.Default(c)

		sessionID, _ := session.Get("session_id").(string)
		if sessionID == "" {
			sessionID = newSessionID()
			session.Set("session_id", sessionID)
		}

		// Compteur de visites de la session, affiché sur la home
		visitCount, _ := session.Get("visitor_count").(int)
		visitCount++
		session.Set("visitor_count", visitCount)

		if err := session.Save(); err != nil {
			log.Warn().Err(err).Msg("Session save failed")
		}
		c.Set("visitCount", visitCount)

		data := clvisitors.VisitorData{
			IPAddress:   tm.getClientIP(c),
			UserAgent:   c.Request.UserAgent(),
			PageVisited: pageName(c.Request.URL.Path),
			SessionID:   sessionID,
		}

		// Enregistrer de manière asynchrone pour ne pas bloquer la requête
		go tm.record(data)

		c.Next()
	}
}

// record persiste la visite ; en cas d'échec la page est servie quand même
func (tm *TrackingMiddleware) record(data clvisitors.VisitorData) {
	visitor, err := tm.Visitors.TrackVisitor(data)
	if err != nil {
		log.Error().Err(err).Str("page", data.PageVisited).Msg("Error recording visit")
		return
	}

	if tm.Cache != nil {
		tm.Cache.RecordVisit(visitor.Timestamp.Format("2006-01-02"), data.SessionID)
	}
}

// getClientIP récupère l'IP réelle du client
func (tm *TrackingMiddleware) getClientIP(c *gin.Context) string {
	// Vérifier les headers de proxy
	ip := c.GetHeader("X-Real-IP")
	if ip == "" {
		ip = c.GetHeader("X-Forwarded-For")
		if ip != "" {
			// Prendre la première IP si plusieurs
			ips := strings.Split(ip, ",")
			ip = strings.TrimSpace(ips[0])
		}
	}
	if ip == "" {
		ip = c.ClientIP()
	}
	return ip
}

// pageName normalise un chemin en nom de page ("/" -> "home")
func pageName(path string) string {
	name := strings.Trim(path, "/")
	if name == "" {
		return "home"
	}
	return name
}

func newSessionID() string {
	randomBytes := make([]byte, 16)
	rand.Read(randomBytes)
	return hex.EncodeToString(randomBytes)
}
