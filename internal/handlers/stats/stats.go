package handlers_stats

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"littlesite/internal/models/clredis"
	"littlesite/internal/models/clvisitors"
)

type StatsHandler struct {
	visitors *clvisitors.VisitorService
	cache    *clredis.Cache
}

func NewStatsHandler(visitors *clvisitors.VisitorService, cache *clredis.Cache) *StatsHandler {
	return &StatsHandler{
		visitors: visitors,
		cache:    cache,
	}
}

// GetStats retourne les statistiques visiteurs (fenêtre ?days=N, défaut 30)
func (sh *StatsHandler) GetStats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "days doit être un entier",
		})
		return
	}

	stats, err := sh.visitors.GetVisitorStatistics(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRealtimeStats retourne les compteurs du jour depuis Redis
func (sh *StatsHandler) GetRealtimeStats(c *gin.Context) {
	if sh.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Realtime stats unavailable",
		})
		return
	}

	stats, err := sh.cache.RealtimeStats(time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve realtime stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetVisitorCount retourne le nombre total de visites
func (sh *StatsHandler) GetVisitorCount(c *gin.Context) {
	total, err := sh.visitors.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count visitors",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_visitors": total})
}
