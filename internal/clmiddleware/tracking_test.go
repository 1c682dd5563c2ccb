package clmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"littlesite/internal/models/clvisitors"
)

type stubBots struct{}

func (stubBots) Detect(string) (bool, error) { return false, nil }

type stubGeo struct{}

func (stubGeo) Country(string) (string, error) { return "", nil }

func setupTrackingRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&clvisitors.SiteVisitor{}))

	service := clvisitors.NewVisitorService(db, stubBots{}, stubGeo{})
	tracking := NewTrackingMiddleware(service, nil)

	r := gin.New()
	r.Use(NewSession(false))
	r.Use(tracking.Middleware())
	handler := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", handler)
	r.GET("/about", handler)
	r.GET("/health", handler)
	r.GET("/api/stats", handler)
	r.GET("/admin/dashboard", handler)

	return r, db
}

func countVisits(db *gorm.DB) int64 {
	var count int64
	db.Model(&clvisitors.SiteVisitor{}).Count(&count)
	return count
}

func TestTrackingRecordsVisit(t *testing.T) {
	r, db := setupTrackingRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// L'enregistrement est asynchrone
	assert.Eventually(t, func() bool {
		return countVisits(db) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var visitor clvisitors.SiteVisitor
	require.NoError(t, db.First(&visitor).Error)
	assert.Equal(t, "about", visitor.PageVisited)
	assert.NotEmpty(t, visitor.SessionID)
	assert.NotEmpty(t, visitor.VisitorUUID)
}

func TestTrackingRootIsHome(t *testing.T) {
	r, db := setupTrackingRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool {
		return countVisits(db) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var visitor clvisitors.SiteVisitor
	require.NoError(t, db.First(&visitor).Error)
	assert.Equal(t, "home", visitor.PageVisited)
}

func TestTrackingSkipsNonPages(t *testing.T) {
	r, db := setupTrackingRouter(t)

	for _, path := range []string{"/health", "/api/stats", "/admin/dashboard"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Laisser le temps à un éventuel enregistrement parasite
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), countVisits(db))
}

func TestTrackingReusesSession(t *testing.T) {
	r, db := setupTrackingRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Deuxième visite avec le cookie de session
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/about", nil)
	req2.Header.Set("User-Agent", "Mozilla/5.0")
	for _, cookie := range cookies {
		req2.AddCookie(cookie)
	}
	r.ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code)

	assert.Eventually(t, func() bool {
		return countVisits(db) == 2
	}, 2*time.Second, 10*time.Millisecond)

	var visitors []clvisitors.SiteVisitor
	require.NoError(t, db.Find(&visitors).Error)
	require.Len(t, visitors, 2)
	assert.Equal(t, visitors[0].SessionID, visitors[1].SessionID)
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := &TrackingMiddleware{}

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "x-real-ip prioritaire",
			headers: map[string]string{"X-Real-IP": "82.65.10.1", "X-Forwarded-For": "10.0.0.1"},
			want:    "82.65.10.1",
		},
		{
			name:    "première ip du x-forwarded-for",
			headers: map[string]string{"X-Forwarded-For": "82.65.10.1, 10.0.0.1"},
			want:    "82.65.10.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tm.getClientIP(c))
		})
	}
}

func TestPageName(t *testing.T) {
	assert.Equal(t, "home", pageName("/"))
	assert.Equal(t, "about", pageName("/about"))
	assert.Equal(t, "contact", pageName("/contact/"))
}
