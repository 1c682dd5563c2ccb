package main

import (
	"crypto/sha256"
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/andskur/argon2-hashing"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	htmlmin "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"littlesite/internal/clmiddleware"
	handlers_messages "littlesite/internal/handlers/messages"
	handlers_stats "littlesite/internal/handlers/stats"
	"littlesite/internal/models/clconfig"
	"littlesite/internal/models/cllog"
	"littlesite/internal/models/clmarkdown"
	"littlesite/internal/models/clmessages"
	"littlesite/internal/models/clsite"
)

const VERSION string = "0.1.0"

// global instance
var (
	configuration *clconfig.Config
	site          *clsite.Littlesite
	BuildID       string
)

//go:embed templates/**/*.html
var templatesFS embed.FS

//go:embed ressources/css
//go:embed ressources/js
var staticFS embed.FS

// Requests structs
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ============= CONFIGURATION =============

func parseCommandLineArgs() (configFile string, shouldCreateExample bool, versionDisplay bool, err error) {
	var config = flag.String("config", "", "Fichier de configuration YAML")
	var example = flag.Bool("example", false, "Créer un fichier de configuration exemple")
	var version = flag.Bool("version", false, "version du produit")
	flag.Parse()

	if *version {
		return "", false, true, nil
	}

	if *example {
		return "", true, false, nil
	}

	if *config == "" {
		return "", false, false, fmt.Errorf("fichier de configuration requis")
	}

	return *config, false, false, nil
}

func initConfiguration() {
	configFile, shouldCreateExample, versionDisplay, err := parseCommandLineArgs()
	if err != nil {
		fmt.Println("Usage:")
		fmt.Println("  littlesite -config littlesite.yaml")
		fmt.Println("  littlesite -example  (pour créer un fichier exemple)")
		fmt.Println("  littlesite -version  (affiche la version)")
		os.Exit(1)
	}

	if versionDisplay {
		println(VERSION)
		os.Exit(0)
	}

	clconfig.CreateExample(shouldCreateExample, configFile)

	conf, err := clconfig.LoadAndValidate(configFile)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	configuration = conf
}

// ============= SERVEUR =============

func getTemplates(production bool) *template.Template {
	m := minify.New()

	if production {
		m.AddFunc("text/html", htmlmin.Minify)
	}

	tmpl := template.New("").Funcs(template.FuncMap{
		"jsonify": jsonify,
	})

	// Lire tous les fichiers HTML
	fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".html" {
			return err
		}

		content, _ := fs.ReadFile(templatesFS, path)
		minified, err := m.Bytes("text/html", content)
		if err != nil {
			minified = content
		}

		tmpl.New(path).Parse(string(minified))
		return nil
	})

	return tmpl
}

func jsonify(v any) template.JS {
	if v == nil {
		return template.JS("[]")
	}

	// Vérifier si c'est un slice vide
	if reflect.ValueOf(v).Kind() == reflect.Slice && reflect.ValueOf(v).Len() == 0 {
		return template.JS("[]")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("[]")
	}

	return template.JS(b)
}

func newServer() *gin.Engine {
	if configuration.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if configuration.TrustedProxies != nil {
		r.SetTrustedProxies(configuration.TrustedProxies)
	}
	if configuration.TrustedPlatform != "" {
		switch configuration.TrustedPlatform {
		case "cloudflare":
			r.TrustedPlatform = gin.PlatformCloudflare
		case "google":
			r.TrustedPlatform = gin.PlatformGoogleAppEngine
		case "flyio":
			r.TrustedPlatform = gin.PlatformFlyIO
		default:
			r.TrustedPlatform = configuration.TrustedPlatform
		}
	}

	// parser les templates
	r.SetHTMLTemplate(getTemplates(configuration.Production))

	return r
}

func setMiddleware(r *gin.Engine) {
	clmiddleware.InitMiddleware(r, configuration.Production)

	// Tracking des visites sur les pages publiques
	tracking := clmiddleware.NewTrackingMiddleware(site.Visitors, site.Cache)
	r.Use(tracking.Middleware())
}

func setRoutes(r *gin.Engine) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)

	// middleware rate limiter
	middlewareLimiter := clmiddleware.NewLimiter()

	statsHandler := handlers_stats.NewStatsHandler(site.Visitors, site.Cache)
	messagesHandler := handlers_messages.NewMessagesHandler(site.Messages)

	//default
	r.NoRoute(func(c *gin.Context) {
		pageNotFound(c, "Page non trouvée")
	})

	// Routes statiques
	if configuration.StaticPath != "" {
		r.Static("/static/", configuration.StaticPath)
	}
	r.GET("/files/css/*.css", ServeMinifiedStatic(m))
	r.GET("/files/js/*.js", ServeMinifiedStatic(m))

	// Routes publiques
	r.GET("/", indexHandler)
	r.POST("/", indexHandler)
	r.GET("/about", aboutHandler)
	r.GET("/contact", contactPageHandler)
	r.POST("/contact", middlewareLimiter, contactSubmitHandler)
	r.GET("/greet", greetHandler)
	r.POST("/greet", greetSubmitHandler)
	r.GET("/files/captcha", func(c *gin.Context) {
		site.Captcha.CaptchaHandler(c, configuration.Production)
	})
	r.GET("/health", healthHandler)
	r.GET("/visitors", statsHandler.GetVisitorCount)

	// Routes d'authentification
	r.GET("/admin/login", loginPageHandler)
	r.POST("/admin/login", middlewareLimiter, loginHandler)
	r.POST("/admin/logout", logoutHandler)

	// Routes d'administration protégées
	admin := r.Group("/admin")
	admin.Use(authRequired())
	{
		admin.GET("/", adminDashboardHandler)
		admin.GET("/messages", messagesHandler.GetMessages)
		admin.POST("/messages/:id/status", messagesHandler.UpdateStatus)
		admin.POST("/messages/:id/spam", messagesHandler.MarkSpam)
	}

	// API publiques
	api := r.Group("/api")
	{
		api.GET("/services", getServicesAPI)
		api.POST("/contact", middlewareLimiter, messagesHandler.CreateMessageAPI)
		api.GET("/stats", statsHandler.GetStats)
		api.GET("/stats/realtime", statsHandler.GetRealtimeStats)
	}
}

func startServer(r *gin.Engine) {
	log.Info().Msgf("Website démarré sur http://%s", configuration.Listen.Website)
	log.Info().Msgf("Admin: http://%s/admin/login", configuration.Listen.Website)
	r.Run(configuration.Listen.Website)
}

func main() {
	if BuildID == "" {
		BuildID = VERSION
	}

	initConfiguration()
	cllog.InitLogger(configuration.Logger, configuration.Production)
	clmarkdown.InitMarkdown()

	site = clsite.Init(configuration, VERSION, BuildID)

	// Triage anti-spam périodique des messages de contact
	triage := clmessages.SetupTriageCron(site.Messages)
	defer triage.Stop()

	r := newServer()

	setMiddleware(r)
	setRoutes(r)

	startServer(r)
}

// ============= HANDLERS PUBLICS =============

// baseContext construit les champs communs à toutes les pages
func baseContext(c *gin.Context, title string) gin.H {
	session := sessions.Default(c)
	return gin.H{
		"title":           title,
		"siteName":        configuration.Site.Name,
		"description":     configuration.Site.Description,
		"menu":            configuration.Site.Menu,
		"isAuthenticated": session.Get("user_id") != nil,
		"currentYear":     time.Now().Year(),
		"version":         VERSION,
		"BuildID":         BuildID,
		"renderTime":      clmiddleware.GetRenderTime(c),
	}
}

func indexHandler(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		// Compat : l'ancien site acceptait un POST de formulaire sur la home
		log.Info().
			Str("title", c.PostForm("title")).
			Str("description", c.PostForm("description")).
			Msg("Received form")
	}

	recentVisitors, err := site.Visitors.Recent(10)
	if err != nil {
		log.Error().Err(err).Msg("Erreur lecture visites récentes")
	}

	visitCount := 0
	if v, found := c.Get("visitCount"); found {
		visitCount, _ = v.(int)
	}

	ctx := baseContext(c, configuration.Site.Name)
	ctx["services"] = configuration.Site.Services
	ctx["allVisitors"] = recentVisitors
	ctx["visitorCount"] = visitCount
	ctx["ogType"] = "website"

	c.HTML(http.StatusOK, "index", ctx)
}

func aboutHandler(c *gin.Context) {
	ctx := baseContext(c, "A propos")
	ctx["content"] = clmarkdown.ConvertMarkdownToHTML(configuration.Site.About)
	ctx["description"] = clmarkdown.MetaDescription(configuration.Site.About, 160)

	c.HTML(http.StatusOK, "about", ctx)
}

func contactPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "contact", baseContext(c, "Contact"))
}

func contactSubmitHandler(c *gin.Context) {
	ctx := baseContext(c, "Contact")

	if err := site.Captcha.VerifyCaptcha(c.PostForm("captchaID"), c.PostForm("captchaAnswer")); err != nil {
		ctx["error"] = err.Error()
		c.HTML(http.StatusOK, "contact", ctx)
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	message := strings.TrimSpace(c.PostForm("message"))

	if name == "" || email == "" || message == "" {
		ctx["error"] = "Tous les champs sont obligatoires !"
		c.HTML(http.StatusOK, "contact", ctx)
		return
	}

	msg := &clmessages.ContactMessage{
		Name:      name,
		Email:     email,
		Message:   message,
		IPAddress: c.ClientIP(),
	}
	msg.SetMetadata(map[string]any{
		"user_agent": c.Request.UserAgent(),
		"source":     "form",
	})

	if err := site.Messages.Insert(msg); err != nil {
		log.Error().Err(err).Msg("Erreur enregistrement message de contact")
		ctx["error"] = "Une erreur est survenue, merci de réessayer."
		c.HTML(http.StatusOK, "contact", ctx)
		return
	}

	ctx["success"] = fmt.Sprintf("Merci %s ! Nous vous recontacterons à %s.", name, email)
	c.HTML(http.StatusOK, "contact", ctx)
}

func greetHandler(c *gin.Context) {
	session := sessions.Default(c)

	ctx := baseContext(c, "Salutations")
	if last, ok := session.Get("last_greeted").(string); ok {
		ctx["lastGreeted"] = last
	}

	c.HTML(http.StatusOK, "greet_form", ctx)
}

func greetSubmitHandler(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = "Guest"
	}

	session := sessions.Default(c)
	session.Set("last_greeted", name)
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Msg("Session save failed")
	}

	ctx := baseContext(c, "Salutations")
	ctx["name"] = name

	c.HTML(http.StatusOK, "greet_result", ctx)
}

func pageNotFound(c *gin.Context, title string) {
	ctx := baseContext(c, title)
	ctx["description"] = "La page que vous recherchez n'existe pas."

	c.HTML(http.StatusNotFound, "404_not_found", ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func getServicesAPI(c *gin.Context) {
	c.JSON(http.StatusOK, configuration.Site.Services)
}

// ============= HANDLERS D'AUTHENTIFICATION =============

func authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			if c.Request.Header.Get("Content-Type") == "application/json" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification requise"})
			} else {
				c.Redirect(http.StatusTemporaryRedirect, "/admin/login")
			}
			c.Abort()
			return
		}
		c.Set("authenticated", true)
		c.Next()
	}
}

func loginPageHandler(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusTemporaryRedirect, "/admin")
		return
	}

	c.HTML(http.StatusOK, "admin_login", baseContext(c, "Connexion Admin"))
}

func loginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	// Vérification login / pass
	err := argon2.CompareHashAndPassword([]byte(configuration.User.Hash), []byte(req.Password))
	if err != nil || req.Username != configuration.User.Login {
		log.Warn().Str("user", req.Username).Str("ip", c.ClientIP()).Msg("Tentative de connexion échouée")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}
	log.Info().Str("user", req.Username).Str("ip", c.ClientIP()).Msg("Connexion réussie")

	// Créer la session
	session := sessions.Default(c)
	session.Set("user_id", "admin")
	session.Set("username", req.Username)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Connexion réussie",
		"redirect": "/admin",
	})
}

func logoutHandler(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// ============= HANDLERS D'ADMINISTRATION =============

func adminDashboardHandler(c *gin.Context) {
	stats, err := site.Visitors.GetVisitorStatistics(30)
	if err != nil {
		log.Error().Err(err).Msg("Erreur lecture statistiques")
		c.HTML(http.StatusInternalServerError, "404_not_found", baseContext(c, "Erreur"))
		return
	}

	msgCounts, err := site.Messages.CountByStatus()
	if err != nil {
		log.Error().Err(err).Msg("Erreur lecture compteurs messages")
	}

	recentMessages, _, err := site.Messages.ListByStatus("all", 1, 5)
	if err != nil {
		log.Error().Err(err).Msg("Erreur lecture messages récents")
	}

	session := sessions.Default(c)

	ctx := baseContext(c, "Dashboard Admin")
	ctx["username"] = session.Get("username")
	ctx["stats"] = stats
	ctx["dailyStats"] = stats.DailyStats
	ctx["messageCounts"] = msgCounts
	ctx["recentMessages"] = recentMessages
	ctx["memories"] = getMemUsage()

	c.HTML(http.StatusOK, "admin_dashboard", ctx)
}

func getMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("Statistiques mémoire: allouée = %v Mo, total allouée = %d Mo, système = %v Mo, nombre de GC = %v\n", m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024, m.NumGC)
}

// ============= FICHIERS STATIQUES =============

func ServeMinifiedStatic(m *minify.M) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Request.URL.Path, "/files/")
		content, err := fs.ReadFile(staticFS, "ressources/"+path)
		if err != nil {
			pageNotFound(c, "Fichier non trouvé")
			return
		}

		ext := filepath.Ext(path)
		var contentType string
		var minified []byte

		switch ext {
		case ".css":
			contentType = "text/css"
			minified, err = m.Bytes("text/css", content)
		case ".js":
			contentType = "application/javascript"
			minified, err = m.Bytes("application/javascript", content)
		default:
			c.Data(http.StatusOK, "application/octet-stream", content)
			return
		}

		if err != nil {
			minified = content
		}

		// En-têtes de cache pour CSS et JS
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Header("ETag", generateETag(minified))

		c.Data(http.StatusOK, contentType, minified)
	}
}

// Fonction helper pour générer un ETag
func generateETag(content []byte) string {
	hash := sha256.Sum256(content)
	return fmt.Sprintf(`"%x"`, hash[:16])
}
