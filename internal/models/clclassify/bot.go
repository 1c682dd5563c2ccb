package clclassify

import (
	"regexp"
	"strings"

	"github.com/mssola/useragent"
)

// Patterns de robots non couverts par le parsing user-agent
var botPatterns = []string{
	// Crawlers des moteurs de recherche
	`googlebot`, `bingbot`, `yandexbot`, `baiduspider`, `duckduckbot`,
	`slurp`, `sogou`, `exabot`, `ia_archiver`,

	// Crawlers des réseaux sociaux
	`facebookexternalhit`, `twitterbot`, `linkedinbot`, `pinterest`,
	`whatsapp`, `telegrambot`, `slackbot`, `discordbot`,

	// Monitoring et SEO
	`pingdom`, `uptimerobot`, `statuscake`, `site24x7`,
	`ahrefs`, `semrush`, `majestic`, `screaming`,

	// Automatisation
	`headless`, `phantom`, `puppeteer`, `selenium`, `playwright`,
	`webdriver`, `cypress`,

	// Indicateurs génériques
	`bot`, `crawler`, `spider`, `scraper`, `curl`, `wget`,
	`python-requests`, `go-http-client`, `okhttp`, `libwww`,
}

var browserIndicators = []string{
	"mozilla", "chrome", "safari", "firefox", "edge", "opera",
}

type PatternBotDetector struct {
	pattern *regexp.Regexp
}

func NewBotDetector() *PatternBotDetector {
	return &PatternBotDetector{
		pattern: regexp.MustCompile(`(?i)(` + strings.Join(botPatterns, "|") + `)`),
	}
}

// Detect retourne true si le user-agent ressemble à un robot.
// Un user-agent vide est considéré comme suspect.
func (d *PatternBotDetector) Detect(userAgentString string) (bool, error) {
	if userAgentString == "" {
		return true, nil
	}

	ua := useragent.New(userAgentString)
	if ua.Bot() {
		return true, nil
	}

	lowered := strings.ToLower(userAgentString)
	if d.pattern.MatchString(lowered) {
		return true, nil
	}

	// Pas d'indicateur navigateur et user-agent très court : probablement un robot
	for _, indicator := range browserIndicators {
		if strings.Contains(lowered, indicator) {
			return false, nil
		}
	}
	if len(userAgentString) < 50 {
		return true, nil
	}

	return false, nil
}
