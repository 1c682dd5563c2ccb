package clconfig

import (
	"fmt"
	"log/syslog"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TrustedProxies  []string       `yaml:"trustedproxies"`
	TrustedPlatform string         `yaml:"trustedplatform"`
	Database        DatabaseConfig `yaml:"database"`
	StaticPath      string         `yaml:"staticpath"`
	Production      bool           `yaml:"production"`
	Listen          ListenConfig   `yaml:"listen"`
	Logger          LoggerConfig   `yaml:"logger"`
	Site            SiteConfig     `yaml:"site"`
	GeoIP           GeoIPConfig    `yaml:"geoip"`
	User            UserConfig     `yaml:"user"`
}

type SiteConfig struct {
	Name        string          `yaml:"sitename"`
	Description string          `yaml:"description"`
	About       string          `yaml:"about"`
	Menu        []MenuItem      `yaml:"menu"`
	Services    []ServiceConfig `yaml:"services"`
}

// ServiceConfig décrit une entrée du catalogue de services
type ServiceConfig struct {
	Id          uint     `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Icon        string   `yaml:"icon" json:"icon"`
	Features    []string `yaml:"features" json:"features"`
}

type LoggerConfig struct {
	Level  string             `yaml:"level"`
	File   LoggerFileConfig   `yaml:"file"`
	Syslog LoggerSyslogConfig `yaml:"syslog"`
}

type LoggerFileConfig struct {
	Enable     bool   `yaml:"enable"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxsize"`
	MaxBackups int    `yaml:"maxbackups"`
	MaxAge     int    `yaml:"maxage"`
	Compress   bool   `yaml:"compress"`
}

type LoggerSyslogConfig struct {
	Enable   bool            `yaml:"enable"`
	Protocol string          `yaml:"protocol"`
	Address  string          `yaml:"address"`
	Tag      string          `yaml:"tag"`
	Priority syslog.Priority `yaml:"priority"`
}

type ListenConfig struct {
	Website string `yaml:"website"`
}

type UserConfig struct {
	Login string `yaml:"login"`
	Pass  string `yaml:"pass"`
	Hash  string `yaml:"hash"`
}

type DatabaseConfig struct {
	Redis RedisConfig `yaml:"redis"`
	Db    string      `yaml:"db"`
	Path  string      `yaml:"path"`
	Dsn   string      `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	Db   int    `yaml:"db"`
}

// GeoIPConfig pointe vers la base GeoLite2 Country (optionnelle)
type GeoIPConfig struct {
	Path string `yaml:"path"`
}

type MenuItem struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
	Link  string `yaml:"link"`
}

func CreateExampleConfig(filename string) (string, error) {
	example := &Config{
		Database: DatabaseConfig{
			Db:   "sqlite",
			Path: "./littlesite.db",
		},
		User: UserConfig{
			Login: "admin",
			Pass:  "admin1234",
		},
		StaticPath: "./static",
		Production: false,
		Logger: LoggerConfig{
			Level: "info",
			File: LoggerFileConfig{
				Enable: false,
			},
			Syslog: LoggerSyslogConfig{
				Enable: false,
			},
		},
		Listen: ListenConfig{
			Website: "0.0.0.0:8080",
		},
		Site: SiteConfig{
			Name:        "Littlesite",
			Description: "Bienvenue sur notre site vitrine !",
			About:       "## Qui sommes-nous\n\nUne petite agence qui construit des applications web. :rocket:\n",
			Menu: []MenuItem{
				{Key: "/", Value: "Accueil"},
				{Key: "/about", Value: "A propos"},
				{Key: "/contact", Value: "Contact"},
			},
			Services: []ServiceConfig{
				{
					Id:          1,
					Title:       "Web Development",
					Description: "Custom web applications with modern frameworks",
					Icon:        "💻",
					Features:    []string{"Responsive Design", "API Integration", "Performance Optimization"},
				},
				{
					Id:          2,
					Title:       "Data Analytics",
					Description: "Transform your data into actionable insights",
					Icon:        "📊",
					Features:    []string{"Real-time Dashboards", "Predictive Modeling", "Data Visualization"},
				},
				{
					Id:          3,
					Title:       "Cloud Solutions",
					Description: "Scalable cloud infrastructure and deployment",
					Icon:        "☁️",
					Features:    []string{"AWS/Azure/GCP", "Containerization", "Serverless Architecture"},
				},
				{
					Id:          4,
					Title:       "AI Integration",
					Description: "Intelligent solutions with machine learning",
					Icon:        "🤖",
					Features:    []string{"Chatbots", "Computer Vision", "Natural Language Processing"},
				},
			},
		},
	}

	if filename == "/etc/" {
		example.Listen.Website = "127.0.0.1:8000"
		example.Production = true
		example.Database.Path = "/var/lib/littlesite/sqlite.db"
		example.StaticPath = "/var/lib/littlesite/static"
		example.Logger.File = LoggerFileConfig{
			Enable:     true,
			Path:       "/var/log/littlesite/littlesite.log",
			MaxSize:    100,
			MaxBackups: 30,
			MaxAge:     7,
			Compress:   true,
		}
		filename = "/etc/littlesite/config.yaml"
	}

	return filename, WriteConfigYaml(filename, example)
}

func WriteConfigYaml(filename string, conf *Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// Charger la configuration YAML
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("impossible de lire le fichier %s: %v", filename, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("erreur de parsing YAML: %v", err)
	}

	if config.Database.Db == "" {
		config.Database.Db = "sqlite"
	}

	return &config, nil
}

func CreateExample(shouldCreateExample bool, configFile string) {
	// Handle example creation
	if shouldCreateExample {
		if err := handleExampleCreation(configFile); err != nil {
			fmt.Printf("❌ %v\n", err)
		}
		os.Exit(1)
	}

	_, err := os.Stat(configFile)
	if err != nil && os.IsNotExist(err) {
		if err := handleExampleCreation(configFile); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}
}

func handleExampleCreation(filename string) error {
	if filename == "" {
		filename = "littlesite.yaml"
	}
	filename, err := CreateExampleConfig(filename)
	if err != nil {
		return fmt.Errorf("erreur création exemple: %v", err)
	}

	fmt.Printf("✅ Fichier exemple créé: %s\n", filename)
	fmt.Println("⚠️  User.pass sera automatiquement hash en argon2 dans User.hash au premier lancement")
	return nil
}
