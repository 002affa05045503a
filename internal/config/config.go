package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"`       // local, cloudflare_r2
		BasePath   string `yaml:"base_path"`  // For local storage
		BaseURL    string `yaml:"base_url"`   // Public URL base
		Bucket     string `yaml:"bucket"`     // For R2
		AccessKey  string `yaml:"access_key"` // For R2
		SecretKey  string `yaml:"secret_key"` // For R2
		Endpoint   string `yaml:"endpoint"`   // For R2
		PublicRead bool   `yaml:"public_read"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`      // Max file size in bytes
		AllowedTypes []string `yaml:"allowed_types"` // Allowed MIME types
	} `yaml:"upload"`

	// Pricing задает прайс-таблицу режимов фидбека.
	// Суммы в центах, чтобы не плавать на float.
	Pricing PricingConfig `yaml:"pricing"`

	// Scoring задает веса скоринга заявок. Политика, не константы кода.
	Scoring ScoringConfig `yaml:"scoring"`

	// Selection описывает окно ручного выбора и расписание авто-выбора.
	Selection SelectionConfig `yaml:"selection"`
}

type PricingModeConfig struct {
	BasePrice     int `yaml:"base_price"`     // cents per roaster
	FreeQuestions int `yaml:"free_questions"` // questions included in base price
	QuestionPrice int `yaml:"question_price"` // cents per extra question
	MaxQuestions  int `yaml:"max_questions"`  // hard cap, 0 = no questions allowed
}

type PricingConfig struct {
	Free             PricingModeConfig `yaml:"free"`
	Targeted         PricingModeConfig `yaml:"targeted"`
	Structured       PricingModeConfig `yaml:"structured"`
	UrgencySurcharge int               `yaml:"urgency_surcharge"` // cents per roaster
}

type ScoringConfig struct {
	FocusMatchWeight     int `yaml:"focus_match_weight"`
	ExperienceWeight     int `yaml:"experience_weight"`
	RatingWeight         int `yaml:"rating_weight"`
	LevelWeight          int `yaml:"level_weight"`
	CompletionRateWeight int `yaml:"completion_rate_weight"`
}

type SelectionConfig struct {
	WindowHours int    `yaml:"window_hours"` // manual-selection window, default 24
	SweepCron   string `yaml:"sweep_cron"`   // 5-field cron spec for the worker
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Загрузка конфигурации из переменных окружения (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	cfg.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	cfg.Upload.AllowedTypes = []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
	}

	applyDefaults(&cfg)
	AppConfig = &cfg
}

// applyDefaults заполняет прайс-таблицу, веса скоринга и окно выбора,
// если они не заданы в конфиге.
func applyDefaults(cfg *Config) {
	if cfg.Pricing.Targeted.BasePrice == 0 {
		cfg.Pricing = PricingConfig{
			Free:             PricingModeConfig{BasePrice: 0, FreeQuestions: 0, QuestionPrice: 0, MaxQuestions: 0},
			Targeted:         PricingModeConfig{BasePrice: 500, FreeQuestions: 3, QuestionPrice: 100, MaxQuestions: 10},
			Structured:       PricingModeConfig{BasePrice: 1500, FreeQuestions: 5, QuestionPrice: 200, MaxQuestions: 20},
			UrgencySurcharge: 500,
		}
	}

	if cfg.Scoring.FocusMatchWeight == 0 {
		// Веса в сумме дают 100, итоговый скор 0-100.
		cfg.Scoring = ScoringConfig{
			FocusMatchWeight:     35,
			ExperienceWeight:     15,
			RatingWeight:         20,
			LevelWeight:          15,
			CompletionRateWeight: 15,
		}
	}

	if cfg.Selection.WindowHours == 0 {
		cfg.Selection.WindowHours = 24
	}
	if cfg.Selection.SweepCron == "" {
		// Каждые 5 минут: дедлайн обрабатывается с точностью до тика.
		cfg.Selection.SweepCron = "*/5 * * * *"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
