// Load envs from .env
// Load YAML config over the defaults
// Validate config
// Build the engine settings

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"go-openclaw-highlighter/internal/cards"
	"go-openclaw-highlighter/internal/engine"
	"go-openclaw-highlighter/internal/filter"
	"go-openclaw-highlighter/internal/highlight"
	"go-openclaw-highlighter/internal/locator"
	"go-openclaw-highlighter/internal/monitor"
	"go-openclaw-highlighter/internal/theme"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	Port           string `yaml:"port" env:"PORT"`

	//Keywords
	KeywordsPath   string   `yaml:"keywords_path" env:"JOBHL_KEYWORDS_PATH"`
	SensitiveTerms []string `yaml:"sensitive_terms"`
	//Look
	MarkerClass   string `yaml:"marker_class"`
	DarkModeClass string `yaml:"dark_mode_class"`

	Debounce Debounce `yaml:"debounce"`
	Acquire  Acquire  `yaml:"acquire"`
	Locators Locators `yaml:"locators"`
	Browser  Browser  `yaml:"browser"`
}

type Debounce struct {
	Cards       time.Duration `yaml:"cards"`
	Description time.Duration `yaml:"description"`
}

// Acquire bounds how long a monitor polls for its target.
type Acquire struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Locators are CSS selector lists, tried in order.
type Locators struct {
	JobTitle       []string `yaml:"job_title"`
	Status         []string `yaml:"status"`
	TitleContainer []string `yaml:"title_container"`
	CardText       []string `yaml:"card_text"`
	Description    []string `yaml:"description"`
	Card           []string `yaml:"card"`
	CardList       []string `yaml:"card_list"`
}

type Browser struct {
	URL           string `yaml:"url" env:"JOBHL_URL"`
	Headless      bool   `yaml:"headless" env:"JOBHL_HEADLESS"`
	CookiesPath   string `yaml:"cookies_path"`
	SnapshotPath  string `yaml:"snapshot_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns the built-in settings for the current job-site markup.
func Default() *Config {
	return &Config{
		Port:           "8080",
		KeywordsPath:   "configs/keywords.yaml",
		SensitiveTerms: append([]string(nil), filter.DefaultSensitiveTerms...),
		MarkerClass:    highlight.DefaultMarkerClass,
		DarkModeClass:  theme.DefaultDarkClass,
		Debounce: Debounce{
			Cards:       engine.DefaultCardDebounce,
			Description: engine.DefaultDescriptionDebounce,
		},
		Acquire: Acquire{
			Interval: monitor.DefaultPollInterval,
			Timeout:  monitor.DefaultPollTimeout,
		},
		Locators: Locators{
			JobTitle:       append([]string(nil), cards.DefaultTitleSelectors...),
			Status:         []string{cards.DefaultStatusSelector},
			TitleContainer: []string{cards.DefaultTitleContainerSelector},
			CardText:       append([]string(nil), cards.DefaultTextSelectors...),
			Description:    []string{engine.DefaultDescriptionSelector},
			Card:           []string{engine.DefaultCardSelector},
			CardList:       []string{engine.DefaultCardListSelector},
		},
		Browser: Browser{
			Headless:      true,
			CookiesPath:   ".cookies/cookies.json",
			ScreenshotDir: "screenshots",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file only logs a warning.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	//Load yaml config
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Could not read %s, using defaults: %v", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if p := os.Getenv("JOBHL_KEYWORDS_PATH"); p != "" {
		cfg.KeywordsPath = p
	}
	if url := os.Getenv("JOBHL_URL"); url != "" {
		cfg.Browser.URL = url
	}
	if headless := os.Getenv("JOBHL_HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return nil, fmt.Errorf("invalid JOBHL_HEADLESS: %w", err)
		}
		cfg.Browser.Headless = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TelegramEnabled reports whether the keyword bot can run.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Validate checks timings and that every locator compiles.
func (c *Config) Validate() error {
	if c.Debounce.Cards <= 0 || c.Debounce.Description <= 0 {
		return errors.New("debounce windows must be positive")
	}
	if c.Acquire.Interval <= 0 || c.Acquire.Timeout <= 0 {
		return errors.New("acquire interval and timeout must be positive")
	}
	if c.Acquire.Timeout < c.Acquire.Interval {
		return fmt.Errorf("acquire timeout %v is shorter than interval %v", c.Acquire.Timeout, c.Acquire.Interval)
	}
	if c.KeywordsPath == "" {
		return errors.New("keywords_path is required")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		log.Println("⚠️ Telegram needs both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID, bot disabled")
	}
	_, err := c.Engine()
	return err
}

// Engine builds the engine settings, compiling every locator.
func (c *Config) Engine() (engine.Config, error) {
	ec := engine.DefaultConfig()
	ec.MarkerClass = c.MarkerClass
	ec.Sensitive = c.SensitiveTerms
	ec.DarkClass = c.DarkModeClass
	ec.CardDebounce = c.Debounce.Cards
	ec.DescriptionDebounce = c.Debounce.Description
	ec.PollInterval = c.Acquire.Interval
	ec.PollTimeout = c.Acquire.Timeout

	var err error
	compile := func(name string, selectors []string) locator.Locator {
		if err != nil {
			return locator.Locator{}
		}
		var loc locator.Locator
		if len(selectors) == 0 {
			err = fmt.Errorf("locator %s: no selectors", name)
			return loc
		}
		loc, err = locator.Compile(name, selectors...)
		return loc
	}

	ec.Locators = engine.Locators{
		Card:        compile("card", c.Locators.Card),
		CardList:    compile(engine.TargetCards, c.Locators.CardList),
		Description: compile(engine.TargetDescription, c.Locators.Description),
		Cards: cards.Locators{
			Title:          compile("job_title", c.Locators.JobTitle),
			Status:         compile("status", c.Locators.Status),
			TitleContainer: compile("title_container", c.Locators.TitleContainer),
			Text:           compile("card_text", c.Locators.CardText),
		},
	}
	if err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}
