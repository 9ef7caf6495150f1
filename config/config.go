package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

// DefaultKeywords reproduces the reference collection run.
const DefaultKeywords = "Medical AI|1000|5|70;Trust in AI diagnostics|1000|5|50;AI in medicine|1000|5|50"

type KeywordJob struct {
	Keyword     string `validate:"required"`
	PageSize    int    `validate:"gte=1"`
	PageCount   int    `validate:"gte=1"`
	MaxComments int    `validate:"gte=0"`
}

type AppConfig struct {
	AppEnv             string // EnvDevelopment or EnvProduction
	LogLevel           slog.Level
	Source             string       `validate:"oneof=reddit arcticshift"`
	Keywords           []KeywordJob `validate:"required,min=1,dive"`
	OutputPath         string       `validate:"required"`
	PostsOutputPath    string
	RedditClientID     string `validate:"required_with=RedditClientSecret"`
	RedditClientSecret string `validate:"required_with=RedditClientID"`
	UserAgent          string `validate:"required"`
	Subreddit          string
	ProxyURLs          []string `validate:"dive,url"`
	MatchMode          string   `validate:"oneof=any broad exact"`
	Subreddits         []string
	ExcludeSubreddits  []string
	CommentLanguages   []string
	Parallelism        int    `validate:"gte=1,lte=16"`
	StoreDriver        string `validate:"omitempty,oneof=postgres sqlite3"`
	StoreURL           string `validate:"required_with=StoreDriver"`
	MetricsPath        string
	SMTPHost           string `validate:"required_with=NotifyEmail"`
	SMTPPort           string `validate:"required_with=SMTPHost"`
	SMTPFrom           string `validate:"required_with=SMTPHost"`
	SMTPPassword       string
	NotifyEmail        string `validate:"omitempty,email"`
	HTTPTimeout        time.Duration
}

var Config AppConfig

// LoadConfig populates Config from the environment and exits on invalid
// settings.
func LoadConfig() {
	cfg, err := Load(os.Getenv)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	Config = cfg
}

func Load(getenv func(string) string) (AppConfig, error) {
	cfg := AppConfig{}
	var err error

	cfg.AppEnv = getenv("APP_ENV")
	cfg.Source = loadOptional(getenv, "SOURCE", "reddit")
	cfg.Keywords, err = ParseKeywordJobs(loadOptional(getenv, "KEYWORDS", DefaultKeywords))
	if err != nil {
		return AppConfig{}, err
	}
	cfg.OutputPath = loadOptional(getenv, "OUTPUT_PATH", "all_comments.csv")
	cfg.PostsOutputPath = getenv("POSTS_OUTPUT_PATH")
	cfg.RedditClientID = getenv("REDDIT_CLIENT_ID")
	cfg.RedditClientSecret = getenv("REDDIT_CLIENT_SECRET")
	cfg.UserAgent = loadOptional(getenv, "USER_AGENT", "feedgrep-dataset/1.0")
	cfg.Subreddit = getenv("SUBREDDIT")
	cfg.ProxyURLs = splitList(getenv("PROXY_URLS"))
	cfg.MatchMode = loadOptional(getenv, "MATCH_MODE", "any")
	cfg.Subreddits = splitList(getenv("SUBREDDITS"))
	cfg.ExcludeSubreddits = splitList(getenv("EXCLUDE_SUBREDDITS"))
	cfg.CommentLanguages = splitList(getenv("COMMENT_LANGUAGES"))
	cfg.StoreDriver = getenv("STORE_DRIVER")
	cfg.StoreURL = getenv("STORE_URL")
	cfg.MetricsPath = getenv("METRICS_PATH")
	cfg.SMTPHost = getenv("SMTP_HOST")
	cfg.SMTPPort = getenv("SMTP_PORT")
	cfg.SMTPFrom = getenv("SMTP_FROM")
	cfg.SMTPPassword = getenv("SMTP_PASSWORD")
	cfg.NotifyEmail = getenv("NOTIFY_EMAIL")

	cfg.Parallelism, err = loadInt(getenv, "PARALLELISM", 1)
	if err != nil {
		return AppConfig{}, err
	}
	timeoutSeconds, err := loadInt(getenv, "HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	lvlString := loadOptional(getenv, "LOG_LEVEL", "INFO")
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ParseKeywordJobs parses "keyword|pageSize|pageCount|maxComments" entries
// separated by ";". Omitted numbers fall back to 1000, 5 and 70.
func ParseKeywordJobs(s string) ([]KeywordJob, error) {
	jobs := make([]KeywordJob, 0, 3)
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) > 4 {
			return nil, fmt.Errorf("keyword job %q: too many fields", entry)
		}

		job := KeywordJob{Keyword: strings.TrimSpace(parts[0]), PageSize: 1000, PageCount: 5, MaxComments: 70}
		targets := []*int{&job.PageSize, &job.PageCount, &job.MaxComments}
		for i, raw := range parts[1:] {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("keyword job %q: %w", entry, err)
			}
			*targets[i] = n
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadOptional(getenv func(string) string, key, defaultValue string) string {
	value := getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func loadInt(getenv func(string) string, key string, defaultValue int) (int, error) {
	value := getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
