package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr         string
	WorkbookPath       string
	Gateway            string // "whatsmeow" or "twilio"
	SessionDBPath      string
	FollowUpInterval   time.Duration
	MaxReminders       int
	DefaultKickLimit   int
	SendingWindowStart string
	SendingWindowEnd   string
	Twilio             *TwilioConfig
	S3Config           *S3Config
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string // e.g. "whatsapp:+1415..."
}

type S3Config struct {
	AccessKey  string
	SecretKey  string
	BucketName string
	ServiceUrl string
	BucketUrl  string
}

func NewConfig() *Config {
	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8081"),
		WorkbookPath:       getEnv("WORKBOOK_PATH", "tech-entry.xlsx"),
		Gateway:            getEnv("GATEWAY", "whatsmeow"),
		SessionDBPath:      getEnv("SESSION_DB_PATH", "whatsapp-session.db"),
		FollowUpInterval:   getEnvDuration("FOLLOW_UP_INTERVAL", 48*time.Hour),
		MaxReminders:       getEnvInt("MAX_REMINDERS", 3),
		DefaultKickLimit:   getEnvInt("DEFAULT_KICK_LIMIT", 20),
		SendingWindowStart: getEnv("SENDING_WINDOW_START", "09:00"),
		SendingWindowEnd:   getEnv("SENDING_WINDOW_END", "17:00"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_WHATSAPP_FROM", ""),
		},
		S3Config: &S3Config{
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
			BucketName: getEnv("S3_BUCKET_NAME", ""),
			ServiceUrl: getEnv("S3_SERVICE_URL", "https://s3.amazonaws.com"),
			BucketUrl:  getEnv("S3_BUCKET_URL", ""),
		},
	}
}

// InSendingWindow reports whether t falls inside the configured local-time
// window for outbound contact.
func (c *Config) InSendingWindow(t time.Time) bool {
	start, okStart := parseClock(c.SendingWindowStart)
	end, okEnd := parseClock(c.SendingWindowEnd)
	if !okStart || !okEnd {
		return true
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= start && minutes <= end
}

func parseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	hh, err1 := strconv.Atoi(s[:2])
	mm, err2 := strconv.Atoi(s[3:])
	if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
