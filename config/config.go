package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	JWTSecret string
	TokenTTL  time.Duration

	IncentivePerCompletion int64

	CloudinaryURL string

	SendgridAPIKey    string
	SendgridFromName  string
	SendgridFromEmail string
	ReminderSchedule  string

	StripeSecretKey string

	KafkaBrokers []string
	KafkaTopic   string

	DonationBank models.BankTransferDetails
}

// New sets up all config related services. Values in a local .env file are
// loaded first but never override variables already present in the environment.
func New() *Config {
	_ = godotenv.Load()

	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: getenv("DB_NAME", "relief"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         getenv("PORT", "8080"),
		Env:          env,

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getDuration("TOKEN_TTL", time.Hour),

		IncentivePerCompletion: getInt("INCENTIVE_PER_COMPLETION", 500),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendgridFromName:  getenv("SENDGRID_FROM_NAME", "Relief Coordination"),
		SendgridFromEmail: getenv("SENDGRID_FROM", "no-reply@relief-coordination.org"),
		ReminderSchedule:  getenv("REMINDER_SCHEDULE", "0 9 * * *"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "relief.notifications"),

		DonationBank: models.BankTransferDetails{
			AccountName:   os.Getenv("DONATION_BANK_ACCOUNT_NAME"),
			AccountNumber: os.Getenv("DONATION_BANK_ACCOUNT_NUMBER"),
			IFSCCode:      os.Getenv("DONATION_BANK_IFSC"),
			BankName:      os.Getenv("DONATION_BANK_NAME"),
			UpiID:         os.Getenv("DONATION_UPI_ID"),
		},
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err. The err is only logged, the client gets the
// message.
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With("error", err, "status", httpStatusCode).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Status: httpStatusCode, Message: message})
	_, _ = w.Write(b)
}

// WriteData writes the success envelope {status, data}.
func WriteData(w http.ResponseWriter, httpStatusCode int, data interface{}) {
	b, err := json.Marshal(models.DataResponse{Status: httpStatusCode, Data: data})
	if err != nil {
		ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_, _ = w.Write(b)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		zap.S().Warnw("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getInt(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		zap.S().Warnw("invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
