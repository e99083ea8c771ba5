package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	MongoURI      string
	MongoDatabase string

	RedisURL string

	JWTSecret         string
	AccessTokenMaxAge int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	BrevoAPIKey     string
	MailSenderEmail string
	MailSenderName  string

	GoogleClientID string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 3600
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	mongoDatabase := os.Getenv("MONGODB_DATABASE")
	if mongoDatabase == "" {
		mongoDatabase = "vibeshare"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	mailSenderName := os.Getenv("MAIL_SENDER_NAME")
	if mailSenderName == "" {
		mailSenderName = "VibeShare"
	}

	return &Config{
		ServerPort: serverPort,

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: mongoDatabase,

		RedisURL: redisURL,

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: accessTokenMaxAge,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		MailSenderEmail: os.Getenv("MAIL_SENDER_EMAIL"),
		MailSenderName:  mailSenderName,

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
	}, nil
}
