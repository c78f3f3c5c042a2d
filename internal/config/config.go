package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr           string
	DatasetPath    string
	StorageBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	MongoURI       string
	MongoDatabase  string
	RabbitURI      string
	RabbitExchange string
}

func New() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		Addr:           getEnv("ADDR", ":6666"),
		DatasetPath:    getEnv("DATASET_PATH", "assets/questions.json"),
		StorageBackend: getEnv("STORAGE_BACKEND", "redis"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PWD", ""),
		RedisDB:        redisDB,
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DB", "quizbox"),
		RabbitURI:      getEnv("RABBITMQ_URI", ""),
		RabbitExchange: getEnv("RABBITMQ_EXCHANGE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
