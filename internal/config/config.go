package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port       string
	DBDSN      string
	LogFile    string
	LowStockAt int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "scanlane.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./scanlane.log" // default log sink in project root
	}
	lowAt := 5
	if v := os.Getenv("LOW_STOCK_AT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			lowAt = n
		}
	}

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, LowStockAt: lowAt}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOW_STOCK_AT=%d", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LowStockAt)
	return cfg
}
