package main

import (
	"log"
	"os"

	"github.com/tma-tanlov/backend/internal/app"
)

// Отдельный запуск бота результатов без HTTP API.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/values_example.yaml"
	}

	a, err := app.NewApp(configPath)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if err := a.ListenAndServeTelegram(); err != nil {
		log.Fatalf("failed to start bot: %v", err)
	}

	select {}
}
