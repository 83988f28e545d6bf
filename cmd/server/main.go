package main

import (
	"fmt"
	"os"

	"github.com/tma-tanlov/backend/internal/app"
)

func main() {
	fmt.Println("app starting")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/values_example.yaml"
	}

	a, err := app.NewApp(configPath)
	if err != nil {
		panic(err)
	}

	if err := a.ListenAndServe(); err != nil {
		panic(err)
	}
}
