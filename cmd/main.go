package main

import (
	"fmt"
	"os"

	"github.com/yungbote/healthyback-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Log.Info("Server listening", "port", application.Cfg.Port)
	if err := application.Run(":" + application.Cfg.Port); err != nil {
		application.Log.Error("Server failed", "error", err)
	}
}
