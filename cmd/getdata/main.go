package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/services"
)

// Holt zu den DOIs einer Publikationsliste die Open-Access-Metadaten
// von Unpaywall und lädt PDF- und XML-Volltexte herunter.
func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if len(os.Args) != 2 {
		fmt.Println("Usage: getdata <input_docx>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	if cfg.UnpaywallEmail == "" {
		logging.Fatal("UNPAYWALL_EMAIL ist nicht gesetzt")
	}

	service := services.NewGetDataService(cfg, logging)
	result, err := service.RunFile(context.Background(), os.Args[1])
	if err != nil {
		logging.Fatal("Download-Lauf fehlgeschlagen", zap.Error(err))
	}

	if result.OutputCSV == "" {
		fmt.Println("No data to write to CSV.")
		return
	}
	fmt.Println("CSV saved to: " + result.OutputCSV)
}
