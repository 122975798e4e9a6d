package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/services"
	"fair-audit/storage"
)

// Routet Publikationen zum zuständigen Verlags-API-Client. Mit einer
// DOI als Argument wird nur geroutet und das Ergebnis als JSON
// ausgegeben; mit einer Dokumentdatei läuft die komplette Pipeline
// (XML abholen, Data-Availability parsen, CSV und Log schreiben).
func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if len(os.Args) != 2 {
		fmt.Println("Usage: router <DOI | input_docx>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	if cfg.ElsevierAPIKey == "" {
		logging.Fatal("ELSEVIER_API_KEY ist nicht gesetzt")
	}

	var s3Client *s3.Client
	if cfg.ArchiveEnabled() {
		s3Client, err = storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
	}

	service := services.NewRouterService(cfg, s3Client, logging)

	// DOIs beginnen immer mit dem Registranten-Präfix "10.".
	arg := os.Args[1]
	if strings.HasPrefix(arg, "10.") {
		reply := service.RouteJSON(arg)
		data, err := json.MarshalIndent(reply, "", "  ")
		if err != nil {
			logging.Fatal("Antwort konnte nicht serialisiert werden", zap.Error(err))
		}
		fmt.Println(string(data))
		return
	}

	result, err := service.RunFile(context.Background(), arg)
	if err != nil {
		logging.Fatal("Routing-Lauf fehlgeschlagen", zap.Error(err))
	}

	fmt.Println("CSV saved to: " + result.OutputCSV)
	fmt.Println("Log saved to: " + result.LogFile)
}
