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

// Bewertet die Daten-Links einer Eingabe-CSV und schreibt Ergebnis-CSV
// plus Lauf-Log unter OUTPUT_DIR/data_fair_assessment/.
func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if len(os.Args) != 2 {
		fmt.Println("Usage: assess <input_csv>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Ohne Datenbank: der CLI-Lauf schreibt nur CSV und Log.
	service := services.NewAssessmentService(cfg, nil, logging)
	result, err := service.RunFile(context.Background(), os.Args[1], 0)
	if err != nil {
		logging.Fatal("Bewertungslauf fehlgeschlagen", zap.Error(err))
	}

	fmt.Println("Results saved to: " + result.OutputCSV)
	fmt.Println("Log saved to: " + result.LogFile)
}
