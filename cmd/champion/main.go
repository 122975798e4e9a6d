package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/report"
	"fair-audit/services"
)

// Liest eine Publikationsliste (.docx oder Textdatei), bewertet jede
// Publikation und kürt den FAIR Champion auf der Konsole.
func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if len(os.Args) != 2 {
		fmt.Println("Usage: champion <publication_list.docx>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	service := services.NewChampionService(cfg, logging)
	result, err := service.RunFile(context.Background(), os.Args[1])
	if err != nil {
		logging.Fatal("Champion-Lauf fehlgeschlagen", zap.Error(err))
	}

	fmt.Println("Results written to: " + result.OutputCSV)

	if result.Champion == nil {
		fmt.Println("No FAIR data availability statements found.")
		return
	}

	c := result.Champion
	fmt.Println()
	fmt.Println("FAIR Champion")
	fmt.Println("Title: " + c.Meta.Title)
	fmt.Println("Authors: " + c.Meta.Authors)
	fmt.Println("Journal: " + c.Meta.Journal)
	fmt.Println("DOI: " + c.DOI)
	fmt.Println("Is Open Access: " + report.FlagString(c.Meta.IsOpenAccess))
	fmt.Println("Has Data: " + report.FlagString(c.Meta.HasData))
	fmt.Printf("FAIR Score: %d/4\n", c.Score)
}
