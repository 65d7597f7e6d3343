// Verifies the configured sheet endpoint: runs each read action once and
// prints what came back. Run it after deploying a new Apps Script version.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"energy-checklist-bot/internal/cache"
	"energy-checklist-bot/internal/schedule"
	"energy-checklist-bot/internal/sheetapi"
)

func main() {
	fmt.Println("🚀 Sheet Endpoint Check")
	fmt.Println("=======================")

	godotenv.Load()

	url := os.Getenv("SHEET_API_URL")
	if url == "" {
		fmt.Println("❌ SHEET_API_URL not set")
		fmt.Println("\nPlease set:")
		fmt.Println("  export SHEET_API_URL=https://script.google.com/macros/s/.../exec")
		os.Exit(1)
	}
	fmt.Printf("Endpoint: %s\n\n", url)

	zlog, _ := zap.NewDevelopment()
	client := sheetapi.New(url, cache.NewMemoryStore(), sheetapi.DefaultTTL, zlog)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	today := time.Now().Format(schedule.DateFormat)

	status := client.GetTodayStatus(ctx, today)
	fmt.Printf("✅ getTodayStatus(%s): %d building(s)\n", today, len(status))

	records := client.GetRecords(ctx, today)
	fmt.Printf("✅ getRecords(%s): %d row(s)\n", today, len(records))

	scores := client.GetScores(ctx)
	fmt.Printf("✅ getScores: %d row(s)\n", len(scores))

	all := client.GetAllData(ctx, today)
	fmt.Printf("✅ getAllData(%s): status=%d records=%d scores=%d\n",
		today, len(all.Status), len(all.Records), len(all.Scores))

	fmt.Println("\nDone. Empty results can mean either no data or an endpoint")
	fmt.Println("problem; check the Apps Script execution log if in doubt.")
}
