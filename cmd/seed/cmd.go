// Command seed prints the generated mock dataset as JSON.
package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/config"
	"github.com/GregMSThompson/atm-backend/internal/mockdata"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

func main() {
	cfg := config.New()
	log := logger.New(cfg.LogLevel, logger.NewJSONHandler)

	gen := mockdata.New(cfg.MockSeed, time.Now, cfg.Location)
	ds := gen.Dataset()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		log.Error("encode dataset failed", "error", err)
		os.Exit(1)
	}
	log.Debug("dataset written", slog.Int("atms", len(ds.ATMs)), slog.Int("transactions", len(ds.User.Transactions)))
}
