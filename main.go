package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sadopc/macrotrend/internal/logging"
	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/tui"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment and defaults still apply.
	_ = godotenv.Load()

	dbPath := os.Getenv("MACROTREND_DB")
	if dbPath == "" {
		var err error
		if dbPath, err = store.DefaultDBPath(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	logPath := os.Getenv("MACROTREND_LOG")
	if logPath == "" {
		var err error
		if logPath, err = logging.DefaultPath(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	debug, _ := strconv.ParseBool(os.Getenv("MACROTREND_DEBUG"))

	logger, err := logging.New(logPath, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	s, err := store.New(dbPath)
	if err != nil {
		logger.Error("open database", zap.String("path", dbPath), zap.Error(err))
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	readings, err := s.WeightLog().Count(context.Background())
	if err != nil {
		logger.Warn("count weights", zap.Error(err))
	}
	logger.Info("started", zap.String("db", dbPath), zap.Int("readings", readings), zap.Bool("debug", debug))

	app := tui.NewApp(s, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
