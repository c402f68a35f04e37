package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"doorsim/adapters/rng"
	"doorsim/app"
	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/internal/config"
	"doorsim/internal/export"
	"doorsim/internal/logging"
	"doorsim/internal/runner"
	"doorsim/internal/statistics"
	"doorsim/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	logger := logging.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	games := flag.Int("games", cfg.Simulation.DefaultTotalGames, "total games to simulate")
	chunk := flag.Int("chunk", cfg.Simulation.DefaultChunkSize, "trials per chunk")
	seed := flag.Int64("seed", cfg.Simulation.Seed, "random seed (0 = from clock)")
	strategiesFlag := flag.String("strategies", "stay,switch", "comma-separated strategies")
	format := flag.String("format", "", "export result to stdout (json or csv)")
	confidence := flag.Float64("confidence", 0.95, "confidence level for intervals")
	fast := flag.Bool("fast", cfg.Simulation.FastMode, "skip inter-chunk yields")
	flag.Parse()

	strategies, err := parseStrategies(*strategiesFlag)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	yielder := ports.Yielder(runner.GoschedYielder)
	if *fast {
		yielder = runner.FastYielder
	}

	service := app.NewSimulationService(
		runner.New(rng.NewSeededAdapter(), yielder, logger),
		statistics.NewEngine(*confidence),
		export.NewExporter(),
		nil,
		logger,
	)

	result, err := service.Run(context.Background(), runner.RunRequest{
		TotalGames: *games,
		Strategies: strategies,
		ChunkSize:  *chunk,
		Seed:       *seed,
		OnProgress: ports.ProgressFunc(func(p simulation.Progress) {
			logger.Debug("progress: %d/%d (%.1f%%) %s", p.Completed, p.Total, p.Percentage, p.Strategy)
		}),
	})
	if err != nil {
		logger.Error("simulation failed: %v", err)
		os.Exit(1)
	}

	if *format != "" {
		payload, err := service.Export(*format)
		if err != nil {
			logger.Error("export failed: %v", err)
			os.Exit(1)
		}
		os.Stdout.Write(payload)
		return
	}

	printSummary(result)
}

func parseStrategies(raw string) ([]game.Strategy, error) {
	tokens := strings.Split(raw, ",")
	strategies := make([]game.Strategy, 0, len(tokens))
	for _, token := range tokens {
		strategy, err := game.ParseStrategy(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}

func printSummary(result *simulation.SimulationResult) {
	fmt.Printf("Run %s: %d games in %s\n\n", result.RunID, result.TotalGames, result.Duration)
	for _, strategy := range result.Strategies {
		batch := result.PerStrategy[strategy]
		fmt.Printf("%-7s played %d, won %d (%.4f observed vs %.4f theoretical)\n",
			strategy, batch.Played, batch.Won, batch.ObservedWinRate(), strategy.TheoreticalWinRate())

		stats, ok := result.Statistics[strategy]
		if !ok {
			continue
		}
		fmt.Printf("        %.1f%% CI [%.4f, %.4f], z=%.3f, p=%.5f, adequacy=%s\n",
			stats.Interval.ConfidenceLevel*100, stats.Interval.Lower, stats.Interval.Upper,
			stats.Hypothesis.ZStatistic, stats.Hypothesis.PValue, stats.Adequacy.Rating)
		milestones, _ := json.Marshal(stats.Convergence.Milestones)
		fmt.Printf("        convergence rate %.6f, milestones %s\n",
			stats.Convergence.ConvergenceRate, milestones)
	}
}
