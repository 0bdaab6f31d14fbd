// Command coke-demo drives the library end to end: a bounded queue fed by
// producer tasks, drained by consumer tasks, shut down with a StopToken,
// with the whole run attributed to one tracing series.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	coke "github.com/kedixa/coke-go"
	"github.com/kedixa/coke-go/csync"
	"github.com/kedixa/coke-go/engine"
	"github.com/kedixa/coke-go/future"
	"github.com/kedixa/coke-go/queue"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Set up logger
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	producers := envInt("COKE_PRODUCERS", 4)
	consumers := envInt("COKE_CONSUMERS", 4)
	perProducer := envInt("COKE_ITEMS", 100)
	capacity := envInt("COKE_QUEUE_CAP", 16)

	coke.InitEngine(engine.Settings{ComputeThreads: envInt("COKE_COMPUTE_THREADS", 0)},
		engine.WithLogger(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})))

	series, sctx := coke.NewSeries(ctx, "coke-demo")
	defer series.End()

	que := queue.NewQueue[string](capacity)
	stop := csync.NewStopToken(consumers)

	logger.Info("starting demo",
		"producers", producers, "consumers", consumers,
		"items_per_producer", perProducer, "queue_capacity", capacity)

	produced := make([]*future.Future[int], producers)
	for i := 0; i < producers; i++ {
		i := i
		produced[i] = future.CreateFuture(sctx, coke.MakeTask(func(ctx context.Context) (int, error) {
			for j := 0; j < perProducer; j++ {
				item := fmt.Sprintf("p%d-item%d", i, j)
				if st := que.Push(ctx, item); st != coke.Success {
					return j, fmt.Errorf("push %q: %v", item, st)
				}
			}
			return perProducer, nil
		}))
	}

	consumed := make([]*future.Future[int], consumers)
	for i := 0; i < consumers; i++ {
		consumed[i] = future.CreateFuture(sctx, coke.MakeTask(func(ctx context.Context) (int, error) {
			defer stop.FinishGuard()()
			popped := 0
			for {
				_, st := que.Pop(ctx)
				switch st {
				case coke.Success:
					popped++
				case coke.Closed:
					return popped, nil
				default:
					return popped, fmt.Errorf("pop: %v", st)
				}
			}
		}))
	}

	if st := future.WaitFutures(ctx, produced, producers); st != coke.Success {
		logger.Error("producers did not finish", "status", st.String())
		os.Exit(1)
	}
	que.Close()
	stop.RequestStop()

	if st := stop.WaitFinishFor(ctx, 10*time.Second); st != coke.Success {
		logger.Error("consumers did not drain in time", "status", st.String())
		os.Exit(1)
	}
	if st := future.WaitFutures(ctx, consumed, consumers); st != coke.Success {
		logger.Error("consumer results not ready", "status", st.String())
		os.Exit(1)
	}

	total := 0
	for i, f := range consumed {
		n, err := f.Get()
		if err != nil {
			logger.Error("consumer failed", "consumer", i, "error", err)
			os.Exit(1)
		}
		logger.Debug("consumer done", "consumer", i, "popped", n)
		total += n
	}

	want := producers * perProducer
	if total != want {
		logger.Error("item count mismatch", "got", total, "want", want)
		os.Exit(1)
	}
	logger.Info("demo complete", "items", total, "pool_stats", fmt.Sprint(engine.Default().Stats()))
}
