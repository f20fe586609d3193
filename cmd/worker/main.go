package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/carta-graph/carta/internal/events"
	"github.com/carta-graph/carta/internal/ops"
	"github.com/carta-graph/carta/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/carta-graph/carta/pkg/facts"
	"github.com/carta-graph/carta/pkg/graph"
	"github.com/carta-graph/carta/pkg/graph/store"
	"github.com/carta-graph/carta/pkg/logger"
	"github.com/carta-graph/carta/pkg/logger/console"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Run database migrations
	databaseURL := util.GetEnv("DATABASE_URL")
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "file://migrations")
	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	factSource := facts.NewPGSource(facts.NewPGSourceParams{Conn: pgConn})
	builder := graph.NewBuilder()
	analyzer := graph.NewAnalyzer(graph.NewAnalyzerParams{Limits: graph.Limits{
		MaxBetweennessNodes: int(util.GetEnvNumeric("GRAPH_MAX_BETWEENNESS_NODES", 500)),
		MaxCommunityNodes:   int(util.GetEnvNumeric("GRAPH_MAX_COMMUNITY_NODES", 5000)),
		SampleThreshold:     int(util.GetEnvNumeric("GRAPH_SAMPLE_THRESHOLD", 1000)),
		SampleSize:          int(util.GetEnvNumeric("GRAPH_SAMPLE_SIZE", 100)),
	}})
	graphStore := store.NewStore()

	buildProject := func(projectID string) store.BuilderFunc {
		return func(ctx context.Context) (*graph.Graph, error) {
			fs, err := factSource.FactsByProjectID(ctx, projectID)
			if err != nil {
				return nil, err
			}
			return builder.Build(fs, graph.BuildOptions{})
		}
	}

	// Init rabbitmq
	conn := events.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := events.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// Prewarm graph caches for all known projects
	go prewarm(ctx, graphStore, factSource, analyzer, buildProject)

	logger.Info("Listening for invalidation events")

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range events.Queues() {
		go func(qName string) {
			consumerTag := qName + "_consumer"
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				processingErr := events.ProcessInvalidation(graphStore, qm.queueName, qm.msg.Body)
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					handleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					if err := qm.msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
				}
			}
		}
	}()

	// Operational HTTP surface, serves until shutdown
	opsServer := ops.NewServer(ops.NewServerParams{
		Store: graphStore,
		Port:  util.GetEnvString("PORT", "8080"),
	})
	opsServer.Start(ctx)

	logger.Info("Shutdown signal received, exiting...")
}

// prewarm builds graphs for every known project so the first analysis after
// startup does not pay the build cost.
func prewarm(
	ctx context.Context,
	graphStore *store.Store,
	factSource *facts.PGSource,
	analyzer *graph.Analyzer,
	buildProject func(projectID string) store.BuilderFunc,
) {
	projectIDs, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) ([]string, error) {
		return factSource.ProjectIDs(ctx)
	})
	if err != nil {
		logger.Warn("[Prewarm] Failed to list projects", "err", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, projectID := range projectIDs {
		projectID := projectID
		g.Go(func() error {
			built, err := graphStore.GetOrBuild(gctx, projectID, buildProject(projectID))
			if err != nil {
				logger.Warn("[Prewarm] Build failed", "projectId", projectID, "err", err)
				return nil
			}
			stats := analyzer.Statistics(built)
			logger.Info("[Prewarm] Graph ready",
				"projectId", projectID,
				"nodes", stats.NodeCount,
				"edges", stats.EdgeCount,
				"components", stats.ConnectedComponents,
			)
			return nil
		})
	}
	_ = g.Wait()
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "text/plain",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
