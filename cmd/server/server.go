package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/encounter-api/internal/engine/rpgtoolkit"
	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	"github.com/KirkDiggler/encounter-api/internal/gateway"
	"github.com/KirkDiggler/encounter-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/encounter-api/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/encounter-api/internal/redis"
	"github.com/KirkDiggler/encounter-api/internal/repositories/encounters"
	"github.com/KirkDiggler/encounter-api/internal/rules/reactions"
	"github.com/KirkDiggler/encounter-api/internal/tokensync"
)

var (
	grpcPort      int
	gatewayPort   int
	redisAddress  string
	encounterTTL  time.Duration
	inMemoryStore bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the combat resolution server",
	Long:  `Start the gRPC control endpoint and the websocket gateway renderer clients connect to.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC server port")
	serverCmd.Flags().IntVar(&gatewayPort, "gateway-port", 8080, "websocket gateway port")
	serverCmd.Flags().StringVar(&redisAddress, "redis-address", "localhost:6379", "redis address for encounter storage")
	serverCmd.Flags().DurationVar(&encounterTTL, "encounter-ttl", 24*time.Hour, "how long stored encounters live, 0 for no expiry")
	serverCmd.Flags().BoolVar(&inMemoryStore, "in-memory", false, "keep encounters in process memory instead of redis")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	repo, closeRepo, err := buildRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc, broadcaster, err := buildEncounterService(repo)
	if err != nil {
		return err
	}

	hub, err := gateway.NewHub(&gateway.Config{Sync: broadcaster})
	if err != nil {
		return fmt.Errorf("failed to create gateway hub: %w", err)
	}
	go hub.Run(ctx)

	// Outbound: orchestrator state changes fan out to renderer clients.
	// Inbound: renderer position updates land back in the orchestrator.
	broadcaster.OnUpdate(hub.BroadcastTokenUpdate)
	broadcaster.OnTurnStarted(hub.BroadcastTurnStarted)
	broadcaster.SetReconciler(func(ctx context.Context, encounterID, participantID string, zone entities.PositionZone) error {
		_, err := svc.UpdatePosition(ctx, &encounter.UpdatePositionInput{
			EncounterID:   encounterID,
			ParticipantID: participantID,
			Position:      zone,
		})
		return err
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	gatewaySrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", gatewayPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			unaryErrorInterceptor,
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 2)

	go func() {
		slog.Info("gRPC server starting", "port", grpcPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()

	go func() {
		slog.Info("websocket gateway starting", "port", gatewayPort)
		if err := gatewaySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve gateway: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		return err
	}

	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gatewaySrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("gateway shutdown failed", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Warn("graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("server stopped gracefully")
	}

	return nil
}

// buildRepository returns the encounter store selected by flags along with a
// close func for its underlying connection.
func buildRepository(ctx context.Context) (encounters.Repository, func(), error) {
	if inMemoryStore {
		slog.Info("using in-memory encounter store")
		return encounters.NewInMemory(), func() {}, nil
	}

	client, err := redisclient.NewClient(redisAddress, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", redisAddress, err)
	}

	repo, err := encounters.NewRedis(&encounters.RedisConfig{
		Client: client,
		TTL:    encounterTTL,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to create encounter repository: %w", err)
	}

	slog.Info("using redis encounter store", "address", redisAddress, "ttl", encounterTTL)
	return repo, func() { _ = client.Close() }, nil
}

// buildEncounterService assembles the dice engine, trigger engine, and
// orchestrator on top of the given store. The returned broadcaster is the
// token sync fan-out point callers attach listeners to.
func buildEncounterService(repo encounters.Repository) (encounter.Service, *tokensync.Broadcaster, error) {
	engineAdapter, err := rpgtoolkit.NewAdapter(&rpgtoolkit.AdapterConfig{
		EventBus:   events.NewBus(),
		DiceRoller: dice.DefaultRoller,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create rules engine: %w", err)
	}

	triggers, err := reactions.NewEngine(&reactions.Config{
		IDGenerator: idgen.NewUUID("opp"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trigger engine: %w", err)
	}

	broadcaster := tokensync.NewBroadcaster()

	svc, err := encounter.NewOrchestrator(&encounter.Config{
		Engine:        engineAdapter,
		TriggerEngine: triggers,
		Repository:    repo,
		TokenSync:     broadcaster,
		IDGenerator:   idgen.NewUUID(""),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create encounter service: %w", err)
	}

	return svc, broadcaster, nil
}

// unaryErrorInterceptor maps internal error codes onto gRPC status codes at
// the transport boundary.
func unaryErrorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return resp, errors.ToGRPCError(err)
	}
	return resp, nil
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
