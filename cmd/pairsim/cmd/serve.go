package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

const (
	flagListen      = "listen"
	flagCORSOrigins = "cors-origins"

	tracerName = "pairsim"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairsim_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairsim_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// ServeCmd serves the pool queries over HTTP.
func ServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pool queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, logger, err := loadWorld(v)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              v.GetString(flagListen),
				Handler:           NewServer(w, logger, v.GetStringSlice(flagCORSOrigins)).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("serving pool queries", "addr", srv.Addr, "pools", len(w.Pairs))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String(flagListen, ":8080", "Listen address")
	cmd.Flags().StringSlice(flagCORSOrigins, []string{"*"}, "Allowed CORS origins")
	return cmd
}

// Server answers pool queries against a seeded sandbox.
type Server struct {
	world   *World
	logger  log.Logger
	origins []string
	// now is the block time queries read at.
	now func() time.Time

	// the sandbox stores are not safe for concurrent use
	mu sync.Mutex
}

// NewServer creates a query server over w.
func NewServer(w *World, logger log.Logger, origins []string) *Server {
	return &Server{world: w, logger: logger, origins: origins, now: time.Now}
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.instrument)

	router.GET("/pools", s.handlePools)
	pools := router.Group("/pools/:name")
	{
		pools.GET("", s.handlePool)
		pools.GET("/simulation", s.handleSimulation)
		pools.GET("/reverse-simulation", s.handleReverseSimulation)
		pools.GET("/cumulative-prices", s.handleCumulativePrices)
		pools.GET("/observe", s.handleObserve)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(router)
}

func (s *Server) instrument(c *gin.Context) {
	start := time.Now()
	c.Next()

	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = "unmatched"
	}
	status := c.Writer.Status()
	duration := time.Since(start)
	s.logger.Debug("API request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
	apiRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration.Seconds())
}

type queryFunc func(ctx sdk.Context, pair sdk.AccAddress) (any, error)

// query runs fn for the pool named in the path inside a span.
func (s *Server) query(c *gin.Context, op string, fn queryFunc) {
	name := c.Param("name")
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "pairsim.query."+op,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("pool.name", name),
			attribute.String("query", op),
		),
	)
	defer span.End()

	pair, err := s.world.Pair(name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("pool.address", pair.String()))

	s.mu.Lock()
	res, err := fn(s.world.QueryCtx(ctx, s.now()), pair)
	s.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

type poolSummary struct {
	Name string             `json:"name"`
	Pair types.PairInfo     `json:"pair"`
	Pool types.PoolResponse `json:"pool"`
}

func (s *Server) summary(ctx sdk.Context, name string, pair sdk.AccAddress) (poolSummary, error) {
	info, err := s.world.Host.Keeper.Pair(ctx, pair)
	if err != nil {
		return poolSummary{}, err
	}
	pool, err := s.world.Host.Keeper.Pool(ctx, pair)
	if err != nil {
		return poolSummary{}, err
	}
	return poolSummary{Name: name, Pair: info, Pool: pool}, nil
}

func (s *Server) handlePools(c *gin.Context) {
	_, span := otel.Tracer(tracerName).Start(c.Request.Context(), "pairsim.query.pools", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := s.world.QueryCtx(c.Request.Context(), s.now())
	out := make([]poolSummary, 0, len(s.world.Pairs))
	for _, name := range s.world.Names() {
		sum, err := s.summary(ctx, name, s.world.Pairs[name])
		if err != nil {
			span.RecordError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, sum)
	}
	c.JSON(http.StatusOK, gin.H{"pools": out})
}

func (s *Server) handlePool(c *gin.Context) {
	s.query(c, "pool", func(ctx sdk.Context, pair sdk.AccAddress) (any, error) {
		sum, err := s.summary(ctx, c.Param("name"), pair)
		if err != nil {
			return nil, err
		}
		cfg, err := s.world.Host.Keeper.Config(ctx, pair)
		if err != nil {
			return nil, err
		}
		return gin.H{"name": sum.Name, "pair": sum.Pair, "pool": sum.Pool, "config": cfg}, nil
	})
}

func (s *Server) handleSimulation(c *gin.Context) {
	s.query(c, "simulation", func(ctx sdk.Context, pair sdk.AccAddress) (any, error) {
		offer, err := s.world.ParseAsset(c.Query("offer"))
		if err != nil {
			return nil, err
		}
		q := types.SimulationQuery{OfferAsset: offer}
		if ask := c.Query("ask"); ask != "" {
			info := s.world.AssetInfo(ask)
			q.AskAssetInfo = &info
		}
		return s.world.Host.Keeper.Simulation(ctx, pair, q)
	})
}

func (s *Server) handleReverseSimulation(c *gin.Context) {
	s.query(c, "reverse_simulation", func(ctx sdk.Context, pair sdk.AccAddress) (any, error) {
		ask, err := s.world.ParseAsset(c.Query("ask"))
		if err != nil {
			return nil, err
		}
		q := types.ReverseSimulationQuery{AskAsset: ask}
		if offer := c.Query("offer"); offer != "" {
			info := s.world.AssetInfo(offer)
			q.OfferAssetInfo = &info
		}
		return s.world.Host.Keeper.ReverseSimulation(ctx, pair, q)
	})
}

func (s *Server) handleCumulativePrices(c *gin.Context) {
	s.query(c, "cumulative_prices", func(ctx sdk.Context, pair sdk.AccAddress) (any, error) {
		return s.world.Host.Keeper.CumulativePrices(ctx, pair)
	})
}

func (s *Server) handleObserve(c *gin.Context) {
	s.query(c, "observe", func(ctx sdk.Context, pair sdk.AccAddress) (any, error) {
		secondsAgo, err := cast.ToUint64E(c.DefaultQuery("seconds_ago", "0"))
		if err != nil {
			return nil, err
		}
		return s.world.Host.Keeper.Observe(ctx, pair, secondsAgo)
	})
}
