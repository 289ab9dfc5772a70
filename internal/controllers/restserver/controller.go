package restserver

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lilleviklofoten/webcamsweep/internal/log"
	"github.com/lilleviklofoten/webcamsweep/pkg/config"
	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

// FramesPrefix is the URL prefix frames and thumbnails are served under.
const FramesPrefix = "/frames/"

// Controller represents the REST server controller
type Controller struct {
	ctx          context.Context
	wg           *sync.WaitGroup
	serverConfig config.ServerData
	Server       http.Server
	Calculator   *solar.Calculator
	Zone         *time.Location
	BaseDir      string
	SiteName     string
	logger       *zap.SugaredLogger
	handlers     *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*Controller, error) {
	site, err := configProvider.GetSite()
	if err != nil {
		return nil, fmt.Errorf("error loading site configuration: %w", err)
	}
	server, err := configProvider.GetServer()
	if err != nil {
		return nil, fmt.Errorf("error loading server configuration: %w", err)
	}

	solarConfig, err := site.SolarConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid site configuration: %w", err)
	}

	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		serverConfig: *server,
		Calculator:   solar.NewCalculator(solarConfig),
		BaseDir:      server.BaseDir,
		SiteName:     site.Name,
		logger:       logger,
	}
	ctrl.Zone = ctrl.Calculator.Config().Zone

	if ctrl.BaseDir == "" {
		logger.Info("server.base-dir not provided; defaulting to the current directory")
		ctrl.BaseDir = "."
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if ctrl.serverConfig.ListenAddr == "" {
		logger.Info("server.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.serverConfig.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if ctrl.serverConfig.Port == 0 {
		logger.Info("server.port not provided; defaulting to 8080")
		ctrl.serverConfig.Port = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.serverConfig.ListenAddr, ctrl.serverConfig.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.serverConfig.Cert != "" && c.serverConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the router, for embedding in tests or other servers.
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/window/{date}", c.handlers.GetWindow).Methods(http.MethodGet)
	router.HandleFunc("/images/{year:[0-9]{4}}/{month:[0-9]{2}}/{day:[0-9]{2}}", c.handlers.GetDayImages).Methods(http.MethodGet)
	router.HandleFunc("/days/{year:[0-9]{4}}/{month:[0-9]{2}}", c.handlers.GetMonthDays).Methods(http.MethodGet)
	router.HandleFunc("/latest", c.handlers.GetLatest).Methods(http.MethodGet)

	// Frames and thumbnails straight from the archive
	router.PathPrefix(FramesPrefix).Handler(http.StripPrefix(FramesPrefix, filesOnly(http.Dir(c.BaseDir))))

	return router
}

// filesOnly serves files from root and answers 404 for directories, so the
// archive cannot be browsed by listing.
func filesOnly(root http.FileSystem) http.Handler {
	fileServer := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if f, err := root.Open(path.Clean("/" + req.URL.Path)); err == nil {
			info, err := f.Stat()
			f.Close()
			if err == nil && info.IsDir() {
				http.NotFound(w, req)
				return
			}
		}
		fileServer.ServeHTTP(w, req)
	})
}
