// @title           Quotedesk API
// @version         1.0
// @description     Sales quotations: login, drafting, lifecycle, PDF and XLSX export.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fabienng71/Rclx-sub001/config"
	_ "github.com/fabienng71/Rclx-sub001/docs"
	"github.com/fabienng71/Rclx-sub001/handlers"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/storage"
	"github.com/fabienng71/Rclx-sub001/utils"
)

func CORSConfig(cfg config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept",
		"Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Accept-Language",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var cronRunning int32

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	cronLogger *log.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
		}
	}()
}

// scheduleReports registers the nightly register export on cfg.ReportCron.
func scheduleReports(c *cron.Cron, cfg config.Config, quotes *repository.QuotationStore, exporter *services.RegisterExporter, cronLogger *log.Logger) error {
	_, err := c.AddFunc(cfg.ReportCron, func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous report run still in progress. Skipping.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		var wg sync.WaitGroup
		safeGo(ctx, &wg, "QuotationRegister", func(ctx context.Context) error {
			// The CLI may have written to the same backend since startup.
			if err := quotes.Reload(ctx); err != nil {
				return err
			}
			path, err := exporter.SaveQuotationRegister(cfg.ReportDir, time.Now(), quotes.Active(), quotes.Archived())
			if err != nil {
				return err
			}
			log.Printf("Quotation register written to %s", path)
			return nil
		}, cronLogger)
		wg.Wait()
	})
	return err
}

func main() {
	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	kv, err := storage.Open(startCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer func() {
		if err := storage.Close(kv); err != nil {
			log.Printf("Warning: storage close error: %v", err)
		}
	}()

	clock := utils.SystemClock{}
	creds, err := repository.NewCredentialStore(kv, utils.NewTokenIssuer(cfg.JWTSecret, clock), clock, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to load seed accounts: %v", err)
	}
	quotes, err := repository.NewQuotationStore(startCtx, kv)
	cancelStart()
	if err != nil {
		log.Fatalf("Failed to load quotations: %v", err)
	}

	exporter := services.NewRegisterExporter()
	renderer := services.NewQuotationRenderer(services.Issuer{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Phone:   cfg.CompanyPhone,
		Email:   cfg.CompanyEmail,
	})

	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
		cronLogFile = os.Stderr
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)
	if err := scheduleReports(c, cfg, quotes, exporter, cronLogger); err != nil {
		log.Fatalf("Failed to schedule report cron %q: %v", cfg.ReportCron, err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig(cfg)))

	handlers.RegisterRoutes(r, handlers.API{
		Credentials: creds,
		Quotations:  quotes,
		Renderer:    renderer,
		Exporter:    exporter,
		Mail:        services.NewMailComposer(),
		Clock:       clock,
	})
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	portInt, err := strconv.Atoi(cfg.Port)
	if err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %s. Must be a number between 0 and 65535.", cfg.Port)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on :%s (storage=%s)", cfg.Port, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Let a running report finish before the storage is closed.
	<-c.Stop().Done()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
