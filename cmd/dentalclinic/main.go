package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/jwalitptl/dental-clinic/internal/config"
	"github.com/jwalitptl/dental-clinic/internal/email"
	"github.com/jwalitptl/dental-clinic/internal/model"
	"github.com/jwalitptl/dental-clinic/internal/service/appointment"
	"github.com/jwalitptl/dental-clinic/internal/service/clinic"
	"github.com/jwalitptl/dental-clinic/internal/service/description"
	"github.com/jwalitptl/dental-clinic/internal/service/notification"
	"github.com/jwalitptl/dental-clinic/pkg/errors"
	"github.com/jwalitptl/dental-clinic/pkg/logger"
	"github.com/jwalitptl/dental-clinic/pkg/messaging"
	"github.com/jwalitptl/dental-clinic/pkg/messaging/memory"
	"github.com/jwalitptl/dental-clinic/pkg/messaging/redis"
	"github.com/jwalitptl/dental-clinic/pkg/metrics"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file (default: ./config.yml or ./config/config.yml)")
	logLevel := pflag.String("log-level", "", "override log level")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		JSON:       cfg.Log.Format == "json",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(err, "dental clinic demo failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	reg := prometheus.NewRegistry()
	m := metrics.New(cfg.Metrics.Namespace, reg)

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		srv = serveMetrics(cfg.Metrics.Addr, reg, log)
	}

	dc := clinic.New(
		clinic.WithLogger(log.WithFields(map[string]interface{}{"component": "clinic"})),
		clinic.WithMetrics(m),
		clinic.WithOutput(os.Stdout),
	)

	closers, err := registerObservers(ctx, dc, cfg, log)
	defer func() {
		for _, c := range closers {
			if cerr := c.Close(); cerr != nil {
				log.Error(cerr, "failed to close resource")
			}
		}
	}()
	if err != nil {
		return err
	}

	if err := demo(ctx, dc, log); err != nil {
		return err
	}

	if srv != nil {
		log.Info("serving metrics until interrupted", "addr", cfg.Metrics.Addr)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
	}
	return nil
}

func registerObservers(ctx context.Context, dc *clinic.Clinic, cfg *config.Config, log *logger.Logger) ([]io.Closer, error) {
	var closers []io.Closer

	if cfg.Notifications.Email {
		var opts []notification.EmailOption
		if cfg.Mail.Spool != "" {
			out, closer, err := openSpool(cfg.Mail.Spool)
			if err != nil {
				return closers, err
			}
			if closer != nil {
				closers = append(closers, closer)
			}
			mailCfg, err := email.ConfigFromEnv()
			if err != nil {
				return closers, err
			}
			if cfg.Mail.From != "" {
				mailCfg.From = cfg.Mail.From
			}
			if cfg.Mail.To != "" {
				mailCfg.To = cfg.Mail.To
			}
			opts = append(opts, notification.WithMailer(email.NewSpool(out), mailCfg))
		}
		dc.AddObserver(notification.NewEmailNotifier(os.Stdout, opts...))
	}
	if cfg.Notifications.SMS {
		dc.AddObserver(notification.NewSMSNotifier(os.Stdout))
	}

	if cfg.Notifications.Events.Enabled {
		broker, err := newBroker(ctx, cfg.Notifications.Events, log)
		if err != nil {
			return closers, err
		}
		closers = append(closers, broker)
		dc.AddObserver(notification.NewEventNotifier(broker, cfg.Notifications.Events.Topic))
	}

	return closers, nil
}

func newBroker(ctx context.Context, cfg config.EventsConfig, log *logger.Logger) (messaging.Broker, error) {
	switch cfg.Broker {
	case config.BrokerRedis:
		return redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			OpenTimeout:  30 * time.Second,
		}, log)
	default:
		return memory.NewBroker(), nil
	}
}

func openSpool(target string) (io.Writer, io.Closer, error) {
	switch target {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open mail spool: %w", err)
	}
	return f, f, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server failed")
		}
	}()
	return srv
}

func strPtr(s string) *string { return &s }

// demo runs the fixed walkthrough: two patients, two dentists, one appointment.
func demo(ctx context.Context, dc *clinic.Clinic, log *logger.Logger) error {
	dc.AddPatient(model.Patient{
		ID:             1,
		Name:           "John Doe",
		DateOfBirth:    model.Date(1985, time.June, 15),
		PhoneNumber:    strPtr("123-456-7890"),
		MedicalHistory: strPtr("No known allergies"),
	})
	dc.AddPatient(model.Patient{
		ID:             2,
		Name:           "Jane Smith",
		DateOfBirth:    model.Date(1990, time.December, 5),
		MedicalHistory: strPtr("Diabetic"),
	})

	dc.AddDentist(model.Dentist{ID: 1, Name: "Dr. Emily Brown", Specialty: "Orthodontist"})
	dc.AddDentist(model.Dentist{ID: 2, Name: "Dr. Michael Green", Specialty: "Endodontist"})

	defaultDentist := model.Dentist{ID: 1, Name: "Dr. Emily Brown", Specialty: "Orthodontist"}
	apt, err := appointment.NewService(dc).Book(ctx, appointment.BookingRequest{
		ID:             1,
		PatientName:    "John",
		DentistID:      1,
		DefaultDentist: &defaultDentist,
		Date:           model.Date(2024, time.December, 20),
		Notes:          strPtr("Routine check-up"),
		Services:       []string{"Cleaning"},
	})
	if err != nil {
		if !errors.HasCode(err, errors.ErrNotification) {
			return err
		}
		log.Error(err, "some appointment notifications failed", "appointment_id", apt.ID)
	}

	decorated := description.WithWhitening(description.WithXRay(description.NewBasic(apt)))
	fmt.Println(decorated.Description())

	fmt.Println("\nPatients:")
	if err := dc.PrintPatients(); err != nil {
		return err
	}

	fmt.Println("\nAppointments:")
	return dc.PrintAppointments()
}
