package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/app/config"
	apphttp "umzugsbuero/backend/internal/app/http"
	"umzugsbuero/backend/internal/app/http/handlers"
	"umzugsbuero/backend/internal/app/jobs"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	pdfgen "umzugsbuero/backend/internal/domain/quote/pdf/gofpdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/signature"
	"umzugsbuero/backend/internal/infra/mail"
	"umzugsbuero/backend/internal/service"
)

const (
	shutdownTimeout    = 15 * time.Second
	maintenanceTimeout = 5 * time.Minute
)

// Deps assembles the service dependencies from configuration and an open
// backend.
func Deps(cfg config.Config, b *Backend, logger *zap.Logger) service.Deps {
	loc := cfg.Location()
	co := cfg.Company
	company := content.Company{
		Name:     co.Name,
		Street:   co.Street,
		City:     co.City,
		Phone:    co.Phone,
		Email:    co.Email,
		Web:      co.Web,
		Bank:     co.Bank,
		IBAN:     co.IBAN,
		BIC:      co.BIC,
		TaxID:    co.TaxID,
		Director: co.Director,
	}
	return service.Deps{
		Store:     b.Store,
		Documents: pdfgen.New(company, cfg.PDFFontDir, logger.Named("pdf")),
		Signer:    signature.NewEmbedder(loc, logger.Named("signature")),
		Mailer: mail.NewSMTP(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: co.Name,
		}, logger.Named("mail")),
		Settings: service.Settings{
			PublicBaseURL:      cfg.PublicBaseURL,
			TokenTTL:           cfg.TokenTTL,
			InvoicePaymentDays: cfg.InvoicePaymentDays,
			OfficeEmail:        cfg.OfficeEmail,
			CompanyName:        co.Name,
			Location:           loc,
		},
		Logger: logger,
	}
}

// Run serves the HTTP API and the maintenance schedule until ctx is
// cancelled, then shuts both down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	backend, err := OpenBackend(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing backend", zap.Error(err))
		}
	}()

	deps := Deps(cfg, backend, logger)
	if !cfg.MailEnabled() {
		logger.Warn("SMTP not configured, emails will not be sent")
	}

	maintenance := service.NewMaintenance(deps)
	scheduler, err := jobs.New(cfg.MaintenanceSchedule, deps.Settings.Location, maintenanceTimeout, func(ctx context.Context) error {
		_, err := maintenance.Run(ctx)
		return err
	}, logger.Named("jobs"))
	if err != nil {
		return err
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apphttp.NewRouter(cfg, handlers.New(deps, backend.Ping), logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(shutdownCtx)
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
