package cmd

import (
	"context"
	"io"

	"wakili-cli/cmd/config"
	"wakili-cli/cmd/utils"
	"wakili-cli/internal/api"
	"wakili-cli/internal/session"
	"wakili-cli/internal/settings"
	"wakili-cli/internal/upload"

	"go.uber.org/zap"
)

// services are the stores every command and the terminal application share.
type services struct {
	cfg      *config.Config
	api      *api.Client
	session  *session.Store
	uploads  *upload.Workflow
	settings *settings.Loader
	log      *zap.Logger
}

// fileBackend sends uploads with the longer upload timeout and everything
// else with the regular one.
type fileBackend struct {
	files   *api.Client
	regular *api.Client
}

func (b fileBackend) Upload(ctx context.Context, name string, r io.Reader) (*api.UploadResult, error) {
	return b.files.Upload(ctx, name, r)
}

func (b fileBackend) Ingest(ctx context.Context) (*api.IngestResult, error) {
	return b.regular.Ingest(ctx)
}

func newServices(cfg *config.Config) (*services, error) {
	log := utils.Logger()

	regular, err := api.New(cfg.ServerURL,
		api.WithHTTPClient(utils.GetHTTPClientWithTimeout(cfg.RequestTimeout())),
		api.WithLogger(log.Named("api")),
	)
	if err != nil {
		return nil, err
	}
	files, err := api.New(cfg.ServerURL,
		api.WithHTTPClient(utils.GetHTTPClientWithTimeout(cfg.UploadRequestTimeout())),
		api.WithLogger(log.Named("api")),
	)
	if err != nil {
		return nil, err
	}

	return &services{
		cfg:      cfg,
		api:      regular,
		session:  session.New(regular, session.WithGreeting(cfg.Greeting), session.WithLogger(log.Named("session"))),
		uploads:  upload.New(fileBackend{files: files, regular: regular}, upload.WithLogger(log.Named("upload"))),
		settings: settings.New(regular, settings.WithLogger(log.Named("settings"))),
		log:      log,
	}, nil
}

// loadServices builds services from the configuration resolved at startup.
func loadServices() (*services, error) {
	cfg := appConfig
	if cfg == nil {
		cfg = config.Defaults()
	}
	return newServices(cfg)
}
