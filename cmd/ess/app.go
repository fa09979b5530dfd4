package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"axiapac.com/selfservice/attendance"
	"axiapac.com/selfservice/capture"
	"axiapac.com/selfservice/config"
	"axiapac.com/selfservice/infrastructure/communication"
	"axiapac.com/selfservice/infrastructure/devops"
	"axiapac.com/selfservice/infrastructure/filesystem"
	"axiapac.com/selfservice/logging"
	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/session"
	"axiapac.com/selfservice/storage"
	"go.uber.org/zap"
)

type appOptions struct {
	configFile string
	envFile    string
	logLevel   string

	lookup     func(string) (string, bool)
	parameters devops.ParameterGetter
	objects    filesystem.ObjectGetter
	notifier   communication.Notifier
}

type cli struct {
	opts appOptions

	cfg        config.Config
	logger     *zap.Logger
	store      storage.Store
	closeStore func() error
	client     *v1.SelfServiceClient
	session    *session.Manager
	reconciler *attendance.Reconciler
	notifier   communication.Notifier
}

func (c *cli) start(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.Options{
		EnvFile:    c.opts.envFile,
		ConfigFile: c.opts.configFile,
		Lookup:     c.opts.lookup,
		Parameters: c.opts.parameters,
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.opts.logLevel != "" {
		cfg.LogLevel = c.opts.logLevel
	}
	c.cfg = cfg

	c.logger, err = logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}

	c.store, c.closeStore, err = storage.Open(cfg.StoreDriver, cfg.StoreDSN, storage.LogLevelSilent)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	tokens := storage.NewTokenStore(c.store)
	c.client = v1.NewSelfServiceClient(cfg.APIBaseURL, tokens, cfg.RetryPolicy(), c.logger)
	c.reconciler = attendance.NewReconciler(c.client.Attendance, c.store, cfg.Location(), c.logger)
	c.session = session.NewManager(c.client.Auth, c.store, c.reconciler, c.logger)

	switch {
	case c.opts.notifier != nil:
		c.notifier = c.opts.notifier
	case cfg.SlackEnabled():
		c.notifier = communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
			InfoChannelID:  cfg.Slack.InfoChannel,
			ErrorChannelID: cfg.Slack.ErrorChannel,
		})
	default:
		c.notifier = communication.Discard{}
	}
	return nil
}

func (c *cli) stop() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.closeStore != nil {
		return c.closeStore()
	}
	return nil
}

// currentUser is required by every command that acts for the user.
func (c *cli) currentUser(ctx context.Context) (*common.User, error) {
	user, err := c.session.CurrentUser(ctx)
	if errors.Is(err, session.ErrNotLoggedIn) {
		return nil, errors.New("not logged in, run: ess login")
	}
	return user, err
}

// fail turns a failed outcome into a command error. Failures the user cannot
// fix are also posted to the diagnostics channel.
func (c *cli) fail(ctx context.Context, action string, outcome v1.Outcome) error {
	switch outcome.Kind {
	case v1.KindServerError, v1.KindNetwork, v1.KindTimeout, v1.KindUnknown:
		message := fmt.Sprintf("ess %s failed: %s", action, outcome)
		if err := c.notifier.Error(ctx, message); err != nil {
			c.logger.Warn("diagnostics not delivered", zap.Error(err))
		}
	}
	return errors.New(v1.UserMessage(outcome))
}

// photoSource picks the capture source for a --photo value.
func (c *cli) photoSource(ctx context.Context, location string) (capture.Source, error) {
	bucket, key, ok := capture.ParseLocation(location)
	if !ok {
		if strings.HasPrefix(location, "s3://") {
			return nil, fmt.Errorf("invalid s3 location %q", location)
		}
		if _, err := os.Stat(location); err != nil {
			return nil, fmt.Errorf("photo: %w", err)
		}
		return capture.FileSource{Path: location}, nil
	}

	objects := c.opts.objects
	if objects == nil {
		client, err := filesystem.NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		objects = client
	}
	return capture.S3Source{Client: objects, Bucket: bucket, Key: key}, nil
}

// file loads an optional upload through the capture hand-off.
func (c *cli) file(ctx context.Context, location string) (*v1.File, error) {
	if location == "" {
		return nil, nil
	}
	src, err := c.photoSource(ctx, location)
	if err != nil {
		return nil, err
	}
	photo, err := capture.Run(ctx, src).Await(ctx)
	if err != nil {
		return nil, err
	}
	return photo.File(), nil
}
