package provision

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/oxidize/mongo-init/pkg/mongodb"
	"github.com/oxidize/mongo-init/pkg/user"
)

type Admin interface {
	RunCommand(ctx context.Context, database string, cmd bson.D) error
}

type Option func(*Provisioner)

func WithLogger(logger logr.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

func WithSkipExisting(skip bool) Option {
	return func(p *Provisioner) {
		p.skipExisting = skip
	}
}

type Provisioner struct {
	admin        Admin
	logger       logr.Logger
	skipExisting bool
}

func NewProvisioner(admin Admin, opts ...Option) *Provisioner {
	p := &Provisioner{
		admin:  admin,
		logger: logr.Discard(),
	}
	for _, setOpt := range opts {
		setOpt(p)
	}
	return p
}

// Provision runs a single createUser command, without retries.
func (p *Provisioner) Provision(ctx context.Context, req *user.Request) error {
	logger := p.logger.WithValues("user", req.Username, "database", req.Database)
	logger.Info("Creating user")

	if err := p.admin.RunCommand(ctx, req.Database, req.Command()); err != nil {
		if p.skipExisting && mongodb.IsDuplicateUser(err) {
			logger.Info("User already exists, skipping")
			return nil
		}
		return errors.Wrapf(err, "error creating user '%s' in database '%s'", req.Username, req.Database)
	}

	logger.Info("User created", "roles", len(req.Roles))
	return nil
}
