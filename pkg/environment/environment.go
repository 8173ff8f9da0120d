package environment

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"github.com/subosito/gotenv"

	"github.com/oxidize/mongo-init/pkg/user"
)

type Environment struct {
	Username string `env:"MONGO_TEST_USER"`
	Password string `env:"MONGO_TEST_PASSWORD"`
	Database string `env:"MONGO_INITDB_DATABASE"`

	RootUsername string `env:"MONGO_INITDB_ROOT_USERNAME"`
	RootPassword string `env:"MONGO_INITDB_ROOT_PASSWORD"`
	Host         string `env:"MONGODB_HOST,default=localhost"`
	Port         int    `env:"MONGODB_PORT,default=27017"`
	AuthSource   string `env:"MONGODB_AUTH_SOURCE,default=admin"`
	URI          string `env:"MONGODB_URI"`
}

// UserRequest builds the createUser request. Missing values are passed through empty.
func (e *Environment) UserRequest() *user.Request {
	return user.NewRequest(e.Username, e.Password, e.Database)
}

// GetEnvironment reads the process environment, or the given lookupers in order when provided.
func GetEnvironment(ctx context.Context, lookupers ...envconfig.Lookuper) (*Environment, error) {
	var env Environment
	if len(lookupers) == 0 {
		if err := envconfig.Process(ctx, &env); err != nil {
			return nil, err
		}
		return &env, nil
	}
	if err := envconfig.ProcessWith(ctx, &env, envconfig.MultiLookuper(lookupers...)); err != nil {
		return nil, err
	}
	return &env, nil
}

// DotenvLookuper exposes the variables of a .env file without exporting them to the process.
func DotenvLookuper(path string) (envconfig.Lookuper, error) {
	vars, err := gotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("error reading env file '%s': %v", path, err)
	}
	return envconfig.MapLookuper(vars), nil
}
