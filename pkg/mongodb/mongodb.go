package mongodb

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/oxidize/mongo-init/pkg/environment"
)

// DuplicateUserCode is returned by the server when createUser targets an existing user.
const DuplicateUserCode = 51003

func IsDuplicateUser(err error) bool {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorCode(DuplicateUserCode)
	}
	return false
}

func ClientOptions(env *environment.Environment) *options.ClientOptions {
	uri := env.URI
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s", net.JoinHostPort(env.Host, strconv.Itoa(env.Port)))
	}
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("mongo-init")
	if env.RootUsername != "" {
		opts.SetAuth(options.Credential{
			Username:   env.RootUsername,
			Password:   env.RootPassword,
			AuthSource: env.AuthSource,
		})
	}
	return opts
}

type Client struct {
	client *mongo.Client
}

func NewClient(client *mongo.Client) *Client {
	return &Client{
		client: client,
	}
}

// Connect waits for the primary to answer before returning.
func Connect(ctx context.Context, env *environment.Environment, logger logr.Logger) (*Client, error) {
	client, err := mongo.Connect(ctx, ClientOptions(env))
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to MongoDB")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error(err, "Error disconnecting from MongoDB")
		}
		return nil, errors.Wrap(err, "error pinging MongoDB")
	}
	return NewClient(client), nil
}

func (c *Client) RunCommand(ctx context.Context, database string, cmd bson.D) error {
	return c.client.Database(database).RunCommand(ctx, cmd).Err()
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
