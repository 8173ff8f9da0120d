package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/mariadb-operator/agent/pkg/logger"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/oxidize/mongo-init/pkg/environment"
	"github.com/oxidize/mongo-init/pkg/kubernetes"
	"github.com/oxidize/mongo-init/pkg/mongodb"
	"github.com/oxidize/mongo-init/pkg/provision"
	"github.com/oxidize/mongo-init/pkg/script"
)

var (
	logLevel       string
	logTimeEncoder string
	logDev         bool

	envFile         string
	secretName      string
	secretNamespace string

	timeout      time.Duration
	skipExisting bool

	initDir string

	rootLogger logr.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mongo-init",
	Short: "Creates the MongoDB application user.",
	Long: "Creates the user MONGO_TEST_USER with password MONGO_TEST_PASSWORD and the readWrite role " +
		"on MONGO_INITDB_DATABASE, connecting with the MONGO_INITDB_ROOT_* credentials.",
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		rootLogger, err = newLogger()
		if err != nil {
			log.Fatalf("error creating logger: %v", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		rootLogger.Info("Starting MongoDB init")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if err := provisionUser(ctx); err != nil {
			rootLogger.Error(err, "Error provisioning user")
			os.Exit(1)
		}
	},
}

func provisionUser(ctx context.Context) error {
	env, err := getEnvironment(ctx)
	if err != nil {
		return fmt.Errorf("error getting environment: %v", err)
	}
	rootLogger.V(1).Info("got environment", "host", env.Host, "port", env.Port, "uri-set", env.URI != "")

	client, err := mongodb.Connect(ctx, env, rootLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			rootLogger.Error(err, "Error disconnecting from MongoDB")
		}
	}()

	provisioner := provision.NewProvisioner(
		client,
		provision.WithLogger(rootLogger),
		provision.WithSkipExisting(skipExisting),
	)
	return provisioner.Provision(ctx, env.UserRequest())
}

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Writes an init script that creates the MongoDB application user.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		env, err := getEnvironment(ctx)
		if err != nil {
			rootLogger.Error(err, "Error getting environment")
			os.Exit(1)
		}
		path, err := script.NewScriptFile(env.UserRequest()).Write(afero.NewOsFs(), initDir)
		if err != nil {
			rootLogger.Error(err, "Error writing init script")
			os.Exit(1)
		}
		rootLogger.Info("Init script written", "path", path, "user", env.Username, "database", env.Database)
	},
}

func newLogger() (logr.Logger, error) {
	return logger.NewLogger(
		logger.WithLogLevel(logLevel),
		logger.WithTimeEncoder(logTimeEncoder),
		logger.WithDevelopment(logDev),
	)
}

func getEnvironment(ctx context.Context) (*environment.Environment, error) {
	lookupers := []envconfig.Lookuper{envconfig.OsLookuper()}
	if secretName != "" {
		if secretNamespace == "" {
			return nil, errors.New("--secret-namespace or POD_NAMESPACE must be set when --secret-name is used")
		}
		clientset, err := kubernetes.NewClientset()
		if err != nil {
			return nil, err
		}
		secret, err := kubernetes.SecretLookuper(ctx, clientset, secretName, secretNamespace)
		if err != nil {
			return nil, err
		}
		lookupers = append(lookupers, secret)
	}
	if envFile != "" {
		dotenv, err := environment.DotenvLookuper(envFile)
		if err != nil {
			return nil, err
		}
		lookupers = append(lookupers, dotenv)
	}
	return environment.GetEnvironment(ctx, lookupers...)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Log level to use, one of: "+
		"debug, info, warn, error, dpanic, panic, fatal.")
	flags.StringVar(&logTimeEncoder, "log-time-encoder", "epoch", "Log time encoder to use, one of: "+
		"epoch, millis, nano, iso8601, rfc3339 or rfc3339nano")
	flags.BoolVar(&logDev, "log-dev", false, "Enable development logs")

	flags.StringVar(&envFile, "env-file", "", "Optional .env file read after the process environment")
	flags.StringVar(&secretName, "secret-name", "", "Optional Kubernetes Secret whose keys are read as environment variables")
	flags.StringVar(&secretNamespace, "secret-namespace", os.Getenv("POD_NAMESPACE"), "The namespace of the Kubernetes Secret, "+
		"defaults to POD_NAMESPACE")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for reading configuration, connecting and creating the user")

	rootCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Succeed when the user already exists")

	scriptCmd.Flags().StringVar(&initDir, "initdb-dir", script.DefaultInitDir, "The directory the init script is written to")
	rootCmd.AddCommand(scriptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
