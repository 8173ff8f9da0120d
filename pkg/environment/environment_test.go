package environment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sethvargo/go-envconfig"

	"github.com/oxidize/mongo-init/pkg/user"
)

func TestGetEnvironment(t *testing.T) {
	g := NewWithT(t)

	env, err := GetEnvironment(context.Background(), envconfig.MapLookuper(map[string]string{
		"MONGO_TEST_USER":            "alice",
		"MONGO_TEST_PASSWORD":        "secret",
		"MONGO_INITDB_DATABASE":      "appdb",
		"MONGO_INITDB_ROOT_USERNAME": "root",
		"MONGO_INITDB_ROOT_PASSWORD": "example",
		"MONGODB_PORT":               "27018",
	}))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(env).To(Equal(&Environment{
		Username:     "alice",
		Password:     "secret",
		Database:     "appdb",
		RootUsername: "root",
		RootPassword: "example",
		Host:         "localhost",
		Port:         27018,
		AuthSource:   "admin",
	}))
	g.Expect(env.UserRequest()).To(Equal(user.NewRequest("alice", "secret", "appdb")))
}

func TestGetEnvironmentMissingValues(t *testing.T) {
	g := NewWithT(t)

	env, err := GetEnvironment(context.Background(), envconfig.MapLookuper(map[string]string{}))
	g.Expect(err).ToNot(HaveOccurred())

	req := env.UserRequest()
	g.Expect(req.Username).To(BeEmpty())
	g.Expect(req.Password).To(BeEmpty())
	g.Expect(req.Database).To(BeEmpty())
	g.Expect(req.Roles).To(HaveLen(1))
}

func TestGetEnvironmentInvalidPort(t *testing.T) {
	g := NewWithT(t)

	_, err := GetEnvironment(context.Background(), envconfig.MapLookuper(map[string]string{
		"MONGODB_PORT": "not-a-port",
	}))
	g.Expect(err).To(HaveOccurred())
}

func TestGetEnvironmentPrecedence(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	g.Expect(os.WriteFile(path, []byte(
		"MONGO_TEST_USER=bob\nMONGO_TEST_PASSWORD=from-file\nMONGO_INITDB_DATABASE=filedb\n",
	), 0o600)).To(Succeed())

	dotenv, err := DotenvLookuper(path)
	g.Expect(err).ToNot(HaveOccurred())

	env, err := GetEnvironment(context.Background(),
		envconfig.MapLookuper(map[string]string{"MONGO_TEST_USER": "alice"}),
		dotenv,
	)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(env.Username).To(Equal("alice"))
	g.Expect(env.Password).To(Equal("from-file"))
	g.Expect(env.Database).To(Equal("filedb"))
}

func TestDotenvLookuperMissingFile(t *testing.T) {
	g := NewWithT(t)

	_, err := DotenvLookuper(filepath.Join(t.TempDir(), "missing.env"))
	g.Expect(err).To(MatchError(ContainSubstring("error reading env file")))
}
