// This file is a helper for running tests with testcontainers.
// It is used by the e2e tests, the integration tests, and the standalone cmd/testcontainers executable.
// Expects environment variables to be loaded from .env files.
//

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/localnerve/sharmers-menus/data"
	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestContainers struct {
	Network               *testcontainers.DockerNetwork
	DBContainer           testcontainers.Container
	AuthorizerContainer   testcontainers.Container
	MenusContainer        testcontainers.Container
	MenusBuilderContainer testcontainers.Container
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.MenusContainer != nil {
		if err := tc.MenusContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate menus service: %v", err)
		}
	}
	if tc.MenusBuilderContainer != nil {
		if err := tc.MenusBuilderContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate menus builder: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateDatabaseContainer starts and initializes only the database for DB_TYPE,
// and returns a configuration pointing both pools at its mapped port.
func CreateDatabaseContainer(t *testing.T) (*TestContainers, *config.Config, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create network: %w", err)
	}
	testContainers.Network = nw

	dbType := os.Getenv("DB_TYPE")
	tcpDbPort, err := startDatabase(ctx, t, testContainers, dbType, nw.Name)
	if err != nil {
		testContainers.Terminate(t)
		return nil, nil, err
	}

	dbHost, _ := testContainers.DBContainer.Host(ctx)
	dbPort, _ := testContainers.DBContainer.MappedPort(ctx, tcpDbPort)

	cfg := TestConfig()
	cfg.DBType = dbType
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()
	cfg.DBAppDatabase = os.Getenv("DB_APP_DATABASE")
	cfg.DBAppUser = os.Getenv("DB_APP_USER")
	cfg.DBAppPassword = os.Getenv("DB_APP_PASSWORD")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBAppConnectionLimit = 5
	cfg.DBConnectionLimit = 5

	return testContainers, cfg, nil
}

// CreateAllTestContainers starts the database, Authorizer and the menus service on one network.
// A nil t reports failures on stdout and exits, for use from cmd/testcontainers.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	tc.Network = nw

	fail := func(err error, msg string) {
		tc.Terminate(t)
		exitWithError(t, err, msg)
	}

	dbType := os.Getenv("DB_TYPE")
	if _, err := startDatabase(ctx, t, tc, dbType, nw.Name); err != nil {
		fail(err, "Failed to start Database")
	}

	debug := os.Getenv("DEBUG_CONTAINER") == "true"

	if err := startAuthorizer(ctx, t, tc, dbType, nw.Name, debug); err != nil {
		fail(err, "Failed to start Authorizer")
	}

	if err := startMenusService(ctx, t, tc, dbType, nw.Name, debug); err != nil {
		fail(err, "Failed to start menus service")
	}

	logMessage(t, "Menus testcontainer started successfully")
	return tc, nil
}

const authorizerAlias = "authorizer"

// startAuthorizer runs AUTHZ_IMAGE against its own database on the shared server.
func startAuthorizer(ctx context.Context, t *testing.T, tc *TestContainers, dbType, networkName string, debug bool) error {
	port, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
	if err != nil {
		return fmt.Errorf("invalid AUTHZ_PORT: %w", err)
	}

	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	authz, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          port.Port(),
				"DATABASE_TYPE": dbType,
				"DATABASE_NAME": os.Getenv("AUTHZ_DATABASE"),
				"DATABASE_URL":  authorizerDatabaseURL(dbType, os.Getenv("DB_HOST")),
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     logLevel,
			},
			WaitingFor:     wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(10 * time.Second),
			Networks:       []string{networkName},
			NetworkAliases: map[string][]string{networkName: {authorizerAlias}},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.AuthorizerContainer = authz

	host, _ := authz.Host(ctx)
	mapped, _ := authz.MappedPort(ctx, port)
	logMessage(t, "AUTHZ_URL=%s:%s", host, mapped.Port())
	return nil
}

const (
	menusImage = "sharmers-menus-test:latest"
	debugPort  = "2345/tcp"
)

// menusServiceEnv is the service configuration inside the network. Rate limiting is off for tests.
func menusServiceEnv(dbType string) map[string]string {
	env := map[string]string{
		"DB_TYPE":        dbType,
		"DB_HOST":        os.Getenv("DB_HOST"),
		"AUTH_PROVIDER":  "authorizer",
		"AUTHZ_URL":      fmt.Sprintf("http://%s:%s", authorizerAlias, os.Getenv("AUTHZ_PORT")),
		"RATE_LIMIT_MAX": "0",
	}
	for _, key := range []string{
		"PORT", "DB_PORT", "DB_APP_DATABASE", "DB_APP_USER", "DB_APP_PASSWORD", "DB_USER", "DB_PASSWORD",
		"DB_APP_CONNECTION_LIMIT", "DB_CONNECTION_LIMIT", "AUTHZ_CLIENT_ID", "PUBLIC_BASE_URL",
	} {
		env[key] = os.Getenv(key)
	}
	return env
}

// startMenusService runs the service image, building it from the Dockerfile when it is not cached.
// In debug mode the binary runs under delve on a fixed local port.
func startMenusService(ctx context.Context, t *testing.T, tc *TestContainers, dbType, networkName string, debug bool) error {
	port, err := nat.NewPort("tcp", os.Getenv("PORT"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	req := testcontainers.ContainerRequest{
		ExposedPorts: []string{string(port)},
		Env:          menusServiceEnv(dbType),
		WaitingFor:   wait.ForHTTP("/api/health").WithPort(port).WithStartupTimeout(30 * time.Second),
		Networks:     []string{networkName},
	}
	if debug {
		req.ExposedPorts = append(req.ExposedPorts, debugPort)
		req.WaitingFor = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
		req.Entrypoint = []string{
			"/usr/local/bin/dlv", "--listen=:2345", "--headless=true", "--api-version=2",
			"--accept-multiclient", "exec", "./sharmers-menus",
		}
		req.HostConfigModifier = func(hc *container.HostConfig) {
			hc.PortBindings = nat.PortMap{
				debugPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "2345"}},
			}
			hc.CapAdd = []string{"SYS_PTRACE"}
			hc.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	cached, err := imageExists(ctx, menusImage)
	if err != nil {
		return fmt.Errorf("failed to check for image %s: %w", menusImage, err)
	}
	if cached {
		logMessage(t, "Image %s exists, reusing...", menusImage)
		req.Image = menusImage
	} else {
		logMessage(t, "Image %s does not exist, building...", menusImage)
		if err := buildMenusImage(ctx, tc, &req, debug); err != nil {
			return err
		}
	}

	menus, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return err
	}
	tc.MenusContainer = menus

	host, _ := menus.Host(ctx)
	mapped, _ := menus.MappedPort(ctx, port)
	logMessage(t, "BASE_URL=%s:%s", host, mapped.Port())
	return nil
}

// buildMenusImage builds the builder stage, then points req at the runtime stage of the same Dockerfile.
func buildMenusImage(ctx context.Context, tc *TestContainers, req *testcontainers.ContainerRequest, debug bool) error {
	reaperSession := uuid.NewString()
	buildArgs := map[string]*string{"RESOURCE_REAPER_SESSION_ID": &reaperSession}
	if debug {
		on := "true"
		buildArgs["DEBUG"] = &on
	}

	buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
	if buildContext == "" {
		buildContext = "../.."
	}

	stage := func(repo, tag, target string, keep bool) testcontainers.FromDockerfile {
		return testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       repo,
			Tag:        tag,
			KeepImage:  keep,
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = target
			},
			PrintBuildLog: true,
		}
	}

	builder, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			FromDockerfile: stage("sharmers-menus-test-builder", "latest", "builder", false),
		},
		Started: false,
	})
	if err != nil {
		return fmt.Errorf("failed to build sharmers-menus-test-builder: %w", err)
	}
	tc.MenusBuilderContainer = builder

	repo, tag, _ := strings.Cut(menusImage, ":")
	req.FromDockerfile = stage(repo, tag, "runtime", true)
	return nil
}

// startDatabase runs the DB_IMAGE container on the network and applies the init scripts.
func startDatabase(ctx context.Context, t *testing.T, testContainers *TestContainers, dbType, networkName string) (nat.Port, error) {
	tcpDbPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		return "", fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env:          getDBInitEnvMap(dbType),
			WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {os.Getenv("DB_HOST")},
			},
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start database: %w", err)
	}
	testContainers.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	switch dbType {
	case "postgres":
		err = performPostgresDBInit(t, dbHost, dbPort)
	case "mysql", "mariadb":
		err = performMySqlDBInit(t, dbHost, dbPort)
	default:
		err = fmt.Errorf("unsupported container database type %q", dbType)
	}
	if err != nil {
		return "", fmt.Errorf("failed to initialize databases: %w", err)
	}

	return tcpDbPort, nil
}

func authorizerDatabaseURL(dbType, dbHost string) string {
	if dbType == "postgres" {
		return fmt.Sprintf("postgres://postgres:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("DB_ROOT_PASSWORD"), dbHost, os.Getenv("DB_PORT"), os.Getenv("AUTHZ_DATABASE"))
	}
	return fmt.Sprintf("root:%s@tcp(%s:%s)/%s", os.Getenv("DB_ROOT_PASSWORD"), dbHost, os.Getenv("DB_PORT"), os.Getenv("AUTHZ_DATABASE"))
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       os.Getenv("DB_APP_DATABASE"),
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"MYSQL_DATABASE":      os.Getenv("DB_APP_DATABASE"),
			"MYSQL_USER":          os.Getenv("DB_APP_USER"),
			"MYSQL_PASSWORD":      os.Getenv("DB_APP_PASSWORD"),
		}
	}
	return nil
}

// waitForDB pings until the server accepts connections.
func waitForDB(db *sql.DB) error {
	var err error
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", err)
}

func renderInit(script string) string {
	return data.Render(script, os.Getenv("DB_APP_DATABASE"), os.Getenv("DB_APP_USER"), os.Getenv("DB_USER"))
}

func performMySqlDBInit(t *testing.T, dbHost string, dbPort nat.Port) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", os.Getenv("DB_ROOT_PASSWORD"), dbHost, dbPort.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	if err := waitForDB(db); err != nil {
		return err
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", os.Getenv("AUTHZ_DATABASE")),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", os.Getenv("DB_APP_USER"), os.Getenv("DB_APP_PASSWORD")),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.authorizer_users (id CHAR(36) NOT NULL PRIMARY KEY)", os.Getenv("AUTHZ_DATABASE")),
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w : when executing > %s", err, stmt)
		}
	}

	if err := executeSQL(db, renderInit(data.InitdbMariaDBTables)); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	if err := executeSQL(db, renderInit(data.InitdbMariaDBPrivileges)); err != nil {
		return fmt.Errorf("failed to execute privileges init sql: %w", err)
	}

	logMessage(t, "MariaDB initialized")
	return nil
}

func performPostgresDBInit(t *testing.T, dbHost string, dbPort nat.Port) error {
	dsn := func(database string) string {
		return fmt.Sprintf("postgres://postgres:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("DB_ROOT_PASSWORD"), dbHost, dbPort.Port(), database)
	}

	admin, err := sql.Open("pgx", dsn("postgres"))
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres for setup: %w", err)
	}
	defer admin.Close()

	if err := waitForDB(admin); err != nil {
		return err
	}

	// Roles and databases have no IF NOT EXISTS form; the container is always fresh
	statements := []string{
		fmt.Sprintf("CREATE DATABASE %s", os.Getenv("AUTHZ_DATABASE")),
		fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD '%s'", os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
		fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD '%s'", os.Getenv("DB_APP_USER"), os.Getenv("DB_APP_PASSWORD")),
	}
	for _, stmt := range statements {
		if _, err := admin.Exec(stmt); err != nil {
			return fmt.Errorf("%w : when executing > %s", err, stmt)
		}
	}

	db, err := sql.Open("pgx", dsn(os.Getenv("DB_APP_DATABASE")))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", os.Getenv("DB_APP_DATABASE"), err)
	}
	defer db.Close()

	if err := executeSQL(db, renderInit(data.InitdbPostgresTables)); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	if err := executeSQL(db, renderInit(data.InitdbPostgresPrivileges)); err != nil {
		return fmt.Errorf("failed to execute privileges init sql: %w", err)
	}

	logMessage(t, "Postgres initialized")
	return nil
}

// executeSQL runs a script statement by statement, dropping -- comments outside quotes.
func executeSQL(db *sql.DB, script string) error {
	lines := strings.Split(script, "\n")

	var stripped []string
	for _, l := range lines {
		stripped = append(stripped, excludeComment(l))
	}

	queries := strings.Split(strings.Join(stripped, " "), ";")
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func excludeComment(line string) string {
	const (
		dq      = "\""
		sq      = "'"
		comment = "--"
	)

	var out string
	rest := line
	none := len(line) + 1

	for {
		if len(rest) == 0 {
			return out
		}

		di := strings.Index(rest, dq)
		si := strings.Index(rest, sq)
		ci := strings.Index(rest, comment)
		if di < 0 {
			di = none
		}
		if si < 0 {
			si = none
		}
		if ci < 0 {
			ci = none
		}

		var quote string
		switch {
		case di < si && di < ci:
			quote = dq
			out += rest[:di+1]
			rest = rest[di+1:]
		case si < di && si < ci:
			quote = sq
			out += rest[:si+1]
			rest = rest[si+1:]
		case ci < di && ci < si:
			return out + rest[:ci]
		default:
			return out + rest
		}

		end := strings.Index(rest, quote)
		if end < 0 {
			return out + rest
		}
		out += rest[:end+1]
		rest = rest[end+1:]
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
