// Command migrate provisions the Spanner instance and database used by the
// catalog (emulator only) and applies the DDL files in the migrations dir.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/catalog-service/internal/config"
	"github.com/light-bringer/catalog-service/internal/pkg/logging"
)

func main() {
	configFile := flag.String("config", "", "Path to a config file")
	dbPath := flag.String("database", "", "Spanner database path, overrides storage.spanner_database")
	dir := flag.String("migrations", "migrations", "Directory containing migration SQL files")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	path := cfg.Storage.SpannerDatabase
	if *dbPath != "" {
		path = *dbPath
	}
	target, err := parseDatabasePath(path)
	if err != nil {
		log.WithError(err).Fatal("invalid database path")
	}

	m := &migrator{
		target:   target,
		dir:      *dir,
		emulator: os.Getenv("SPANNER_EMULATOR_HOST"),
		log:      log.WithField("database", path),
	}
	if err := m.run(context.Background()); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("migrations applied")
}

type databasePath struct {
	project  string
	instance string
	database string
}

func (p databasePath) projectName() string  { return "projects/" + p.project }
func (p databasePath) instanceName() string { return p.projectName() + "/instances/" + p.instance }
func (p databasePath) String() string       { return p.instanceName() + "/databases/" + p.database }

// parseDatabasePath splits projects/P/instances/I/databases/D.
func parseDatabasePath(s string) (databasePath, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" {
		return databasePath{}, fmt.Errorf("expected projects/P/instances/I/databases/D, got %q", s)
	}
	for _, i := range []int{1, 3, 5} {
		if parts[i] == "" {
			return databasePath{}, fmt.Errorf("empty segment in %q", s)
		}
	}
	return databasePath{project: parts[1], instance: parts[3], database: parts[5]}, nil
}

type migrator struct {
	target   databasePath
	dir      string
	emulator string
	log      logrus.FieldLogger
}

func (m *migrator) run(ctx context.Context) error {
	if m.emulator != "" {
		m.log.WithField("emulator", m.emulator).Info("using spanner emulator")
		if err := m.ensureInstance(ctx); err != nil {
			return fmt.Errorf("ensure instance: %w", err)
		}
	}

	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("create database admin client: %w", err)
	}
	defer admin.Close()

	if err := m.ensureDatabase(ctx, admin); err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}
	return m.apply(ctx, admin)
}

// ensureInstance creates the emulator instance when it is missing.
func (m *migrator) ensureInstance(ctx context.Context) error {
	admin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("create instance admin client: %w", err)
	}
	defer admin.Close()

	_, err = admin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: m.target.instanceName()})
	switch {
	case err == nil:
		return nil
	case status.Code(err) != codes.NotFound:
		return fmt.Errorf("get instance: %w", err)
	}

	m.log.WithField("instance", m.target.instance).Info("creating instance")
	op, err := admin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     m.target.projectName(),
		InstanceId: m.target.instance,
		Instance: &instancepb.Instance{
			Config:      m.target.projectName() + "/instanceConfigs/emulator-config",
			DisplayName: "catalog",
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("wait for instance: %w", err)
	}
	return nil
}

func (m *migrator) ensureDatabase(ctx context.Context, admin *database.DatabaseAdminClient) error {
	_, err := admin.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: m.target.String()})
	switch {
	case err == nil:
		return nil
	case status.Code(err) != codes.NotFound:
		return fmt.Errorf("get database: %w", err)
	}

	m.log.Info("creating database")
	op, err := admin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          m.target.instanceName(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", m.target.database),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("wait for database: %w", err)
	}
	return nil
}

// apply runs every *.sql file in lexical order. Statements that create an
// object which already exists are skipped so reruns are harmless.
func (m *migrator) apply(ctx context.Context, admin *database.DatabaseAdminClient) error {
	files, err := filepath.Glob(filepath.Join(m.dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		m.log.WithField("dir", m.dir).Warn("no migration files found")
		return nil
	}
	sort.Strings(files)

	for _, file := range files {
		name := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
				Database:   m.target.String(),
				Statements: []string{stmt},
			})
			if err == nil {
				err = op.Wait(ctx)
			}
			if alreadyApplied(err) {
				m.log.WithField("file", name).Debug("statement already applied")
				continue
			}
			if err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
		}
		m.log.WithField("file", name).Info("migration applied")
	}
	return nil
}

func alreadyApplied(err error) bool {
	if err == nil {
		return false
	}
	return status.Code(err) == codes.AlreadyExists || strings.Contains(err.Error(), "Duplicate name in schema")
}

// splitStatements drops comment lines and splits DDL on semicolons.
func splitStatements(content string) []string {
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		b.WriteString(trimmed)
		b.WriteByte('\n')
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
