package main

import (
	"database/sql"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
	"github.com/trezcool/masomo-portal/storage/database"
	sqlxrepos "github.com/trezcool/masomo-portal/storage/database/sqlx"
)

var errNoDatabase = errors.New("no tenant catalog configured (set <ENV>_DATABASE_HOST and <ENV>_DATABASE_NAME)")

type commandLine struct {
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer

	// set by connect, or up front in tests
	db        *sql.DB
	tenantSvc *tenant.Service
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Masomo portal operations",
		SilenceUsage: true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(cli.resolveCmd(), cli.migrateCmd(), cli.tenantCmd())
	return root
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

// connect opens the tenant catalog, creating its database when missing.
func (cli *commandLine) connect(*cobra.Command, []string) error {
	if cli.tenantSvc != nil {
		return nil
	}
	if !cli.conf.Database.Enabled() {
		return errNoDatabase
	}
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	cli.db = db
	cli.tenantSvc = tenant.NewService(sqlxrepos.NewTenantRepository(sqlx.NewDb(db, cli.conf.Database.Engine)), cli.validate)
	return nil
}

func (cli *commandLine) close() {
	if cli.db != nil {
		_ = cli.db.Close()
	}
}
