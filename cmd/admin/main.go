// Command admin registers a local account directly against the database.
// It prompts for the password without echo, hashes it and inserts the user,
// bypassing the HTTP API. Intended for bootstrapping superuser accounts.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/cryptox"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/flagx"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/config"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/repomanager"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/users"
)

// parseFlags extracts only the flags this tool owns. The config flags
// (-d, -k, -config, ...) stay in os.Args for config.LoadConfig to consume.
func parseFlags(args []string) bool {
	var super bool

	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.BoolVar(&super, "super", false, "register the account as a superuser")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-super"})); err != nil {
		panic(err)
	}

	return super
}

func main() {

	super := parseFlags(os.Args[1:])

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		log.Fatalf("repository init error: %v", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	key, err := cfg.EncryptionKey()
	if err != nil {
		log.Fatalf("encryption key error: %v", err)
	}
	cipher, err := cryptox.NewFieldCipher(key)
	if err != nil {
		log.Fatalf("field cipher error: %v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	service := users.NewService(rm.Users(db), cipher, cfg, logger)

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Enter user name")

	userName, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	userName = strings.TrimSpace(userName)
	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))

	if err != nil {
		fmt.Println(err.Error())
		return
	}
	defer common.WipeByteArray(password)

	role := models.RoleUser
	if super {
		role = models.RoleSuperUser
	}

	if _, err := service.Register(ctx, userName, string(password), role); err != nil {
		fmt.Println(err.Error())
		return
	}

	fmt.Println("Success!")

}
