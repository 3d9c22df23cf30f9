/*
Lexcheckd starts a lexcheck analysis server and begins listening for new
connections.

Usage:

	lexcheckd [flags]
	lexcheckd [flags] -l [[ADDRESS]:PORT]

Once started, the server will listen for HTTP requests and respond to them using
REST protocol. Clients log in, submit sources to be analyzed, and retrieve the
stored reports. By default, it will listen on localhost:8080. This can be
changed with the --listen/-l flag, the config file, or the environment.

Settings are taken from the config file first, then from environment variables,
and finally from flags; each overrides the one before it.

If a JWT token secret is not given, a random one is generated. As a consequence,
in this mode of operation all tokens are rendered invalid as soon as the server
shuts down. This is suitable for testing, but a secret must be given if running
in production.

If no accounts are configured and the database holds no users, a user named
"admin" is created with a random password that is written to the log.

The flags are:

	-v, --version
		Give the current version of the lexcheck server and then exit.

	-c, --config FILE
		Load settings from the given TOML config file. Accounts can only be
		given in the config file.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		LEXCHECK_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable LEXCHECK_TOKEN_SECRET.

	--db ENGINE[:DIR]
		Keep users and analyses in the given store. ENGINE must be one of the
		following: inmem, sqlite. inmem takes no directory. sqlite needs the
		path to the data directory such as sqlite:path/to/db_dir. If not given,
		will default to the value of environment variable LEXCHECK_DATABASE,
		and if that is not given, an in-memory store is used.

Sources submitted without a language are read as kotlin when their name ends
in .kt or .kts and as java otherwise. The [analyzer] section of the config file
customizes the tables used for its language.
*/
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dekarrin/lexcheck/internal/config"
	"github.com/dekarrin/lexcheck/internal/version"
	"github.com/dekarrin/lexcheck/server"
	"github.com/spf13/pflag"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the lexcheck server and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load settings from the given TOML config file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Keep users and analyses in the given store.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (lexcheck v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			os.Exit(1)
		}
	}
	cfg.ApplyEnv()

	if pflag.Lookup("listen").Changed {
		cfg.Server.Listen = *flagListen
	}
	if pflag.Lookup("secret").Changed {
		cfg.Server.Secret = *flagSecret
	}
	if pflag.Lookup("db").Changed {
		cfg.Server.DB = *flagDB
	}

	if !strings.Contains(cfg.Server.Listen, ":") {
		fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
		os.Exit(1)
	}

	srvCfg, err := server.FromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	if srvCfg.Secret == nil {
		srvCfg.Secret, err = server.RandomSecret()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}

		// yell at the user bc they should know their secret might be bad
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	defer srv.Close()
	log.Printf("DEBUG Server initialized")

	log.Printf("INFO  Starting lexcheck server %s...", version.ServerCurrent)
	if err := srv.ServeForever(cfg.Server.Listen); err != nil {
		log.Printf("FATAL %v", err)
		os.Exit(2)
	}
}
