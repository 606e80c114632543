// Copyright 2026 The Divvunspell Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the spell-check server and CLI application.

Divvunspell checks and corrects words against weighted finite-state
transducers: a lexicon accepting the language and an error model mapping
misspellings to corrections. It can operate as a MessagePack IPC server
for integration with text editors, or as a CLI application for testing
and debugging.

Transducers load from a speller archive (a zip bundling index.xml, an
acceptor and an errmodel) or from a pair of plain transducer files. Files
are memory-mapped, so startup cost is dominated by header validation and
repeated server sessions share the page cache.

# Usage

Start the server over a speller archive:

	divvunspell -z se.zhfst

Use plain transducer files and enable debug mode:

	divvunspell -lex acceptor.hfst -mut errmodel.hfst -d

Run in CLI mode for interactive checking:

	divvunspell -z se.zhfst -c -limit 5

# Configuration

Runtime configuration is managed through a TOML file with speller bounds,
server parameters and the optional user dictionary backend:

	[speller]
	n_best = 10
	beam = 0.0
	max_weight = 0.0
	case_handling = true

	[server]
	max_n_best = 64
	timeout_ms = 2000

	[userdict]
	enabled = false
	redis_addr = "localhost:6379"

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Requests are
processed synchronously with timing information included in responses.

Send a check and a suggestion request:

	{"id": "req1", "op": "check", "w": "cot"}
	{"id": "req2", "op": "suggest", "w": "cot", "l": 5}

Receive suggestions ranked by weight, lightest first:

	{"id": "req2", "s": [{"w": "cat", "wt": 1.0}], "c": 1, "t": 3}

User dictionary requests add, remove and list accepted words at runtime
when a Redis backend is enabled in the config.

# Command Line Flags

The following flags control application behavior:

	-z string
	    Path to a speller archive (.zhfst)
	-lex string
	    Path to a lexicon transducer file
	-mut string
	    Path to an error model transducer file
	-config string
	    Path to a custom config.toml
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return (default from config)
	-beam float
	    Beam width above the best candidate (0 for unlimited)
	-maxw float
	    Absolute weight cap for candidates (0 for unlimited)
	-save
	    Persist the current search bounds to the config file
	-rebuild-config
	    Recreate the config file with defaults and exit

Either -z or both -lex and -mut must be given.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/albbas/divvunspell/internal/cli"
	"github.com/albbas/divvunspell/internal/userdict"
	"github.com/albbas/divvunspell/pkg/archive"
	"github.com/albbas/divvunspell/pkg/config"
	"github.com/albbas/divvunspell/pkg/server"
	"github.com/albbas/divvunspell/pkg/speller"
	"github.com/albbas/divvunspell/pkg/transducer"
)

const (
	Version = "1.0.0"
	AppName = "divvunspell"
	gh      = "https://github.com/albbas/divvunspell"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	archivePath := flag.String("z", "", "Path to a speller archive (.zhfst)")
	lexiconPath := flag.String("lex", "", "Path to a lexicon transducer file")
	mutatorPath := flag.String("mut", "", "Path to an error model transducer file")
	configPath := flag.String("config", "", "Path to a custom config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.Speller.NBest, "Number of suggestions to return")
	beam := flag.Float64("beam", defaultConfig.Speller.Beam, "Beam width above the best candidate (0 for unlimited)")
	maxWeight := flag.Float64("maxw", defaultConfig.Speller.MaxWeight, "Absolute weight cap for candidates (0 for unlimited)")
	saveConfig := flag.Bool("save", false, "Persist the current search bounds to the config file")
	rebuildConfig := flag.Bool("rebuild-config", false, "Recreate the config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		showVersionInfo()
		os.Exit(0)
	}

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Printf("Config file rebuilt with defaults at %s", config.GetActiveConfigPath(""))
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if activeConfigPath != "" {
		log.Debugf("Using config file: (%s)", activeConfigPath)
	}
	appConfig.Speller.NBest = *limit
	appConfig.Speller.Beam = *beam
	appConfig.Speller.MaxWeight = *maxWeight

	if *saveConfig {
		savePath := activeConfigPath
		if savePath == "" {
			savePath = config.GetActiveConfigPath(*configPath)
		}
		if err := appConfig.Update(savePath, limit, maxWeight, beam, nil); err != nil {
			log.Warnf("Failed to save search bounds to %s: %v", savePath, err)
		} else {
			log.Debugf("Saved search bounds to %s", savePath)
		}
	}

	sp, locale, cleanup, err := loadSpeller(*archivePath, *lexiconPath, *mutatorPath)
	if err != nil {
		log.Fatalf("Failed to load speller: %v", err)
	}
	defer cleanup()

	searchCfg := speller.Config{
		NBest:        appConfig.Speller.NBest,
		MaxWeight:    float32(appConfig.Speller.MaxWeight),
		Beam:         float32(appConfig.Speller.Beam),
		CaseHandling: appConfig.Speller.CaseHandling,
		EpsilonLimit: appConfig.Speller.EpsilonLimit,
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Search bounds:",
			"limit", searchCfg.NBest,
			"beam", searchCfg.Beam,
			"maxWeight", searchCfg.MaxWeight)

		inputHandler := cli.NewInputHandler(sp, searchCfg, appConfig.Server.MaxWordLen)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	var ud *userdict.UserDict
	if appConfig.UserDict.Enabled {
		ud, err = userdict.Open(context.Background(),
			appConfig.UserDict.RedisAddr, appConfig.UserDict.RedisDB,
			appConfig.UserDict.KeyPrefix, locale)
		if err != nil {
			log.Warnf("User dictionary unavailable, continuing without: %v", err)
		} else {
			defer ud.Close()
		}
	}

	srv := server.NewServer(sp, ud, appConfig)
	showStartupInfo(locale)

	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadSpeller builds a speller from an archive or a pair of transducer
// files. The returned cleanup releases whatever mappings were made.
func loadSpeller(archivePath, lexiconPath, mutatorPath string) (*speller.Speller, string, func(), error) {
	if archivePath != "" {
		a, err := archive.Open(archivePath)
		if err != nil {
			return nil, "", nil, err
		}
		return a.Speller(), a.Locale(), func() {
			if err := a.Close(); err != nil {
				log.Warnf("Closing speller archive: %v", err)
			}
		}, nil
	}

	if lexiconPath == "" || mutatorPath == "" {
		return nil, "", nil, fmt.Errorf("either -z or both -lex and -mut must be given")
	}

	lexicon, err := transducer.FromFile(lexiconPath)
	if err != nil {
		return nil, "", nil, err
	}
	mutator, err := transducer.FromFile(mutatorPath)
	if err != nil {
		lexicon.Close()
		return nil, "", nil, err
	}
	cleanup := func() {
		if err := mutator.Close(); err != nil {
			log.Warnf("Closing error model: %v", err)
		}
		if err := lexicon.Close(); err != nil {
			log.Warnf("Closing lexicon: %v", err)
		}
	}
	return speller.New(mutator, lexicon), "", cleanup, nil
}

// showVersionInfo prints the styled version banner.
func showVersionInfo() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ divvunspell ] Morphology-aware spell checking!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(locale string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=============")
	println(" divvunspell ")
	println("=============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	if locale != "" {
		log.Infof("locale: ( %s )", locale)
	}
	log.Info("status: ready")
	println("=============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
