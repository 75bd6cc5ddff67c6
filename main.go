// docchat - chat with your documents from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/auth"
	"github.com/jeranaias/docchat-tui/internal/chat"
	"github.com/jeranaias/docchat-tui/internal/cli"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitConfigError)
	}
	if args.BaseURL != "" {
		cfg.Server.BaseURL = args.BaseURL
	}

	if cfg.Debug.LogFile != "" {
		if err := util.InitDebugLog(cfg.Debug.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		}
		defer util.CloseDebugLog()
	}

	creds, err := auth.NewFileCredentialStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitConfigError)
	}

	client := api.NewClient(cfg.Server.BaseURL, creds).
		WithMaxRetries(cfg.Server.MaxRetries).
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Server.TimeoutSecs) * time.Second})

	archive := openArchive(cfg)
	if archive != nil {
		defer archive.Close()
	}

	app := &cli.App{
		Config:  cfg,
		Client:  client,
		Creds:   creds,
		Archive: archive,
	}

	var cmdErr error
	switch cmd {
	case cli.CmdTUI:
		runTUI(cfg, client, creds, archive)
	case cli.CmdLogin:
		cmdErr = app.HandleLogin(args)
	case cli.CmdLogout:
		cmdErr = app.HandleLogout(args)
	case cli.CmdWhoami:
		cmdErr = app.HandleWhoami(args)
	case cli.CmdSignup:
		cmdErr = app.HandleSignup(args)
	case cli.CmdForgotPassword:
		cmdErr = app.HandleForgotPassword(args)
	case cli.CmdResetPassword:
		cmdErr = app.HandleResetPassword(args)
	case cli.CmdUpload:
		cmdErr = app.HandleUpload(args)
	case cli.CmdAsk:
		cmdErr = app.HandleAsk(args)
	case cli.CmdChat:
		cmdErr = app.HandleChat(args)
	case cli.CmdSessions:
		cmdErr = app.HandleSessions(args)
	case cli.CmdHistory:
		cmdErr = app.HandleHistory(args)
	case cli.CmdNewsletter:
		cmdErr = app.HandleNewsletter(args)
	case cli.CmdUpgrade:
		cmdErr = app.HandleUpgrade(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(cfg, client, creds, archive)
	}

	if cmdErr != nil {
		cli.DisplayError(cmdErr)
		os.Exit(cli.GetExitCode(cmdErr))
	}
}

// openArchive opens the local conversation archive when enabled.
// Archive failures degrade to no archiving rather than blocking launch.
func openArchive(cfg *config.Config) *storage.Archive {
	if !cfg.Storage.ArchiveEnabled {
		return nil
	}

	path := cfg.Storage.ArchivePath
	if path == "" {
		var err error
		path, err = config.DefaultArchivePath()
		if err != nil {
			util.DebugLog("archive path unavailable: %v", err)
			return nil
		}
	}

	archive, err := storage.Open(path)
	if err != nil {
		util.DebugLog("archive open failed: %v", err)
		return nil
	}
	return archive
}

// runTUI starts the terminal UI.
func runTUI(cfg *config.Config, client *api.Client, creds auth.CredentialStore, archive *storage.Archive) {
	store := auth.NewStore(client, creds)

	machine := chat.NewMachine(client)
	if archive != nil {
		machine.SetArchiver(archive)
	}

	m := newAppModel(store, machine, cfg)

	// Live-reload server settings while the TUI runs. The config path
	// may not exist yet on first launch; skip watching in that case.
	if path, err := config.ConfigPath(); err == nil {
		watcher, err := config.NewWatcher(path, func(next *config.Config) {
			util.DebugLog("config reloaded from %s", path)
			cfg.UI = next.UI
			cfg.Debug = next.Debug
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running docchat: %v\n", err)
		os.Exit(1)
	}
}
