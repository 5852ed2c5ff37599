package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/adapters"
	"github.com/brettbedarf/treefs/api"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/filesystem"
	"github.com/brettbedarf/treefs/internal/metrics"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/requests"
	"github.com/brettbedarf/treefs/server"
	"github.com/gin-gonic/gin"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		nodesDef   string
		mnt        string
		addr       string
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a yaml or json config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&nodesDef, "nodes", "", "Path to a json array of insert requests applied at startup")
	flag.StringVar(&nodesDef, "n", "", "--nodes (shorthand)")
	flag.StringVar(&mnt, "mount", "", "Mount a read-only view of the tree at this path")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.StringVar(&addr, "addr", "", "HTTP listen address")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the mount point first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Parse()

	// Bootstrap logging so config errors are visible
	util.InitializeLogger(util.VerbosityLevel(verbose))
	logger := util.GetLogger("main")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config")
	}
	// CLI flags win over file and env
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose", "v":
			cfg.LogLvl = util.VerbosityLevel(verbose)
		case "mount", "m":
			cfg.MountPoint = mnt
		case "addr":
			cfg.Addr = addr
		}
	})
	util.InitializeLogger(cfg.LogLvl)
	logger = util.GetLogger("main")
	if cfg.LogLvl > util.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().
		Str("store", cfg.StoreBackend).
		Str("addr", cfg.Addr).
		Str("mnt", cfg.MountPoint).
		Msg("TreeFS server initializing")

	ctx := context.Background()
	store, err := adapters.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	m := metrics.New()
	tree := filesystem.NewFS(store, filesystem.WithRecorder(m))
	if _, err := tree.Get(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load tree")
	}

	if nodesDef != "" {
		seedNodes(ctx, tree, nodesDef)
	}

	var mount *server.Mount
	if cfg.MountPoint != "" {
		if umount { // send cli command
			cmd := exec.Command("fusermount", "-u", cfg.MountPoint)
			// we ignore error here if not already mounted
			cmd.Run() // nolint:errcheck
		}
		mount = server.NewMount(cfg, tree)
		if err := mount.Serve(cfg.MountPoint); err != nil {
			logger.Fatal().Err(err).Msg("Failed to mount tree")
		}
		logger.Info().Str("mountpoint", cfg.MountPoint).Msg("Tree mounted successfully")
	}

	srv := api.New(cfg, tree, m)
	srvDone := srv.ServeAsync()

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	case err := <-srvDone:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down HTTP server")
	}

	if mount != nil {
		if err := mount.Unmount(); err != nil {
			logger.Error().Err(err).Msg("Failed to unmount tree")
		} else {
			logger.Info().Msg("Tree unmounted successfully")
		}
	}
}

// seedNodes applies the insert requests in path in order. Nodes that already
// exist are skipped so the same file can be applied on every start.
func seedNodes(ctx context.Context, tree treefs.TreeOperator, path string) {
	logger := util.GetLogger("seed")

	defData, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal().Err(err).Str("nodes", path).Msg("Failed to read nodes file")
	}
	var rawNodes []json.RawMessage
	if err := json.Unmarshal(defData, &rawNodes); err != nil {
		logger.Fatal().Err(err).Str("nodes", path).Msg("Failed to unmarshal nodes")
	}

	added := 0
	for _, raw := range rawNodes {
		req, err := requests.UnmarshalInsert(raw)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to unmarshal insert request")
			continue
		}
		if _, err := tree.Insert(ctx, req); err != nil {
			if errors.Is(err, treefs.ErrConstraint) {
				logger.Debug().Err(err).Str("name", req.Name).Msg("Skipped existing node")
				continue
			}
			logger.Error().Err(err).Str("name", req.Name).Str("parent", req.Parent).Msg("Failed to insert node")
			continue
		}
		added++
	}
	logger.Info().Int("requested", len(rawNodes)).Int("added", added).Msg("Seeded nodes")
}
