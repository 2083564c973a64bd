package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/userhub/userhub/config"
	"github.com/userhub/userhub/pkg/models"
	"github.com/userhub/userhub/pkg/server"
	"github.com/userhub/userhub/pkg/store/pebblestore"
)

const (
	ErrStoreTypeNotSet  = "store.type must be set"
	ErrPebblePathNotSet = "store.pebble.path must be set"
	StoreTypePebble     = "pebble"
)

// run is the entrypoint for the userhub server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring userhub: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting userhub server version %s", config.VersionString)

	config.SetLogLevel(cfg)
	appState := NewAppState(cfg)

	srv := server.Create(appState)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil {
		log.Fatal(err)
	}
}

// NewAppState creates an AppState struct from the config file / ENV and
// initializes the user store
func NewAppState(cfg *config.Config) *models.AppState {
	appState := &models.AppState{
		Config: cfg,
	}

	initializeUserStore(appState)
	setupSignalHandler(appState)

	return appState
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if dumpConfig {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatalf("Error dumping config: %s", err)
		}
		fmt.Println(string(out))
		os.Exit(0)
	}
}

// initializeUserStore initializes the user store based on the config file / ENV
func initializeUserStore(appState *models.AppState) {
	if appState.Config.Store.Type == "" {
		log.Fatal(ErrStoreTypeNotSet)
	}

	switch appState.Config.Store.Type {
	case StoreTypePebble:
		if appState.Config.Store.Pebble.Path == "" {
			log.Fatal(ErrPebblePathNotSet)
		}
		userStore, err := pebblestore.NewUserStoreDAO(appState.Config.Store.Pebble.Path)
		if err != nil {
			log.Fatal(err)
		}
		appState.UserStore = userStore
	default:
		log.Fatalf("store.type (%s) is not supported", appState.Config.Store.Type)
	}

	log.Info("Using user store: ", appState.Config.Store.Type)
}

// setupSignalHandler sets up a signal handler to close the UserStore on termination
func setupSignalHandler(appState *models.AppState) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		if err := appState.UserStore.Close(); err != nil {
			log.Errorf("Error closing user store: %v", err)
		}
		os.Exit(0)
	}()
}
