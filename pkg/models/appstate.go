package models

import (
	"github.com/userhub/userhub/config"
)

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	UserStore UserStore
	Config    *config.Config
}
