package cameramodule

import (
	"github.com/camarr-app/camarr/internal/modules/modulemanager"
)

// Register registers the camera module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func init() {
	Register()
}
