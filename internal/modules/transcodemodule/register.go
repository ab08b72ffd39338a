package transcodemodule

import (
	"github.com/camarr-app/camarr/internal/modules/modulemanager"
)

// Register registers the transcode module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func init() {
	Register()
}
