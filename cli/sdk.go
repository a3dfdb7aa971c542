package cli

import (
	"github.com/okailora/okailora"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/spf13/cobra"
)

var (
	oksdk   sdk.SDK
	dashSvc dashboard.Service
	conf    = okailora.DefaultConfig()
)

func SetSDK(s sdk.SDK) {
	oksdk = s
}

func SetService(s dashboard.Service) {
	dashSvc = s
}

func SetConfig(c okailora.Config) {
	conf = c
}

// Alerter prints user-facing alerts of the command being run.
func Alerter(cmd *cobra.Command) staging.Alerter {
	return staging.AlertFunc(func(msg string) {
		logAlertCmd(*cmd, msg)
	})
}
