package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/server"
)

var (
	servePort    int
	serveBind    string
	serveTLSCert string
	serveTLSKey  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the aikinote HTTP API server",
	Long: `Start the aikinote HTTP API server.

The server exposes training pages and tags under /api. Every /api request must
carry the caller's user id in the X-User-ID header; authentication is expected
to happen in front of this server.

Configuration can be provided via flags, environment variables
(AIKINOTE_PORT, AIKINOTE_BIND, AIKINOTE_DB_URL, AIKINOTE_TLS_CERT,
AIKINOTE_TLS_KEY), or a config file at ~/.aikinote/config.yaml.`,
	RunE: runServe,
}

func init() {
	defaults := cfg
	serveCmd.Flags().IntVar(&servePort, "port", defaults.Port, "Listen port")
	serveCmd.Flags().StringVar(&serveBind, "bind", defaults.Bind, "Bind address")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file path")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "TLS key file path")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind = serveBind
	}
	if cmd.Flags().Changed("tls-cert") {
		cfg.TLSCert = serveTLSCert
	}
	if cmd.Flags().Changed("tls-key") {
		cfg.TLSKey = serveTLSKey
	}

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	return server.New(svc, cfg, logger).ListenAndServe()
}
