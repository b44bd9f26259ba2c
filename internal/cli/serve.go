package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/puppyjudge/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the court over HTTP/JSON:
- Sessions hold one court state machine each
- History and the town square are shared by all sessions
- Verdict and appeal requests are rate limited per client

Example:
  puppyjudge serve
  puppyjudge serve --addr :9090 --storage sqlite`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if !a.Judge.Configured() {
		fmt.Fprintf(os.Stderr, "⚠️  No verdict provider available; verdict requests will fail until one is configured\n")
	}
	fmt.Fprintf(os.Stderr, "🐶 Puppy Judge listening on %s\n", a.Config.Server.Addr)

	return server.New(a).Run(ctx)
}
