package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ochoko/admin/internal/config"
	"github.com/ochoko/admin/pkg/auth"
	"github.com/ochoko/admin/pkg/logger"
	"github.com/ochoko/admin/pkg/sakeapi"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var errSessionEnded = errors.New("session ended, run `ochoko-admin login`")

type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	lines  *bufio.Reader

	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     *slog.Logger

	// httpClient is used for every backend call; tests swap its transport.
	httpClient *http.Client
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{
		in:         in,
		out:        out,
		errOut:     errOut,
		lines:      bufio.NewReader(in),
		v:          config.New(),
		httpClient: &http.Client{},
		log:        logger.NewNope(),
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ochoko-admin",
		Short:         "Administer the Ochoko sake catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML or JSON)")
	flags.String("api-url", config.DefaultAPIURL, "sake API base URL")
	flags.String("token-file", "", "where the CLI keeps its access token")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = c.v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = c.v.BindPFlag("token_file", flags.Lookup("token-file"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		c.serveCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.sakesCmd(),
		c.duplicatesCmd(),
		c.importCmd(),
	)
	return root
}

// execute runs the command line and turns client errors into messages
// an operator can act on.
func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	return explain(root.ExecuteContext(ctx))
}

func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case sakeapi.IsUnauthorized(err):
		return errSessionEnded
	case errors.Is(err, auth.ErrAdminRequired):
		return errors.New("admin privileges are required")
	}
	if apiErr, ok := sakeapi.AsAPIError(err); ok {
		return fmt.Errorf("server replied %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	return err
}

func (c *cli) load() error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	if cfg.TokenFile == "" {
		if cfg.TokenFile, err = sakeapi.DefaultTokenPath(); err != nil {
			return err
		}
	}
	c.cfg = cfg
	c.log = logger.New(logger.Config{
		Output: c.errOut,
		Level:  logger.ParseLevel(cfg.LogLevel),
		Text:   true,
	})
	return nil
}

// client returns an API client whose token lives in the token file.
func (c *cli) client() (*sakeapi.Client, error) {
	if err := c.cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return sakeapi.New(c.cfg.APIURL,
		sakeapi.WithHTTPClient(c.httpClient),
		sakeapi.WithTokenStore(sakeapi.NewFileTokenStore(c.cfg.TokenFile)),
		sakeapi.WithLogger(c.log),
		sakeapi.WithUserAgent("ochoko-admin/"+version),
	), nil
}

// signedIn returns a client with a stored token, or errSessionEnded.
func (c *cli) signedIn(ctx context.Context) (*sakeapi.Client, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	if !api.HasToken(ctx) {
		return nil, errSessionEnded
	}
	return api, nil
}

// readLine reads one answer from the input.
func (c *cli) readLine() (string, error) {
	line, err := c.lines.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a password without echo when the input is a terminal.
func (c *cli) readSecret(prompt string) (string, error) {
	fmt.Fprint(c.errOut, prompt)
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut)
		return string(b), err
	}
	return c.readLine()
}

// confirm asks a yes/no question; anything but y or yes is no.
func (c *cli) confirm(question string) (bool, error) {
	fmt.Fprintf(c.errOut, "%s [y/N]: ", question)
	answer, err := c.readLine()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
