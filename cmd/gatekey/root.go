package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"request-control-gateway/middleware/requestcontrol/application"
	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/spf13/cobra"
)

type cli struct {
	out    io.Writer
	client *http.Client

	baseURL     string
	controlPath string
	key         string
	timeout     time.Duration
}

func defaultBaseURL() string {
	if s := os.Getenv("GATEKEY_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func newRootCmd(out io.Writer, client *http.Client) *cobra.Command {
	c := &cli{out: out, client: client}

	root := &cobra.Command{
		Use:           "gatekey <command>",
		Short:         "Operate the request control kill switch",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.client == nil {
				c.client = &http.Client{Timeout: c.timeout}
			}
		},
	}
	root.PersistentFlags().StringVar(&c.baseURL, "url", defaultBaseURL(), "gateway base URL")
	root.PersistentFlags().StringVar(&c.controlPath, "path", domain.DefaultControlPath, "control path prefix")
	root.PersistentFlags().StringVar(&c.key, "key", "", "secret key (default: dynamic key for the current minute)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 5*time.Second, "HTTP timeout")

	root.AddCommand(c.deriveCmd(), c.setCmd(), c.statusCmd(), c.infoCmd(), c.auditCmd(), c.statsCmd())
	return root
}

func (c *cli) deriveCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the dynamic key (MMHHDD) for now or for --at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now()
			if at != "" {
				parsed, err := time.ParseInLocation("2006-01-02 15:04:05", at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at %q (want \"2006-01-02 15:04:05\"): %w", at, err)
				}
				t = parsed
			}
			_, err := fmt.Fprintln(c.out, application.DeriveKey(t))
			return err
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "local time, format \"2006-01-02 15:04:05\"")
	return cmd
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <true|false>",
		Short:     "Enable or disable request processing",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"true", "false"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q: want true or false", args[0])
			}
			return c.call(strconv.FormatBool(enabled) + "/" + c.secret())
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Query the current gate state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call("status/" + c.secret())
		},
	}
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the unauthenticated service information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call("info")
		},
	}
}

func (c *cli) auditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent control attempts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call("audit/" + c.secret() + "?limit=" + strconv.Itoa(limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show admission counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call("stats/" + c.secret())
		},
	}
}

func (c *cli) secret() string {
	if c.key != "" {
		return c.key
	}
	return application.DeriveKey(time.Now())
}

func (c *cli) call(suffix string) error {
	url := strings.TrimRight(c.baseURL, "/") + "/" + strings.Trim(c.controlPath, "/") + "/" + suffix

	resp, err := c.client.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		body = pretty.Bytes()
	}
	fmt.Fprintln(c.out, strings.TrimSpace(string(body)))

	if !env.Success {
		return errors.New(env.Message)
	}
	return nil
}
