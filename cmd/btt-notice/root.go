package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	bttnotice "github.com/btt-go/btt-notice"
)

// errNoNotice 没有适用的提示时 resolve 以非零状态退出。
var errNoNotice = errors.New("no update notice")

type options struct {
	slug      string
	repo      string
	version   string
	baseURL   string
	ttl       int
	redisAddr string
	prefix    string
	debug     bool
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "btt-notice",
		Short:         "Resolve plugin update notices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&o.slug, "slug", "", "plugin slug")
	f.StringVar(&o.repo, "repo", "", "repository name (update-<repo>.json)")
	f.StringVar(&o.version, "version", "", "installed version")
	f.StringVar(&o.baseURL, "base-url", bttnotice.DefaultBaseURL, "base URL of the notice files")
	f.IntVar(&o.ttl, "ttl", int(bttnotice.DefaultCacheTTL.Seconds()), "cache ttl in seconds, 0 never expires")
	f.StringVar(&o.redisAddr, "redis", "", "redis address for a shared cache")
	f.StringVar(&o.prefix, "prefix", "", "cache key prefix")
	f.BoolVar(&o.debug, "debug", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("repo")
	_ = root.MarkPersistentFlagRequired("version")

	root.AddCommand(
		&cobra.Command{
			Use:   "resolve [target]",
			Short: "Print the notice for a target version",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, cleanup := o.notice()
				defer cleanup()
				msg, ok := n.Resolve(cmd.Context(), firstArg(args))
				if !ok {
					return errNoNotice
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			},
		},
		&cobra.Command{
			Use:   "render [target]",
			Short: "Print the notice as an HTML fragment",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				target := firstArg(args)
				if target == "" {
					target = o.version
				}
				n, cleanup := o.notice()
				defer cleanup()
				n.Render(cmd.Context(), cmd.OutOrStdout(), target)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rules",
			Short: "Print the fetched rule set",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, cleanup := o.notice()
				defer cleanup()
				rs, err := n.RuleSet(cmd.Context())
				if err != nil {
					return fmt.Errorf("load rules: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), rs)
			},
		},
		&cobra.Command{
			Use:   "debug [target]",
			Short: "Print diagnostic information",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, cleanup := o.notice()
				defer cleanup()
				return writeJSON(cmd.OutOrStdout(), n.DebugInfo(firstArg(args)))
			},
		},
		&cobra.Command{
			Use:   "clear-cache",
			Short: "Delete the cached notice document",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, cleanup := o.notice()
				defer cleanup()
				if err := n.ClearCache(cmd.Context()); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
				return err
			},
		},
	)

	return root
}

// notice 按参数构造 Notice。返回的 cleanup 负责关闭 Redis 连接。
func (o *options) notice() (*bttnotice.Notice, func()) {
	if o.prefix != "" {
		bttnotice.SetPrefix(o.prefix)
	}
	cleanup := func() {}
	opts := []bttnotice.Option{
		bttnotice.WithBaseURL(o.baseURL),
		bttnotice.WithLogger(newLogger(o.debug)),
	}
	if o.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: o.redisAddr})
		opts = append(opts, bttnotice.WithStore(bttnotice.NewRedisStore(rdb)))
		cleanup = func() { _ = rdb.Close() }
	}
	n := bttnotice.New(bttnotice.PluginConfig{
		Slug:    o.slug,
		Repo:    o.repo,
		Version: o.version,
	}, opts...)
	n.SetCacheTTL(o.ttl)
	return n, cleanup
}

// newLogger 日志级别取自 BTT_NOTICE_LOG，--debug 优先。
func newLogger(debug bool) log.Interface {
	level := strings.ToLower(os.Getenv("BTT_NOTICE_LOG"))
	if debug {
		level = "debug"
	}
	if level == "" {
		level = "fatal"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.FatalLevel
	}
	return &log.Logger{Handler: text.New(os.Stderr), Level: lvl}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
