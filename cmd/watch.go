package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streampane/streampane/config"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/host"
	"github.com/streampane/streampane/icon"
	"github.com/streampane/streampane/key"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/metrics"
	"github.com/streampane/streampane/pane"
	"github.com/streampane/streampane/playback"
	"github.com/streampane/streampane/settings"
	"github.com/streampane/streampane/style"
	"github.com/streampane/streampane/tui"
	"github.com/streampane/streampane/version"
	"github.com/streampane/streampane/where"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringP("quality", "q", "", "Quality for channels given without @QUALITY")
	watchCmd.Flags().IntP("volume", "V", 0, "Start every pane at this volume, from 0 to 200")
	watchCmd.Flags().BoolP("muted", "m", false, "Start every pane muted")
	watchCmd.Flags().Bool("headless", false, "Print pane states instead of showing the dashboard")
}

// watchOptions are the per-run overrides from the command line.
type watchOptions struct {
	volume   mo.Option[int]
	muted    bool
	headless bool
}

// watchCmd opens one pane per channel and shows the dashboard until the user quits.
var watchCmd = &cobra.Command{
	Use:   "watch CHANNEL[@QUALITY]...",
	Short: "Watch one or more channels, one pane each",
	Example: `  streampane watch alpha beta@720p60
  streampane watch --quality 480p --muted alpha beta gamma`,
	Args: cobra.RangeArgs(1, maxTargets),
	Run: func(cmd *cobra.Command, args []string) {
		store := settings.Default()

		targets, err := parseTargets(args, lo.Must(cmd.Flags().GetString("quality")), store)
		handleErr(err)

		opts := watchOptions{
			muted:    lo.Must(cmd.Flags().GetBool("muted")),
			headless: lo.Must(cmd.Flags().GetBool("headless")) || !term.IsTerminal(int(os.Stdout.Fd())),
		}
		if cmd.Flags().Changed("volume") {
			opts.volume = mo.Some(lo.Must(cmd.Flags().GetInt("volume")))
		}

		CheckDependencies()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		handleErr(watch(ctx, targets, store, opts))
	},
}

// newBackend starts the configured media engine for pane index.
func newBackend(index int) (engine.Backend, error) {
	if name := viper.GetString(key.PlayerEngine); name != "mpv" {
		return nil, fmt.Errorf("unsupported engine %q", name)
	}

	args := append([]string{}, viper.GetStringSlice(key.PlayerMpvArgs)...)
	args = append(args, fmt.Sprintf("--title=%s [%d]", constant.Streampane, index+1))

	mpv := engine.NewMPV(engine.MPVOptions{
		Path:      viper.GetString(key.PlayerMpvPath),
		Args:      args,
		SocketDir: where.Temp(),
	})
	if err := mpv.Start(); err != nil {
		return nil, err
	}
	return mpv, nil
}

func checkDaemon(ctx context.Context, client *daemon.Client) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status, err := version.Daemon(ctx, client)
	if err != nil {
		log.Warnf("daemon version check: %v", err)
		return
	}
	version.Notify(status)
}

func watch(ctx context.Context, targets []target, store settings.Store, opts watchOptions) (err error) {
	client, err := daemon.FromConfig()
	if err != nil {
		return err
	}
	checkDaemon(ctx, client)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loop := host.NewLoop()
	go loop.Run(loopCtx)

	m := metrics.New()
	manager := pane.NewManager(pane.Options{
		Scheduler:     loop,
		Daemon:        client,
		Settings:      store,
		Recorder:      m,
		NewBackend:    newBackend,
		RetryBase:     config.Millis(key.PlayerRetryBase),
		RetryMax:      config.Millis(key.PlayerRetryMax),
		DefaultVolume: viper.GetInt(key.PlayerDefaultVolume),
		DefaultVideo: map[engine.VideoProperty]int{
			engine.Brightness: viper.GetInt(key.VideoBrightness),
			engine.Contrast:   viper.GetInt(key.VideoContrast),
			engine.Saturation: viper.GetInt(key.VideoSaturation),
			engine.Hue:        viper.GetInt(key.VideoHue),
			engine.Gamma:      viper.GetInt(key.VideoGamma),
		},
	})

	defer func() {
		var closeErr error
		loop.Call(func() { closeErr = manager.Close() })
		cancelLoop()
		<-loop.Done()
		err = errors.Join(err, closeErr)
	}()

	if opts.headless {
		manager.Subscribe(newHeadlessPrinter().print)
	}

	var openErr error
	loop.Call(func() { openErr = openPanes(manager, targets, opts) })
	if openErr != nil {
		return openErr
	}

	manager.Start(ctx, loop, config.PollInterval())

	if addr := viper.GetString(key.MetricsAddr); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, metrics.Router(m, manager.Snapshots)); err != nil {
				log.Errorf("metrics: %v", err)
			}
		}()
	}

	if opts.headless {
		<-ctx.Done()
		return nil
	}

	return tui.Run(&tui.Options{Manager: manager, Host: loop, Context: ctx})
}

// openPanes runs on the host loop.
func openPanes(manager *pane.Manager, targets []target, opts watchOptions) error {
	for _, t := range targets {
		p, err := manager.Open(t.channel, t.quality)
		if err != nil {
			return err
		}

		if volume, ok := opts.volume.Get(); ok {
			p.Controller.SetVolume(volume)
		}
		if opts.muted {
			p.Controller.SetMuted(true)
		}
	}
	return nil
}

// headlessPrinter is the view without a terminal: one line whenever a pane's status changes.
// It runs on the host loop only.
type headlessPrinter struct {
	last map[int]string
}

func newHeadlessPrinter() *headlessPrinter {
	return &headlessPrinter{last: make(map[int]string)}
}

func (h *headlessPrinter) print(index int, snap playback.Snapshot) {
	delay := "-"
	if d, ok := snap.Delay.Get(); ok {
		delay = fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
	}

	line := fmt.Sprintf(
		"[%d] %s %s %s delay=%s volume=%d muted=%t",
		index+1,
		snap.Channel,
		lo.Ternary(snap.Quality == "", "default", snap.Quality),
		snap.State,
		delay,
		snap.Volume,
		snap.Muted,
	)
	if snap.State == playback.RetryScheduled {
		line += fmt.Sprintf(" retry_in=%s", snap.RetryIn)
	}

	if h.last[index] == line {
		return
	}
	h.last[index] = line

	log.Info(line)
	fmt.Println(style.Faint(time.Now().Format(time.TimeOnly)), icon.Get(icon.Live), line)
}
