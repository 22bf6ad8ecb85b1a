package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cart"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
)

// WatchOptions holds flags for the watch commands.
type WatchOptions struct {
	*RootOptions
	User int64
	Max  int // stop after this many updates; 0 means until interrupted
}

// NewWatchCommand creates the watch command group.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a live view until interrupted",
		Long: `Print a live view, then print it again every time a committed write
changes it. JSON output is one object per line.

Examples:
  kantin watch cart --user 1
  kantin watch orders --user 1 --format json`,
	}
	cmd.PersistentFlags().Int64VarP(&opts.User, "user", "u", 0, "user id")
	cmd.PersistentFlags().IntVar(&opts.Max, "max", 0, "exit after this many updates")

	cmd.AddCommand(&cobra.Command{
		Use:   "cart",
		Short: "Follow a user's cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts,
				func(ctx context.Context, a *app, fn func(repository.Push[cart.View])) (cart.View, *liveq.Subscription, error) {
					return a.repo.WatchCart(ctx, opts.User, fn)
				},
				writeCart)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "Follow a user's orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts,
				func(ctx context.Context, a *app, fn func(repository.Push[[]model.Order])) ([]model.Order, *liveq.Subscription, error) {
					return a.repo.WatchOrders(ctx, opts.User, fn)
				},
				writeOrders)
		},
	})

	return cmd
}

// watchFrame is one line of JSON watch output.
type watchFrame struct {
	Type  string    `json:"type"` // snapshot | update | error
	Seq   int64     `json:"seq,omitempty"`
	Data  any       `json:"data,omitempty"`
	Error *CLIError `json:"error,omitempty"`
}

type subscribeFunc[T any] func(context.Context, *app, func(repository.Push[T])) (T, *liveq.Subscription, error)

func runWatch[T any](cmd *cobra.Command, opts *WatchOptions, subscribe subscribeFunc[T], text func(io.Writer, T) error) error {
	if err := requireUser(opts.User); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app) error {
		if _, err := a.repo.Accounts.Get(ctx, opts.User); err != nil {
			return a.out.Fail("watch", err)
		}

		ctx, cancel := context.WithCancel(ctx)
		pushes := make(chan repository.Push[T], 16)
		initial, sub, err := subscribe(ctx, a, func(p repository.Push[T]) {
			select {
			case pushes <- p:
			case <-ctx.Done():
			}
		})
		if err != nil {
			cancel()
			return a.out.Fail("watch", err)
		}
		defer sub.Unsubscribe()
		defer cancel()

		emit := frameWriter(a.out, text)
		if err := emit(watchFrame{Type: "snapshot", Data: initial}, initial); err != nil {
			return err
		}

		for n := 0; opts.Max == 0 || n < opts.Max; {
			select {
			case <-ctx.Done():
				return nil
			case <-sub.Done():
				a.logger.Info("live view closed")
				return nil
			case p := <-pushes:
				if p.Err != nil {
					a.logger.Warn("live view update failed", "seq", p.Seq, "error", p.Err)
					if err := emit(watchFrame{Type: "error", Seq: p.Seq, Error: &CLIError{
						Code:    "STORE_FAILURE",
						Message: p.Err.Error(),
					}}, p.Value); err != nil {
						return err
					}
					continue
				}
				n++
				if err := emit(watchFrame{Type: "update", Seq: p.Seq, Data: p.Value}, p.Value); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// frameWriter returns a function that writes one frame as a JSON line, or
// as text through render.
func frameWriter[T any](out *OutputFormatter, render func(io.Writer, T) error) func(watchFrame, T) error {
	if out.Format == "json" {
		enc := json.NewEncoder(out.Writer)
		return func(f watchFrame, _ T) error {
			return enc.Encode(f)
		}
	}
	return func(f watchFrame, v T) error {
		switch f.Type {
		case "snapshot":
			return render(out.Writer, v)
		case "error":
			_, err := fmt.Fprintf(out.Writer, "--- update %d failed: %s\n", f.Seq, f.Error.Message)
			return err
		}
		fmt.Fprintf(out.Writer, "--- update %d ---\n", f.Seq)
		return render(out.Writer, v)
	}
}
