package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/taghunt/internal/capability"
	"github.com/roach88/taghunt/internal/nfcsim"
	"github.com/roach88/taghunt/internal/store"
	"github.com/roach88/taghunt/internal/trace"
)

// OperationOptions holds flags shared by the read and write commands.
type OperationOptions struct {
	*RootOptions
	Device  string
	Timeout time.Duration

	// IDGenerator overrides transaction IDs (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator capability.IDGenerator
}

// OperationResult is the printed form of an operation's output.
type OperationResult struct {
	Operation string `json:"operation"`
	Case      string `json:"case"`
	Value     string `json:"value,omitempty"`
	Message   string `json:"message,omitempty"`
}

// NewReadCommand creates the read command.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OperationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a URL from a tag",
		Long: `Open a reading session and read the URL stored on the first tag presented.

The device is a scripted reader described by a YAML file.

Exit codes:
  0 - URL read, or the session was cancelled
  1 - The read failed
  2 - Command error (bad device script, config, etc.)

Examples:
  taghunt read --device ./badger.yaml
  taghunt read --device ./badger.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(opts, capability.ReadURL{}, cmd)
		},
	}
	addOperationFlags(cmd, opts)
	return cmd
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OperationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "write <identifier>",
		Short: "Write a URL to a tag",
		Long: `Open a writing session and store the identifier as a URI record on the
first writable tag presented.

Exit codes:
  0 - Written, or the session was cancelled
  1 - The write failed
  2 - Command error (bad device script, config, etc.)

Example:
  taghunt write https://example.test/animal/dog --device ./blank.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(opts, capability.WriteURL{Identifier: args[0]}, cmd)
		},
	}
	addOperationFlags(cmd, opts)
	return cmd
}

func addOperationFlags(cmd *cobra.Command, opts *OperationOptions) {
	cmd.Flags().StringVar(&opts.Device, "device", "", "path to a device script (required)")
	_ = cmd.MarkFlagRequired("device")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "session timeout (default from config session.timeout)")
}

func runOperation(opts *OperationOptions, op capability.Operation, cmd *cobra.Command) error {
	logger := opts.logger()

	script, err := nfcsim.LoadScript(opts.Device)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load device script", err)
	}
	reader, err := nfcsim.NewReader(script, nfcsim.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build reader", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dopts := []capability.Option{
		capability.WithLogger(logger),
		capability.WithPrompts(opts.Config.TxnPrompts()),
	}
	if opts.Config.CapabilityName != "" {
		dopts = append(dopts, capability.WithCapabilityName(opts.Config.CapabilityName))
	}
	if opts.IDGenerator != nil {
		dopts = append(dopts, capability.WithIDGenerator(opts.IDGenerator))
	}

	if path := opts.Config.Journal.Path; path != "" {
		st, lastSeq, err := openJournal(ctx, path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		dopts = append(dopts,
			capability.WithJournal(st),
			capability.WithClock(trace.NewClockAt(lastSeq)),
		)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = opts.Config.Session.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	d := capability.New(reader, dopts...)
	out := d.Process(ctx, op)
	reader.Wait()

	return printOutput(opts, cmd, op, out)
}

// openJournal opens the journal database, creating its directory, and
// returns the last journaled sequence number.
func openJournal(ctx context.Context, path string) (*store.Store, int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, 0, fmt.Errorf("create journal directory: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, 0, err
	}
	seq, err := st.LastSeq(ctx)
	if err != nil {
		st.Close()
		return nil, 0, err
	}
	return st, seq, nil
}

func printOutput(opts *OperationOptions, cmd *cobra.Command, op capability.Operation, out capability.Output) error {
	result := OperationResult{Operation: op.Case(), Case: out.Case()}
	switch out := out.(type) {
	case capability.URL:
		result.Value = out.Value
	case capability.Error:
		result.Message = out.Message
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return formatter.Operation(result)
}
