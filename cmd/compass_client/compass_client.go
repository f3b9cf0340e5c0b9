package main

import (
	"bufio"
	"compass_apiserver/internal/display"
	"compass_apiserver/internal/needle"
	"compass_apiserver/internal/pb"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const frameInterval = 16 * time.Millisecond

// follow renders the heading stream of c until ctx is done. Records are
// appended to w as JSON lines when w is not nil.
func follow(ctx context.Context, c pb.HeadingServiceClient, dash *display.Dashboard, animator *needle.Animator, w *bufio.Writer) error {
	s, err := c.GetHeadingStream(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("could not get heading stream: %w", err)
	}

	idx := 0
	for {
		msg, err := s.Recv()
		if err != nil {
			return err
		}
		var h pb.Heading
		if err := pb.FromStruct(msg, &h); err != nil {
			return err
		}

		animator.SetDuration(time.Duration(h.DurationMs) * time.Millisecond)
		animator.Animate(h.Azimuth)
		dash.SetAzimuthText(h.Text)

		if w == nil {
			continue
		}
		line, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("error marshaling heading to JSON: %w", err)
		}
		if _, err = w.WriteString(string(line) + "\n"); err != nil {
			return fmt.Errorf("error writing heading to file: %w", err)
		}
		if idx%100 == 0 {
			if err = w.Flush(); err != nil {
				return fmt.Errorf("error flushing buffer: %w", err)
			}
		}
		idx++
	}
}

func setForeground(c pb.HeadingServiceClient, foreground bool) (pb.Status, error) {
	var st pb.Status
	res, err := c.SetForeground(context.Background(), wrapperspb.Bool(foreground))
	if err != nil {
		return st, err
	}
	if err := pb.FromStruct(res, &st); err != nil {
		return st, err
	}
	if st.Err != "" {
		return st, fmt.Errorf("%s", st.Err)
	}
	return st, nil
}

func _main(cmd *cobra.Command, args []string) error {
	address, _ := cmd.Flags().GetString("address")
	output, _ := cmd.Flags().GetString("output")

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("did not connect: %w", err)
	}
	defer func() { _ = conn.Close() }()
	c := pb.NewHeadingServiceClient(conn)

	info := pb.Info{}
	if res, err := c.GetInfo(context.Background(), &emptypb.Empty{}); err == nil {
		_ = pb.FromStruct(res, &info)
	}

	var w *bufio.Writer
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("could not create file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = bufio.NewWriter(file)
		defer func() { _ = w.Flush() }()
	}

	dash, err := display.NewDashboard(info.Title, info.Message)
	if err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer dash.Close()
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	animator := needle.NewAnimator(clock.New(), needle.DefaultDuration)
	go func() { _ = animator.Run(ctx, dash, frameInterval) }()

	// streams end when the session stops; follow again once it is back
	var paused atomic.Bool
	start := func() {
		st, err := setForeground(c, true)
		if err != nil {
			dash.SetStatus(err.Error())
			return
		}
		dash.SetStatus(fmt.Sprintf("%s  %s  [i] info [p] pause [q] quit", address, st.Mode))
	}
	start()
	go func() {
		for ctx.Err() == nil {
			if !paused.Load() {
				if err := follow(ctx, c, dash, animator, w); err != nil && ctx.Err() == nil {
					dash.SetStatus(err.Error())
				}
			}
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}()

	dash.Loop(ctx, func(p bool) {
		paused.Store(p)
		if p {
			if _, err := setForeground(c, false); err != nil {
				dash.SetStatus(err.Error())
			} else {
				dash.SetStatus("paused, press p to resume")
			}
			return
		}
		start()
	})
	_, _ = setForeground(c, false)
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "compass_client",
	Short: "compass_client follows the heading of a compass server",
	Long:  "compass_client connects to a compass server over gRPC and draws the heading stream in the terminal",
	RunE:  _main,
}

func main() {
	rootCmd.Flags().String("address", "127.0.0.1:18890", "default dial address")
	rootCmd.Flags().StringP("output", "o", "", "append received headings to this jsonl file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
