package server

import (
	"compass_apiserver/internal/config"
	grpc2 "compass_apiserver/internal/controller/grpc"
	http2 "compass_apiserver/internal/controller/http"
	"compass_apiserver/internal/display"
	"compass_apiserver/internal/manager/compass"
	"compass_apiserver/internal/pb"
	"compass_apiserver/internal/sensor"
	"compass_apiserver/pkg/version"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"google.golang.org/grpc"
)

type mainApp struct {
	name  string
	cmd   *cobra.Command
	args  []string
	desc  *config.CompassDesc
	opt   *config.CompassOpt
	clock clock.Clock
	open  sensor.Opener
}

func (a *mainApp) opener() sensor.Opener {
	if a.open != nil {
		return a.open
	}
	return compass.DefaultOpener(a.opt, a.clock)
}

func (a *mainApp) ProbeSensor() error {
	m := compass.NewManager(a.opt, a.opener(), nil, a.clock)
	log.Infoln("Probing IMU devices...")
	res, err := m.ProbeDev()
	if err != nil {
		log.Errorln(err)
		return err
	}
	log.Infof("Found %d valid IMU devices:", len(res))
	for _, v := range res {
		fmt.Printf("- %s\n", strings.TrimSpace(v))
	}
	return nil
}

func (a *mainApp) GetOpt() *config.CompassOpt {
	return a.opt
}

func (a *mainApp) SetOpt(opt *config.CompassOpt) { a.opt = opt }

// SetOpener replaces the sensors opened by the manager.
func (a *mainApp) SetOpener(open sensor.Opener) { a.open = open }

func (a *mainApp) logOpt() {
	log.Infoln("version:", version.GitVersion)
	log.Infoln("grpc.port:", a.opt.GRPC.Port)
	log.Infoln("grpc.interface:", a.opt.GRPC.Interface)
	log.Infoln("api.port:", a.opt.API.Port)
	log.Infoln("api.interface:", a.opt.API.Interface)
	log.Infoln("debug:", a.opt.Debug)
	log.Infoln("imu.device:", a.opt.IMU)
	log.Infoln("simulate.enabled:", a.opt.Simulate.Enabled)
	log.Infoln("animation.duration:", a.opt.AnimationDuration())
}

func (a *mainApp) watchAnimation(m *compass.SessionManager) {
	if a.desc != nil {
		a.desc.OnAnimationChange(m.Animator().SetDuration)
	}
}

// Run serves the compass session over gRPC and HTTP until ctx is done.
func (a *mainApp) Run(ctx context.Context) error {
	a.logOpt()

	m := compass.NewManager(a.opt, a.opener(), nil, a.clock)
	a.watchAnimation(m)

	apiAddr := net.JoinHostPort(a.opt.API.Interface, strconv.Itoa(a.opt.API.Port))
	apiServer := &http.Server{
		Addr:              apiAddr,
		Handler:           http2.NewRouter(m, a.opt.Info),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s := grpc.NewServer()
	pb.RegisterHeadingServiceServer(s, grpc2.NewGRPCServer(m, a.opt.Info, a.clock))
	grpcAddr := net.JoinHostPort(a.opt.GRPC.Interface, strconv.Itoa(a.opt.GRPC.Port))
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", grpcAddr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go compass.Daemon(ctx, m, a.clock)

	errCh := make(chan error, 2)
	go func() {
		log.Info("start API listen on ", apiAddr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		log.Info("start gRPC listen on ", grpcAddr)
		if err := s.Serve(listener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Infoln("shutting down")
	case err = <-errCh:
		log.Errorln(err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	s.GracefulStop()
	err = multierr.Combine(err, apiServer.Shutdown(shutdownCtx), m.Stop())
	return err
}

// Watch runs a session in the foreground and draws it in the terminal.
func (a *mainApp) Watch(ctx context.Context) error {
	dash, err := display.NewDashboard(a.opt.Info.Title, a.opt.Info.Message)
	if err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer dash.Close()

	out := log.StandardLogger().Out
	log.SetOutput(io.Discard)
	defer log.SetOutput(out)

	// nobody reads the records of a local session
	a.opt.Session.IdleTimeoutSecond = -1
	m := compass.NewManager(a.opt, a.opener(), dash, a.clock)
	a.watchAnimation(m)

	showStatus := func(err error) {
		switch {
		case err != nil:
			dash.SetStatus(err.Error())
		case !m.Running():
			dash.SetStatus("paused, press p to resume")
		default:
			dash.SetStatus(fmt.Sprintf("%s  [i] info [p] pause [q] quit", m.Mode()))
		}
	}
	err = m.Start()
	showStatus(err)
	defer func() { _ = m.Stop() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = m.Animator().Run(ctx, dash, a.opt.AnimationFrame()) }()

	dash.Loop(ctx, func(paused bool) {
		if paused {
			showStatus(m.Stop())
		} else {
			showStatus(m.Start())
		}
	})
	return nil
}

func (a *mainApp) PrepareRun() (MainApp, error) {
	desc := config.NewCompassDesc()
	if err := desc.Parse(a.cmd); err != nil {
		return nil, err
	}
	desc.PostParse()
	a.desc = &desc
	a.opt = &desc.Opt
	a.name = config.DefaultAppName
	return a, nil
}

type MainApp interface {
	Run(ctx context.Context) error
	Watch(ctx context.Context) error
	PrepareRun() (MainApp, error)
	GetOpt() *config.CompassOpt
	SetOpt(*config.CompassOpt)
	SetOpener(sensor.Opener)
	ProbeSensor() error
}

func NewMainApp(cmd *cobra.Command, args []string) MainApp {
	return &mainApp{
		cmd:   cmd,
		args:  args,
		clock: clock.New(),
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
