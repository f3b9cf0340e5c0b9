package grpc

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/manager"
	"compass_apiserver/internal/pb"
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// StreamStallTimeout ends a heading stream that has seen no new record for
// this long.
const StreamStallTimeout = 5 * time.Second

const streamPollInterval = 10 * time.Millisecond

var (
	ErrNotRunning = errors.New("compass session is not running")
	ErrFaulted    = errors.New("compass session is faulted")
)

type server struct {
	pb.UnimplementedHeadingServiceServer
	manager manager.Manager
	info    config.InfoOpt
	clock   clock.Clock
}

func (s *server) status(err error) (*structpb.Struct, error) {
	st := pb.NewStatus(s.manager)
	if err != nil {
		st.Err = err.Error()
	}
	return pb.ToStruct(st)
}

// SetForeground starts the session when the client comes to the foreground
// and stops it when it leaves. Errors are reported in the status.
func (s *server) SetForeground(ctx context.Context, req *wrapperspb.BoolValue) (*structpb.Struct, error) {
	log.Infof("SetForeground: %v", req.GetValue())
	var err error
	if req.GetValue() {
		err = s.manager.Start()
	} else {
		err = s.manager.Stop()
	}
	if err != nil {
		log.Warnln(err)
	}
	return s.status(err)
}

func (s *server) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	log.Debugf("GetStatus: %v", s.manager.Running())
	return s.status(nil)
}

func (s *server) ready() error {
	if !s.manager.Running() {
		return ErrNotRunning
	}
	if s.manager.Faulted() {
		return ErrFaulted
	}
	return nil
}

// GetHeading returns the latest heading record.
func (s *server) GetHeading(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	_, records, err := s.manager.Read(-1)
	if err != nil {
		return nil, err
	}
	return pb.ToStruct(pb.NewHeading(records[0]))
}

// GetHeadingStream sends every heading record in order until the client
// goes away, the session stops or no record arrives for StreamStallTimeout.
func (s *server) GetHeadingStream(req *emptypb.Empty, srv pb.HeadingService_GetHeadingStreamServer) error {
	ctx := srv.Context()
	lastCursor := int64(-1)
	lastSuccess := s.clock.Now()
	for {
		if err := s.ready(); err != nil {
			return err
		}
		cursor, records, err := s.manager.Read(lastCursor)
		if err != nil {
			if s.clock.Since(lastSuccess) > StreamStallTimeout {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.clock.After(streamPollInterval):
			}
			continue
		}
		lastSuccess = s.clock.Now()
		lastCursor = cursor

		for _, r := range records {
			msg, err := pb.ToStruct(pb.NewHeading(r))
			if err != nil {
				return err
			}
			if err := srv.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (s *server) ListDev(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	ids, err := s.manager.ListDev()
	if err != nil {
		return nil, err
	}
	return pb.ToStruct(pb.Devices{IDs: ids})
}

// GetInfo returns the text of the informational dialog.
func (s *server) GetInfo(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return pb.ToStruct(pb.Info{Title: s.info.Title, Message: s.info.Message})
}

var _ pb.HeadingServiceServer = &server{}

func NewGRPCServer(manager manager.Manager, info config.InfoOpt, clk clock.Clock) pb.HeadingServiceServer {
	if clk == nil {
		clk = clock.New()
	}
	return &server{
		manager: manager,
		info:    info,
		clock:   clk,
	}
}
