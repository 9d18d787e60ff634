package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/habitchain/backend/internal/domain"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startRPC(*cli.Context) error {
	s.loadService()
	cfg := xcontext.Configs(s.ctx)

	rpcHandler := rpc.NewServer()
	defer rpcHandler.Stop()
	err := rpcHandler.RegisterName(cfg.RPCServer.Name, domain.NewChallengeRPC(s.ctx, s.challengeDomain, s.depositDomain))
	if err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot register challenge rpc: %v", err)
		return err
	}

	httpSrv := &http.Server{
		Handler: rpcHandler,
		Addr:    cfg.RPCServer.Address(),
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.startPrometheus()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Started rpc server on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			xcontext.Logger(s.ctx).Errorf("An error occurs when running rpc server: %v", err)
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		xcontext.Logger(s.ctx).Infof("Stopping rpc server")
		return httpSrv.Shutdown(context.Background())
	})

	return group.Wait()
}
