package main

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/habitchain/backend/internal/client"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) newChallengeCaller() (client.ChallengeCaller, error) {
	rpcClient, err := rpc.DialContext(s.ctx, xcontext.Configs(s.ctx).RPCServer.Endpoint)
	if err != nil {
		return nil, err
	}

	return client.NewChallengeCaller(rpcClient), nil
}

func (s *srv) startAudit(cctx *cli.Context) error {
	caller, err := s.newChallengeCaller()
	if err != nil {
		return err
	}
	defer caller.Close()

	result, err := caller.Audit(s.ctx, cctx.Int64("id"))
	if err != nil {
		return err
	}

	if !result.Consistent {
		return fmt.Errorf("challenge %d differs from its ledger of %d transactions:\n%s",
			cctx.Int64("id"), result.Transactions, result.Diff)
	}

	fmt.Printf("challenge %d is consistent with its ledger of %d transactions\n",
		cctx.Int64("id"), result.Transactions)
	return nil
}

func (s *srv) startInfo(cctx *cli.Context) error {
	caller, err := s.newChallengeCaller()
	if err != nil {
		return err
	}
	defer caller.Close()

	info, err := caller.GetChallengeInfo(s.ctx, cctx.Int64("id"))
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(b))
	return nil
}
