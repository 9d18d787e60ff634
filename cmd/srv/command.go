package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "habitchain"
	s.app.Usage = "Weekly habit challenges with an entry fee"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the toml configuration file",
			EnvVars: []string{"HABITCHAIN_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig

	challengeIDFlag := &cli.Int64Flag{
		Name:     "id",
		Usage:    "Challenge id",
		Required: true,
	}

	s.app.Commands = []*cli.Command{
		{
			Action:      s.startRPC,
			Name:        "rpc",
			Usage:       "Start rpc server",
			Category:    "Service",
			Description: `Used to start the json-rpc server which accepts every challenge operation.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to start weekly elimination, settlement and payout dispatch.`,
		},
		{
			Action:      s.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start payout result subscriber",
			Category:    "Worker",
			Description: `Used to consume payout results of the custody service.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Tool",
			Description: `Used to create or update the tables of the database.`,
		},
		{
			Action:      s.startAudit,
			Name:        "audit",
			Usage:       "Replay the ledger of a challenge",
			Flags:       []cli.Flag{challengeIDFlag},
			Category:    "Tool",
			Description: `Used to check that the stored state of a challenge matches its ledger.`,
		},
		{
			Action:      s.startInfo,
			Name:        "info",
			Usage:       "Show a challenge",
			Flags:       []cli.Flag{challengeIDFlag},
			Category:    "Tool",
			Description: `Used to print the state of a challenge through the rpc server.`,
		},
	}
}
