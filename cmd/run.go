package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	custodia "github.com/custodia-chain/custodia"
	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/config"
	"github.com/custodia-chain/custodia/custody"
	"github.com/custodia-chain/custodia/etherman"
	"github.com/custodia-chain/custodia/identity"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/custodia-chain/custodia/qr"
	"github.com/custodia-chain/custodia/reconciler"
	"github.com/custodia-chain/custodia/rolegrant"
	"github.com/custodia-chain/custodia/rpc"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		custodia.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	components := cliCtx.StringSlice(config.FlagComponents)

	ledger := newLedgerClient(c)
	storage, err := inventory.NewSQLStorage(log.WithFields("module", "inventory"), c.Inventory.DBPath)
	if err != nil {
		log.Fatalf("error creating the projection storage: %v", err)
	}
	resolver := identity.NewResolver(log.WithFields("module", "identity"), nil, storage)
	custodyManager := custody.NewManager(log.WithFields("module", "custody"), ledger, storage, resolver)
	roleManager := rolegrant.NewManager(log.WithFields("module", "rolegrant"), ledger, storage, resolver)
	issuer, err := qr.NewIssuer(c.QR.TokenSecret, c.QR.TrackingBaseURL)
	if err != nil {
		log.Fatalf("error creating the tracking-token issuer: %v", err)
	}

	runReconcilerIfNeeded(cliCtx.Context, components, c.Reconciler, ledger, storage)

	if isNeeded([]string{custodiaCommon.RPC}, components) {
		server := createRPC(c.RPC, custodyManager, roleManager, issuer)
		go func() {
			if err := server.Start(); err != nil {
				log.Fatal(err)
			}
		}()
	}

	waitSignal(nil)

	return nil
}

func newLedgerClient(c *config.Config) *etherman.Client {
	ethClient, err := ethclient.Dial(c.Etherman.URL)
	if err != nil {
		log.Fatalf("error connecting to the node at %s: %v", c.Etherman.URL, err)
	}
	ethTxManager, err := ethtxmanager.New(c.Etherman.EthTxManager)
	if err != nil {
		log.Fatal(err)
	}
	go ethTxManager.Start()

	ledger, err := etherman.NewClient(
		log.WithFields("module", "etherman"), c.Etherman, ethClient, ethTxManager,
	)
	if err != nil {
		log.Fatalf("error creating the ledger client: %v", err)
	}

	return ledger
}

func runReconcilerIfNeeded(
	ctx context.Context,
	components []string,
	cfg reconciler.Config,
	ledger *etherman.Client,
	storage *inventory.SQLStorage,
) {
	if !isNeeded([]string{custodiaCommon.RECONCILER}, components) {
		return
	}
	rec := reconciler.New(log.WithFields("module", "reconciler"), cfg, ledger, storage)
	go rec.Start(ctx)
}

func createRPC(
	cfg jRPC.Config,
	custodyManager rpc.CustodyManager,
	roleManager rpc.RoleGranter,
	issuer rpc.TokenIssuer,
) *jRPC.Server {
	logger := log.WithFields("module", custodiaCommon.RPC)
	services := []jRPC.Service{
		{
			Name: rpc.CUSTODIA,
			Service: rpc.NewCustodiaEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				custodyManager,
				roleManager,
				issuer,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", custodia.GitRev,
		"gitBranch", custodia.GitBranch,
		"goVersion", runtime.Version(),
		"built", custodia.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	)
}

func waitSignal(cancelFuncs []context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	for sig := range signals {
		switch sig {
		case os.Interrupt, os.Kill:
			log.Info("terminating application gracefully...")

			exitStatus := 0
			for _, cancel := range cancelFuncs {
				cancel()
			}
			os.Exit(exitStatus)
		}
	}
}

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actualCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actualCase == caseWhereNeeded {
				return true
			}
		}
	}

	return false
}
