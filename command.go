package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/MixinNetwork/collectables/host"
	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/collectables/store"
	"github.com/MixinNetwork/mixin/crypto"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type node struct {
	db   *store.BadgerStore
	host *host.Host
	reg  *prometheus.Registry
}

var (
	configPath string
	dataDir    string
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "collectables",
		Short:        "collectibles registry and marketplace",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "~/.mixin/collectables/config.toml", "configuration file path")
	root.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "database directory path, overrides the configuration")

	root.AddCommand(runCmd())
	root.AddCommand(mintCmd(), transferCmd(), priceCmd(), buyCmd())
	root.AddCommand(depositCmd(), assetCmd(), ownedCmd(), balanceCmd(), receiptCmd(), verifyCmd())
	return root
}

func runCmd() *cobra.Command {
	var metrics string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "apply submitted calls until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := openNode(ctx)
			if err != nil {
				return err
			}
			defer n.db.Close()

			if metrics != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(n.reg, promhttp.HandlerOpts{}))
				go func() {
					err := http.ListenAndServe(metrics, mux)
					logger.Printf("http.ListenAndServe(%s) => %v\n", metrics, err)
				}()
			}
			n.host.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&metrics, "metrics", "", "listen address of the prometheus metrics endpoint")
	return cmd
}

func mintCmd() *cobra.Command {
	var caller, nonce string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "create a new asset owned by the caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd.Context(), caller, nonce, &nft.Call{Kind: nft.CallCreateKitty})
		},
	}
	callerFlags(cmd, &caller, &nonce)
	return cmd
}

func transferCmd() *cobra.Command {
	var caller, nonce, to, id string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "give an asset to another account",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := crypto.HashFromString(id)
			if err != nil {
				return err
			}
			return submit(cmd.Context(), caller, nonce, &nft.Call{Kind: nft.CallTransfer, To: to, Id: h})
		},
	}
	callerFlags(cmd, &caller, &nonce)
	cmd.Flags().StringVar(&to, "to", "", "receiver account")
	cmd.Flags().StringVar(&id, "id", "", "asset id")
	return cmd
}

func priceCmd() *cobra.Command {
	var caller, nonce, id, amount string
	cmd := &cobra.Command{
		Use:   "price",
		Short: "list an asset for sale, or delist it without --amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := crypto.HashFromString(id)
			if err != nil {
				return err
			}
			call := &nft.Call{Kind: nft.CallSetPrice, Id: h}
			if amount != "" {
				p, err := host.ParseAmount(amount)
				if err != nil {
					return err
				}
				call.Price = &p
			}
			return submit(cmd.Context(), caller, nonce, call)
		},
	}
	callerFlags(cmd, &caller, &nonce)
	cmd.Flags().StringVar(&id, "id", "", "asset id")
	cmd.Flags().StringVar(&amount, "amount", "", "asking price")
	return cmd
}

func buyCmd() *cobra.Command {
	var caller, nonce, id, maxPrice string
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "buy a listed asset paying at most --max",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := crypto.HashFromString(id)
			if err != nil {
				return err
			}
			p, err := host.ParseAmount(maxPrice)
			if err != nil {
				return err
			}
			return submit(cmd.Context(), caller, nonce, &nft.Call{Kind: nft.CallBuyKitty, Id: h, MaxPrice: p})
		},
	}
	callerFlags(cmd, &caller, &nonce)
	cmd.Flags().StringVar(&id, "id", "", "asset id")
	cmd.Flags().StringVar(&maxPrice, "max", "", "highest acceptable price")
	return cmd
}

func depositCmd() *cobra.Command {
	var account, amount string
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "credit an account balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := host.ParseAmount(amount)
			if err != nil {
				return err
			}
			_, err = uuid.FromString(account)
			if err != nil {
				return err
			}
			return withNode(cmd.Context(), func(n *node) error {
				err := n.db.Deposit(account, units)
				if err != nil {
					return err
				}
				b, err := n.db.ReadBalance(account)
				if err != nil {
					return err
				}
				fmt.Println(host.FormatAmount(b))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&account, "to", "", "account to credit")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to credit")
	return cmd
}

func assetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "asset <id>",
		Short: "show an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := crypto.HashFromString(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd.Context(), func(n *node) error {
				a, err := n.host.Asset(id)
				if err != nil {
					return err
				}
				view := map[string]interface{}{"id": a.Id, "owner": a.Owner}
				if a.Price != nil {
					view["price"] = host.FormatAmount(*a.Price)
				}
				return printJSON(view)
			})
		},
	}
}

func ownedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owned <account>",
		Short: "list the assets of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd.Context(), func(n *node) error {
				ids, err := n.host.Owned(args[0])
				if err != nil {
					return err
				}
				return printJSON(ids)
			})
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd.Context(), func(n *node) error {
				b, err := n.db.ReadBalance(args[0])
				if err != nil {
					return err
				}
				fmt.Println(host.FormatAmount(b))
				return nil
			})
		},
	}
}

func receiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <action>",
		Short: "show a submitted call and its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd.Context(), func(n *node) error {
				act, err := n.host.Receipt(args[0])
				if err != nil {
					return err
				}
				if act == nil {
					return fmt.Errorf("action %s not found", args[0])
				}
				return printJSON(act)
			})
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "check the registry invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd.Context(), func(n *node) error {
				err := n.host.Verify()
				if err != nil {
					return err
				}
				count, err := n.host.Count()
				if err != nil {
					return err
				}
				fmt.Printf("%d assets, all invariants hold\n", count)
				return nil
			})
		},
	}
}

func callerFlags(cmd *cobra.Command, caller, nonce *string) {
	cmd.Flags().StringVar(caller, "as", "", "calling account")
	cmd.Flags().StringVar(nonce, "nonce", "", "call nonce, random when empty")
}

// submit queues the call and applies the queue until the call is done, so
// the printed receipt is final.
func submit(ctx context.Context, caller, nonce string, call *nft.Call) error {
	if nonce == "" {
		nonce = uuid.Must(uuid.NewV4()).String()
	}
	return withNode(ctx, func(n *node) error {
		act, err := n.host.Submit(ctx, caller, nonce, call)
		if err != nil {
			return err
		}
		for act.State == host.ActionStateInitial {
			_, err = n.host.Process(ctx)
			if err != nil {
				return err
			}
			act, err = n.host.Receipt(act.Id)
			if err != nil {
				return err
			}
		}
		err = printJSON(act)
		if err != nil {
			return err
		}
		if act.Error != "" {
			return errors.New(act.Error)
		}
		return nil
	})
}

func withNode(ctx context.Context, fn func(n *node) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.db.Close()
	return fn(n)
}

func openNode(ctx context.Context) (*node, error) {
	conf := host.DefaultConfiguration()
	cp := expandHome(configPath)
	if _, err := os.Stat(cp); err == nil {
		conf, err = host.Setup(cp)
		if err != nil {
			return nil, err
		}
	}
	dir := dataDir
	if dir == "" {
		dir = conf.Store.Dir
	}
	if dir == "" {
		dir = "~/.mixin/collectables/data"
	}

	db, err := store.OpenBadger(ctx, expandHome(dir))
	if err != nil {
		return nil, err
	}
	minimum, err := host.ParseAmount(conf.Ledger.Minimum)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.SetMinimumBalance(minimum)

	reg := prometheus.NewRegistry()
	h, err := host.BuildHost(ctx, db, conf, reg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &node{db: db, host: h, reg: reg}, nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		usr, _ := user.Current()
		return filepath.Join(usr.HomeDir, p[2:])
	}
	return p
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
